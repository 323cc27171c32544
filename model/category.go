package model

import "strings"

// Category is a flat classification with an optional parent link.
type Category struct {
	ID       int32  `json:"id"`
	ParentID *int32 `json:"parent_id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	Name        string `json:"name"`
	Description string `json:"description"`
}

type FindCategory struct {
	ID       *int32  `json:"id"`
	ParentID *int32  `json:"parent_id"`
	Name     *string `json:"name"`

	Limit *int `json:"limit"`
}

type CategoryUpsertRequest struct {
	Name        string `json:"name"`
	ParentID    *int32 `json:"parent_id"`
	Description string `json:"description"`
}

func NewCategory(req *CategoryUpsertRequest) (*Category, error) {
	category := &Category{
		Name:        strings.TrimSpace(req.Name),
		ParentID:    req.ParentID,
		Description: req.Description,
	}
	if category.Name == "" {
		return nil, NewValidationError("category name is required")
	}
	return category, nil
}
