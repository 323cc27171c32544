package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

func (s *Store) GetCategory(find *model.FindCategory) (*model.Category, error) {
	list, err := s.ListCategories(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListCategories(find *model.FindCategory) ([]*model.Category, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.ParentID; v != nil {
		where, args = append(where, "parent_id = ?"), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "name = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			created_ts,
			updated_ts,
			parent_id,
			name,
			description
		FROM category
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query categories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Category, 0)
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(
			&category.ID,
			&category.CreatedTs,
			&category.UpdatedTs,
			&category.ParentID,
			&category.Name,
			&category.Description,
		); err != nil {
			return nil, err
		}
		list = append(list, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) AddCategory(category *model.Category) (*model.Category, error) {
	if existing, err := s.GetCategory(&model.FindCategory{Name: &category.Name}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, model.NewConflictError("category %q already exists", category.Name)
	}
	if category.ParentID != nil {
		parent, err := s.GetCategory(&model.FindCategory{ID: category.ParentID})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, model.NewNotFoundError("category", *category.ParentID)
		}
	}

	stmt := `
		INSERT INTO category (parent_id, name, description)
		VALUES (?, ?, ?)
		RETURNING id, created_ts, updated_ts, parent_id, name, description
	`
	args := []any{category.ParentID, category.Name, category.Description}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var newCategory model.Category
	if err := tx.QueryRow(stmt, args...).Scan(
		&newCategory.ID,
		&newCategory.CreatedTs,
		&newCategory.UpdatedTs,
		&newCategory.ParentID,
		&newCategory.Name,
		&newCategory.Description,
	); err != nil {
		return nil, errors.Wrap(err, "failed to add category")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &newCategory, nil
}

func (s *Store) UpdateCategory(category *model.Category) (*model.Category, error) {
	stmt := `
		UPDATE category
		SET parent_id = ?, name = ?, description = ?, updated_ts = ?
		WHERE id = ?
		RETURNING id, created_ts, updated_ts, parent_id, name, description
	`
	args := []any{category.ParentID, category.Name, category.Description, time.Now().Unix(), category.ID}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var updated model.Category
	if err := tx.QueryRow(stmt, args...).Scan(
		&updated.ID,
		&updated.CreatedTs,
		&updated.UpdatedTs,
		&updated.ParentID,
		&updated.Name,
		&updated.Description,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveCategory deletes a category unless children or books still
// reference it.
func (s *Store) RemoveCategory(id int32) error {
	var children int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM category WHERE parent_id = ?`, id).Scan(&children); err != nil {
		return err
	}
	if children > 0 {
		return model.NewConflictError("category %d has %d child categories", id, children)
	}
	var books int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM book WHERE category_id = ?`, id).Scan(&books); err != nil {
		return err
	}
	if books > 0 {
		return model.NewConflictError("category %d still has %d books", id, books)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM category WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return model.NewNotFoundError("category", id)
	}
	return tx.Commit()
}
