package model

import (
	"regexp"
	"strings"

	"github.com/liber-hq/liber/util"
)

// ReaderStatus is the type of a reader account status.
type ReaderStatus string

const (
	ReaderStatusActive   ReaderStatus = "ACTIVE"
	ReaderStatusInactive ReaderStatus = "INACTIVE"
)

const (
	// MaxBorrowLimitCeiling is the largest configurable per-reader limit.
	MaxBorrowLimitCeiling = 20
	// DefaultMaxBorrowLimit applies when a reader is created without one.
	DefaultMaxBorrowLimit = 5
)

var phoneMatcher = regexp.MustCompile(`^\+?[0-9][0-9\- ]{4,19}$`)

// Reader is a borrower account backed 1:1 by a user account.
type Reader struct {
	ID     int32 `json:"id"`
	UserID int32 `json:"user_id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	Name           string       `json:"name"`
	StudentID      string       `json:"student_id"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email"`
	Status         ReaderStatus `json:"status"`
	MaxBorrowLimit int          `json:"max_borrow_limit"`
}

type FindReader struct {
	ID        *int32        `json:"id"`
	UserID    *int32        `json:"user_id"`
	StudentID *string       `json:"student_id"`
	Status    *ReaderStatus `json:"status"`

	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

type ReaderUpsertRequest struct {
	UserID         int32  `json:"user_id"`
	Name           string `json:"name"`
	StudentID      string `json:"student_id"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	MaxBorrowLimit *int   `json:"max_borrow_limit"`
}

func NewReader(req *ReaderUpsertRequest) (*Reader, error) {
	limit := DefaultMaxBorrowLimit
	if req.MaxBorrowLimit != nil {
		limit = *req.MaxBorrowLimit
	}
	reader := &Reader{
		UserID:         req.UserID,
		Name:           strings.TrimSpace(req.Name),
		StudentID:      strings.TrimSpace(req.StudentID),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Status:         ReaderStatusActive,
		MaxBorrowLimit: limit,
	}
	if err := reader.Validate(); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *Reader) Validate() error {
	if r.Name == "" {
		return NewValidationError("reader name is required")
	}
	if r.Phone != "" && !phoneMatcher.MatchString(r.Phone) {
		return NewValidationError("invalid phone number %q", r.Phone)
	}
	if r.Email != "" && !util.ValidateEmail(r.Email) {
		return NewValidationError("invalid email address %q", r.Email)
	}
	if r.MaxBorrowLimit < 0 || r.MaxBorrowLimit > MaxBorrowLimitCeiling {
		return NewValidationError("max borrow limit must be between 0 and %d, got %d", MaxBorrowLimitCeiling, r.MaxBorrowLimit)
	}
	return nil
}

// UpdateInfo re-validates contact details and the borrow limit bound on
// every change; nothing is mutated on failure.
func (r *Reader) UpdateInfo(req *ReaderUpsertRequest) error {
	updated := *r
	updated.Name = strings.TrimSpace(req.Name)
	updated.StudentID = strings.TrimSpace(req.StudentID)
	updated.Phone = strings.TrimSpace(req.Phone)
	updated.Email = strings.TrimSpace(req.Email)
	if req.MaxBorrowLimit != nil {
		updated.MaxBorrowLimit = *req.MaxBorrowLimit
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*r = updated
	return nil
}

func (r *Reader) Activate() error {
	if r.Status == ReaderStatusActive {
		return NewInvalidStateError("reader %d is already active", r.ID)
	}
	r.Status = ReaderStatusActive
	return nil
}

func (r *Reader) Deactivate() error {
	if r.Status == ReaderStatusInactive {
		return NewInvalidStateError("reader %d is already inactive", r.ID)
	}
	r.Status = ReaderStatusInactive
	return nil
}

func (r *Reader) IsActive() bool {
	return r.Status == ReaderStatusActive
}

// CanBorrow reports account-level eligibility only. Stock, the borrow
// limit and overdue items are checked by CheckBorrow.
func (r *Reader) CanBorrow() bool {
	return r.IsActive()
}
