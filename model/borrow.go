package model

import "time"

// BorrowStatus is the state of a lending transaction.
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "BORROWED"
	BorrowStatusReturned BorrowStatus = "RETURNED"
	BorrowStatusOverdue  BorrowStatus = "OVERDUE"
)

// BorrowPolicy is the immutable set of numeric borrowing rules. Compared by
// value.
type BorrowPolicy struct {
	DefaultBorrowDays int `json:"default_borrow_days"`
	MaxRenewCount     int `json:"max_renew_count"`
	RenewDays         int `json:"renew_days"`
}

// DefaultBorrowPolicy returns the stock policy: 30 day loans, two renewals
// of 30 days each.
func DefaultBorrowPolicy() BorrowPolicy {
	return BorrowPolicy{
		DefaultBorrowDays: 30,
		MaxRenewCount:     2,
		RenewDays:         30,
	}
}

func (p BorrowPolicy) Validate() error {
	if p.DefaultBorrowDays < 1 || p.DefaultBorrowDays > 365 {
		return NewValidationError("default borrow days must be between 1 and 365, got %d", p.DefaultBorrowDays)
	}
	if p.MaxRenewCount < 0 || p.MaxRenewCount > 5 {
		return NewValidationError("max renew count must be between 0 and 5, got %d", p.MaxRenewCount)
	}
	if p.RenewDays < 1 {
		return NewValidationError("renew days must be positive, got %d", p.RenewDays)
	}
	return nil
}

// BorrowRecord is one lending transaction linking a reader to a book copy.
// Records are history: they are never hard-deleted in normal operation.
//
// Status is a finite state machine; RETURNED is terminal:
//
//	BORROWED --Return--> RETURNED
//	BORROWED --sweep---> OVERDUE
//	OVERDUE  --Return--> RETURNED
//	BORROWED --Renew---> BORROWED (due date extended)
type BorrowRecord struct {
	ID       int32 `json:"id"`
	CopyID   int32 `json:"copy_id"`
	BookID   int32 `json:"book_id"`
	ReaderID int32 `json:"reader_id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	BorrowDate time.Time    `json:"borrow_date"`
	DueDate    *time.Time   `json:"due_date"`
	ReturnDate *time.Time   `json:"return_date"`
	RenewCount int          `json:"renew_count"`
	Status     BorrowStatus `json:"status"`
}

type FindBorrow struct {
	ID       *int32        `json:"id"`
	CopyID   *int32        `json:"copy_id"`
	BookID   *int32        `json:"book_id"`
	ReaderID *int32        `json:"reader_id"`
	Status   *BorrowStatus `json:"status"`

	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

type BorrowRequest struct {
	CopyID     int32 `json:"copy_id"`
	ReaderID   int32 `json:"reader_id"`
	BorrowDays *int  `json:"borrow_days"`
}

type RenewRequest struct {
	RenewDays *int `json:"renew_days"`
}

// NewBorrowRecord starts a lending transaction at now, due borrowDays
// later.
func NewBorrowRecord(copy *BookCopy, readerID int32, now time.Time, borrowDays int) (*BorrowRecord, error) {
	if borrowDays < 1 {
		return nil, NewValidationError("borrow days must be positive, got %d", borrowDays)
	}
	due := now.AddDate(0, 0, borrowDays)
	return &BorrowRecord{
		CopyID:     copy.ID,
		BookID:     copy.BookID,
		ReaderID:   readerID,
		BorrowDate: now,
		DueDate:    &due,
		Status:     BorrowStatusBorrowed,
	}, nil
}

// Return moves the record to its terminal state.
func (b *BorrowRecord) Return(now time.Time) error {
	if b.Status == BorrowStatusReturned {
		return NewInvalidStateError("borrow record %d is already returned", b.ID)
	}
	returned := now
	b.ReturnDate = &returned
	b.Status = BorrowStatusReturned
	return nil
}

// Renew extends the due date by renewDays. Rejected once the record is
// returned, past due, or at the renewal cap.
func (b *BorrowRecord) Renew(now time.Time, renewDays, maxRenewCount int) error {
	if b.Status == BorrowStatusReturned {
		return NewInvalidStateError("borrow record %d is already returned", b.ID)
	}
	if b.DueDate == nil {
		return NewInvalidStateError("borrow record %d has no due date to extend", b.ID)
	}
	if b.IsOverdue(now) {
		return NewOverdueError("borrow record %d is overdue and cannot be renewed", b.ID)
	}
	if b.RenewCount >= maxRenewCount {
		return NewLimitExceededError("borrow record %d reached the renewal cap (%d)", b.ID, maxRenewCount)
	}
	if renewDays < 1 {
		return NewValidationError("renew days must be positive, got %d", renewDays)
	}
	due := b.DueDate.AddDate(0, 0, renewDays)
	b.DueDate = &due
	b.RenewCount++
	return nil
}

// IsOverdue reports whether the record is past due at now. Records with no
// due date never expire.
func (b *BorrowRecord) IsOverdue(now time.Time) bool {
	if b.Status == BorrowStatusReturned {
		return false
	}
	if b.Status == BorrowStatusOverdue {
		return true
	}
	return b.DueDate != nil && now.After(*b.DueDate)
}

// MarkOverdue is the sweep-side transition BORROWED -> OVERDUE.
func (b *BorrowRecord) MarkOverdue() error {
	if b.Status != BorrowStatusBorrowed {
		return NewInvalidStateError("only borrowed records can become overdue, record %d is %s", b.ID, b.Status)
	}
	b.Status = BorrowStatusOverdue
	return nil
}

func (b *BorrowRecord) IsActive() bool {
	return b.Status == BorrowStatusBorrowed || b.Status == BorrowStatusOverdue
}
