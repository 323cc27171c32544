package model

// Failure reasons returned by CheckBorrow, surfaced verbatim to clients.
const (
	ReasonInsufficientStock = "insufficient stock"
	ReasonAccountDisabled   = "account disabled"
	ReasonLimitReached      = "borrow limit reached"
	ReasonHasOverdue        = "has overdue items, must return first"
)

// BorrowDecision is the outcome of the eligibility check. Reason is set
// only when Can is false.
type BorrowDecision struct {
	Can    bool   `json:"can"`
	Reason string `json:"reason,omitempty"`
}

// CheckBorrow is the eligibility check gating every borrow. It is a pure
// function: activeCount and hasOverdue are supplied by the caller from
// repository queries, so the rule evaluation itself touches no I/O.
//
// Rules are evaluated in order and the first failure wins:
//
//  1. the copy must have stock available
//  2. the reader account must be active
//  3. the reader must be under their borrow limit
//  4. the reader must have no overdue items
func CheckBorrow(copy *BookCopy, reader *Reader, activeCount int, hasOverdue bool) BorrowDecision {
	if !copy.IsAvailable() {
		return BorrowDecision{Reason: ReasonInsufficientStock}
	}
	if !reader.CanBorrow() {
		return BorrowDecision{Reason: ReasonAccountDisabled}
	}
	if activeCount >= reader.MaxBorrowLimit {
		return BorrowDecision{Reason: ReasonLimitReached}
	}
	if hasOverdue {
		return BorrowDecision{Reason: ReasonHasOverdue}
	}
	return BorrowDecision{Can: true}
}
