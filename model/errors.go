package model //import "github.com/liber-hq/liber/model"

import "fmt"

// ValidationError reports a malformed, missing or out-of-range field on
// entity construction or update. The message names the violated rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to an id that does not exist.
type NotFoundError struct {
	Resource string
	ID       int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id int32) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a business rule blocking the operation, with a
// human-readable reason. The caller may resubmit after correcting state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation attempted from a state that
// forbids it, like returning an already returned record.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// OutOfStockError reports a borrow attempt against a physical copy with
// no available stock.
type OutOfStockError struct {
	Message string
}

func (e *OutOfStockError) Error() string {
	return e.Message
}

func NewOutOfStockError(format string, args ...any) *OutOfStockError {
	return &OutOfStockError{Message: fmt.Sprintf(format, args...)}
}

// OverReturnError reports a return that would push available stock above
// the total.
type OverReturnError struct {
	Message string
}

func (e *OverReturnError) Error() string {
	return e.Message
}

func NewOverReturnError(format string, args ...any) *OverReturnError {
	return &OverReturnError{Message: fmt.Sprintf(format, args...)}
}

// LimitExceededError reports a renewal cap that has been reached. Terminal
// for that record.
type LimitExceededError struct {
	Message string
}

func (e *LimitExceededError) Error() string {
	return e.Message
}

func NewLimitExceededError(format string, args ...any) *LimitExceededError {
	return &LimitExceededError{Message: fmt.Sprintf(format, args...)}
}

// OverdueError reports an operation blocked because the record is past its
// due date.
type OverdueError struct {
	Message string
}

func (e *OverdueError) Error() string {
	return e.Message
}

func NewOverdueError(format string, args ...any) *OverdueError {
	return &OverdueError{Message: fmt.Sprintf(format, args...)}
}
