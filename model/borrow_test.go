package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestRecord(t *testing.T) *BorrowRecord {
	t.Helper()
	copy, err := NewPhysicalCopy(7, 3, "Shelf B1")
	require.NoError(t, err)
	copy.ID = 42

	record, err := NewBorrowRecord(copy, 9, testNow(), 30)
	require.NoError(t, err)
	return record
}

func TestNewBorrowRecord(t *testing.T) {
	record := newTestRecord(t)

	assert.Equal(t, int32(42), record.CopyID)
	assert.Equal(t, int32(7), record.BookID)
	assert.Equal(t, int32(9), record.ReaderID)
	assert.Equal(t, BorrowStatusBorrowed, record.Status)
	require.NotNil(t, record.DueDate)
	assert.Equal(t, testNow().AddDate(0, 0, 30), *record.DueDate)

	copy, _ := NewPhysicalCopy(7, 3, "Shelf B1")
	_, err := NewBorrowRecord(copy, 9, testNow(), 0)
	assert.IsType(t, &ValidationError{}, err)
}

func TestReturnIsTerminal(t *testing.T) {
	record := newTestRecord(t)
	returnTime := testNow().AddDate(0, 0, 10)

	require.NoError(t, record.Return(returnTime))
	assert.Equal(t, BorrowStatusReturned, record.Status)
	require.NotNil(t, record.ReturnDate)
	assert.Equal(t, returnTime, *record.ReturnDate)

	err := record.Return(returnTime)
	assert.IsType(t, &InvalidStateError{}, err)

	err = record.Renew(returnTime, 30, 2)
	assert.IsType(t, &InvalidStateError{}, err, "renewing a returned record must fail")

	err = record.MarkOverdue()
	assert.IsType(t, &InvalidStateError{}, err)
}

func TestRenewExtendsDueDate(t *testing.T) {
	record := newTestRecord(t)
	originalDue := *record.DueDate

	require.NoError(t, record.Renew(testNow().AddDate(0, 0, 5), 15, 2))
	assert.Equal(t, originalDue.AddDate(0, 0, 15), *record.DueDate)
	assert.Equal(t, 1, record.RenewCount)
}

func TestRenewCap(t *testing.T) {
	record := newTestRecord(t)
	now := testNow().AddDate(0, 0, 1)

	require.NoError(t, record.Renew(now, 30, 2))
	require.NoError(t, record.Renew(now, 30, 2))

	err := record.Renew(now, 30, 2)
	assert.IsType(t, &LimitExceededError{}, err)
	assert.Equal(t, 2, record.RenewCount)
}

func TestOverdueBlocksRenewal(t *testing.T) {
	record := newTestRecord(t)
	pastDue := record.DueDate.AddDate(0, 0, 1)

	assert.True(t, record.IsOverdue(pastDue))
	err := record.Renew(pastDue, 30, 2)
	assert.IsType(t, &OverdueError{}, err)

	// The sweep-marked state blocks renewal even before the due date check.
	marked := newTestRecord(t)
	require.NoError(t, marked.MarkOverdue())
	err = marked.Renew(testNow(), 30, 2)
	assert.IsType(t, &OverdueError{}, err)
}

func TestOverdueRecordCanStillBeReturned(t *testing.T) {
	record := newTestRecord(t)
	require.NoError(t, record.MarkOverdue())

	returnTime := record.DueDate.AddDate(0, 0, 14)
	require.NoError(t, record.Return(returnTime))
	assert.Equal(t, BorrowStatusReturned, record.Status)
	assert.False(t, record.IsOverdue(returnTime))
}

func TestIsOverdue(t *testing.T) {
	record := newTestRecord(t)

	assert.False(t, record.IsOverdue(testNow()))
	assert.False(t, record.IsOverdue(*record.DueDate), "due date itself is not overdue")
	assert.True(t, record.IsOverdue(record.DueDate.Add(time.Second)))

	// Records without a due date never expire.
	record.DueDate = nil
	assert.False(t, record.IsOverdue(testNow().AddDate(10, 0, 0)))
}

func TestRenewWithoutDueDate(t *testing.T) {
	record := newTestRecord(t)
	record.DueDate = nil

	err := record.Renew(testNow(), 30, 2)
	assert.IsType(t, &InvalidStateError{}, err, "there is no due date to extend")
	assert.Equal(t, 0, record.RenewCount)
}

func TestBorrowPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultBorrowPolicy().Validate())

	tests := []struct {
		name   string
		policy BorrowPolicy
	}{
		{"zero borrow days", BorrowPolicy{DefaultBorrowDays: 0, MaxRenewCount: 2, RenewDays: 30}},
		{"borrow days too long", BorrowPolicy{DefaultBorrowDays: 366, MaxRenewCount: 2, RenewDays: 30}},
		{"negative renew count", BorrowPolicy{DefaultBorrowDays: 30, MaxRenewCount: -1, RenewDays: 30}},
		{"renew count too high", BorrowPolicy{DefaultBorrowDays: 30, MaxRenewCount: 6, RenewDays: 30}},
		{"zero renew days", BorrowPolicy{DefaultBorrowDays: 30, MaxRenewCount: 2, RenewDays: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.policy.Validate())
		})
	}
}
