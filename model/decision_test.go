package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBorrow(t *testing.T) {
	newCopy := func(available int) *BookCopy {
		copy, err := NewPhysicalCopy(1, 5, "Shelf A1")
		require.NoError(t, err)
		copy.AvailableCopies = available
		return copy
	}
	newReader := func(status ReaderStatus, limit int) *Reader {
		return &Reader{ID: 1, Name: "Ada", Status: status, MaxBorrowLimit: limit}
	}

	tests := []struct {
		name        string
		copy        *BookCopy
		reader      *Reader
		activeCount int
		hasOverdue  bool
		wantCan     bool
		wantReason  string
	}{
		{
			name:    "all clear",
			copy:    newCopy(3),
			reader:  newReader(ReaderStatusActive, 5),
			wantCan: true,
		},
		{
			name:       "no stock",
			copy:       newCopy(0),
			reader:     newReader(ReaderStatusActive, 5),
			wantReason: ReasonInsufficientStock,
		},
		{
			name:       "inactive reader",
			copy:       newCopy(3),
			reader:     newReader(ReaderStatusInactive, 5),
			wantReason: ReasonAccountDisabled,
		},
		{
			name:        "at the borrow limit",
			copy:        newCopy(3),
			reader:      newReader(ReaderStatusActive, 5),
			activeCount: 5,
			wantReason:  ReasonLimitReached,
		},
		{
			name:       "overdue items outstanding",
			copy:       newCopy(3),
			reader:     newReader(ReaderStatusActive, 5),
			hasOverdue: true,
			wantReason: ReasonHasOverdue,
		},
		{
			name:        "stock failure wins over account state",
			copy:        newCopy(0),
			reader:      newReader(ReaderStatusInactive, 5),
			activeCount: 9,
			hasOverdue:  true,
			wantReason:  ReasonInsufficientStock,
		},
		{
			name:        "account state wins over limit",
			copy:        newCopy(3),
			reader:      newReader(ReaderStatusInactive, 5),
			activeCount: 9,
			hasOverdue:  true,
			wantReason:  ReasonAccountDisabled,
		},
		{
			name:        "limit wins over overdue",
			copy:        newCopy(3),
			reader:      newReader(ReaderStatusActive, 5),
			activeCount: 5,
			hasOverdue:  true,
			wantReason:  ReasonLimitReached,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := CheckBorrow(tc.copy, tc.reader, tc.activeCount, tc.hasOverdue)
			assert.Equal(t, tc.wantCan, decision.Can)
			assert.Equal(t, tc.wantReason, decision.Reason)
		})
	}
}

func TestCheckBorrowEbookIgnoresStock(t *testing.T) {
	copy, err := NewEbookCopy(1, EbookFormatEpub, "/x.epub", 1)
	require.NoError(t, err)
	reader := &Reader{ID: 1, Name: "Ada", Status: ReaderStatusActive, MaxBorrowLimit: 5}

	decision := CheckBorrow(copy, reader, 0, false)
	assert.True(t, decision.Can)
}
