package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhysicalCopy(t *testing.T) {
	copy, err := NewPhysicalCopy(1, 5, "Shelf A3")
	require.NoError(t, err)
	assert.Equal(t, CopyTypePhysical, copy.Type)
	assert.Equal(t, CopyStatusAvailable, copy.Status)
	assert.Equal(t, 5, copy.TotalCopies)
	assert.Equal(t, 5, copy.AvailableCopies)

	_, err = NewPhysicalCopy(1, 0, "Shelf A3")
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestNewEbookCopy(t *testing.T) {
	copy, err := NewEbookCopy(1, EbookFormatEpub, "/data/books/x.epub", 1024)
	require.NoError(t, err)
	assert.Equal(t, CopyTypeEbook, copy.Type)
	assert.True(t, copy.IsAvailable())

	_, err = NewEbookCopy(1, EbookFormatEpub, "", 1024)
	assert.Error(t, err, "empty file path must be rejected")

	_, err = NewEbookCopy(1, "azw3", "/data/books/x.azw3", 1024)
	assert.Error(t, err, "unsupported format must be rejected")
}

func TestCopyValidateFieldExclusivity(t *testing.T) {
	tests := []struct {
		name string
		copy BookCopy
	}{
		{
			name: "physical with ebook fields",
			copy: BookCopy{Type: CopyTypePhysical, Status: CopyStatusAvailable, TotalCopies: 1, AvailableCopies: 1, FilePath: "/x.epub"},
		},
		{
			name: "ebook with stock fields",
			copy: BookCopy{Type: CopyTypeEbook, Status: CopyStatusAvailable, Format: EbookFormatPDF, FilePath: "/x.pdf", TotalCopies: 3},
		},
		{
			name: "unknown type",
			copy: BookCopy{Type: "DIGITAL", Status: CopyStatusAvailable},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.copy.Validate()
			assert.Error(t, err)
			assert.IsType(t, &ValidationError{}, err)
		})
	}
}

func TestBorrowAndReturnRoundTrip(t *testing.T) {
	copy, err := NewPhysicalCopy(1, 5, "Shelf A3")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, copy.Borrow())
	}
	assert.Equal(t, 0, copy.AvailableCopies)
	assert.False(t, copy.IsAvailable())

	err = copy.Borrow()
	assert.IsType(t, &OutOfStockError{}, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, copy.Return())
	}
	assert.Equal(t, 5, copy.AvailableCopies)

	err = copy.Return()
	assert.IsType(t, &OverReturnError{}, err)
}

func TestEbookBorrowIsUnlimited(t *testing.T) {
	copy, err := NewEbookCopy(1, EbookFormatPDF, "/data/books/x.pdf", 10)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, copy.Borrow())
	}
	assert.True(t, copy.IsAvailable())
	assert.NoError(t, copy.Return())
}

func TestBorrowBlockedByStatus(t *testing.T) {
	copy, err := NewPhysicalCopy(1, 2, "Shelf A3")
	require.NoError(t, err)

	copy.MarkMaintenance()
	err = copy.Borrow()
	assert.IsType(t, &InvalidStateError{}, err)
	assert.False(t, copy.IsAvailable())

	copy.MarkAvailable()
	assert.NoError(t, copy.Borrow())
}

func TestUpdateTotalCopies(t *testing.T) {
	copy, err := NewPhysicalCopy(1, 5, "Shelf A3")
	require.NoError(t, err)

	// Borrow three, leaving two in stock.
	for i := 0; i < 3; i++ {
		require.NoError(t, copy.Borrow())
	}

	require.NoError(t, copy.UpdateTotalCopies(4))
	assert.Equal(t, 4, copy.TotalCopies)
	assert.Equal(t, 1, copy.AvailableCopies, "borrowed count must be preserved")

	err = copy.UpdateTotalCopies(2)
	assert.Error(t, err, "cannot shrink below the borrowed count")

	err = copy.UpdateTotalCopies(0)
	assert.Error(t, err)

	ebook, err := NewEbookCopy(1, EbookFormatEpub, "/x.epub", 1)
	require.NoError(t, err)
	assert.Error(t, ebook.UpdateTotalCopies(3))
}
