package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty is allowed", "", "", false},
		{"ten digits", "0306406152", "0306406152", false},
		{"thirteen digits", "9780306406157", "9780306406157", false},
		{"hyphens stripped", "978-0-306-40615-7", "9780306406157", false},
		{"spaces stripped", "978 0 306 40615 7", "9780306406157", false},
		{"wrong length", "12345", "", true},
		{"letters rejected", "97803064061XX", "", true},
		{"only separators normalizes to empty", "- -", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeISBN(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				assert.IsType(t, &ValidationError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewBook(t *testing.T) {
	book, err := NewBook(&BookCreateRequest{
		Title:      "  The Go Programming Language ",
		Author:     "Donovan & Kernighan",
		Publisher:  "Addison-Wesley",
		ISBN:       "978-0134190440",
		CategoryID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", book.Title)
	assert.Equal(t, "9780134190440", book.ISBN)

	_, err = NewBook(&BookCreateRequest{Title: "", Author: "a", Publisher: "p", CategoryID: 1})
	assert.Error(t, err)
	_, err = NewBook(&BookCreateRequest{Title: "t", Author: "", Publisher: "p", CategoryID: 1})
	assert.Error(t, err)
	_, err = NewBook(&BookCreateRequest{Title: "t", Author: "a", Publisher: "", CategoryID: 1})
	assert.Error(t, err)

	// The schema requires a category on every book.
	_, err = NewBook(&BookCreateRequest{Title: "t", Author: "a", Publisher: "p"})
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestBookUpdateInfoRollsBackOnFailure(t *testing.T) {
	book, err := NewBook(&BookCreateRequest{
		Title:      "Original",
		Author:     "Author",
		Publisher:  "Publisher",
		ISBN:       "9780306406157",
		CategoryID: 1,
	})
	require.NoError(t, err)

	err = book.UpdateInfo(&BookCreateRequest{
		Title:      "",
		Author:     "New Author",
		Publisher:  "New Publisher",
		CategoryID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, "Original", book.Title, "failed update must not mutate")
	assert.Equal(t, "9780306406157", book.ISBN)

	err = book.UpdateInfo(&BookCreateRequest{
		Title:      "Updated",
		Author:     "New Author",
		Publisher:  "New Publisher",
		ISBN:       "0-306-40615-2",
		CategoryID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", book.Title)
	assert.Equal(t, "0306406152", book.ISBN)
}
