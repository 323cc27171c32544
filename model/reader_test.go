package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	reader, err := NewReader(&ReaderUpsertRequest{
		UserID:    1,
		Name:      " Ada Lovelace ",
		StudentID: "S-1815",
		Phone:     "+44 20 7946 0958",
		Email:     "ada@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", reader.Name)
	assert.Equal(t, ReaderStatusActive, reader.Status)
	assert.Equal(t, DefaultMaxBorrowLimit, reader.MaxBorrowLimit)

	limit := 12
	reader, err = NewReader(&ReaderUpsertRequest{UserID: 1, Name: "Ada", MaxBorrowLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 12, reader.MaxBorrowLimit)
}

func TestReaderValidate(t *testing.T) {
	overLimit := MaxBorrowLimitCeiling + 1
	tests := []struct {
		name string
		req  ReaderUpsertRequest
	}{
		{"blank name", ReaderUpsertRequest{UserID: 1, Name: "  "}},
		{"bad phone", ReaderUpsertRequest{UserID: 1, Name: "Ada", Phone: "not-a-phone"}},
		{"bad email", ReaderUpsertRequest{UserID: 1, Name: "Ada", Email: "nope"}},
		{"limit above ceiling", ReaderUpsertRequest{UserID: 1, Name: "Ada", MaxBorrowLimit: &overLimit}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(&tc.req)
			assert.Error(t, err)
			assert.IsType(t, &ValidationError{}, err)
		})
	}
}

func TestReaderActivateDeactivate(t *testing.T) {
	reader, err := NewReader(&ReaderUpsertRequest{UserID: 1, Name: "Ada"})
	require.NoError(t, err)

	err = reader.Activate()
	assert.IsType(t, &InvalidStateError{}, err, "already active")

	require.NoError(t, reader.Deactivate())
	assert.False(t, reader.CanBorrow())

	err = reader.Deactivate()
	assert.IsType(t, &InvalidStateError{}, err, "already inactive")

	require.NoError(t, reader.Activate())
	assert.True(t, reader.CanBorrow())
}

func TestReaderUpdateInfoRollsBackOnFailure(t *testing.T) {
	reader, err := NewReader(&ReaderUpsertRequest{UserID: 1, Name: "Ada", Email: "ada@example.org"})
	require.NoError(t, err)

	err = reader.UpdateInfo(&ReaderUpsertRequest{Name: "Ada", Email: "broken"})
	require.Error(t, err)
	assert.Equal(t, "ada@example.org", reader.Email)
}
