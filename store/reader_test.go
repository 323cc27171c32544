package store

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/liber-hq/liber/model"
)

func TestAddReaderStudentIDUniqueness(t *testing.T) {
	s := newTestStore(t, "reader_student_id")

	addUser := func(username string) int32 {
		t.Helper()
		user, err := s.CreateUser(&model.User{
			Username:     username,
			PasswordHash: "secret",
			Role:         model.RoleUser,
		})
		if err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
		return user.ID
	}
	addReader := func(userID int32, name, studentID string) (*model.Reader, error) {
		t.Helper()
		reader, err := model.NewReader(&model.ReaderUpsertRequest{
			UserID:    userID,
			Name:      name,
			StudentID: studentID,
		})
		if err != nil {
			t.Fatalf("Failed to build reader: %v", err)
		}
		return s.AddReader(reader)
	}

	if _, err := addReader(addUser("ada"), "Ada", "S-1815"); err != nil {
		t.Fatalf("Failed to add reader: %v", err)
	}

	var conflict *model.ConflictError
	_, err := addReader(addUser("grace"), "Grace", "S-1815")
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on duplicate student id, got %v", err)
	}

	// Empty student ids are stored as NULL, so walk-in readers without one
	// never collide with each other.
	if _, err := addReader(addUser("linus"), "Linus", ""); err != nil {
		t.Fatalf("Failed to add reader without student id: %v", err)
	}
	if _, err := addReader(addUser("dennis"), "Dennis", ""); err != nil {
		t.Fatalf("Failed to add second reader without student id: %v", err)
	}

	adaID := addUser("ada2")
	reader, err := addReader(adaID, "Ada Again", "")
	if err != nil {
		t.Fatalf("Failed to add reader: %v", err)
	}
	_, err = addReader(reader.UserID, "Duplicate", "")
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on duplicate user id, got %v", err)
	}
}
