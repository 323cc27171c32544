package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

//go:embed db/migration
var migrationFS embed.FS

func applyLatestSchema(db *sql.DB) error {
	latestSchemaPath := fmt.Sprintf("db/migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "Failed to read latest schema file: %q", latestSchemaPath)
	}

	stmt := string(buf)
	if err := execute(stmt, db); err != nil {
		return errors.Wrapf(err, "Failed to apply latest schema: %s", stmt)
	}
	return nil
}

func execute(stmt string, d *sql.DB) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(stmt); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}

func createTestDb(name string) (*sql.DB, error) {
	testDir := os.TempDir() + "/liber-test"
	// Create a directory if not exists
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		err := os.Mkdir(testDir, 0755)
		if err != nil {
			return nil, err
		}
	}
	filename := testDir + "/" + name + ".db"
	// A leftover file from a previous run would already carry the schema.
	os.Remove(filename)
	// Same pragmas as db.NewDB so the suite runs against the schema the
	// server enforces, foreign keys included.
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", filename)
	return sql.Open("sqlite", dsn)
}

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	db, err := createTestDb(name)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if err := applyLatestSchema(db); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	return NewStore(db)
}

// seedLending sets up a user, category, book, a physical copy with the
// given stock and a reader, the minimum rows a lending flow touches.
func seedLending(t *testing.T, s *Store, totalCopies int) (*model.BookCopy, *model.Reader) {
	t.Helper()

	user, err := s.CreateUser(&model.User{
		Username:     "ada",
		PasswordHash: "secret",
		Role:         model.RoleUser,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	category, err := model.NewCategory(&model.CategoryUpsertRequest{Name: "Fiction"})
	if err != nil {
		t.Fatalf("Failed to build category: %v", err)
	}
	category, err = s.AddCategory(category)
	if err != nil {
		t.Fatalf("Failed to add category: %v", err)
	}

	book, err := model.NewBook(&model.BookCreateRequest{
		Title:      "The Left Hand of Darkness",
		Author:     "Ursula K. Le Guin",
		Publisher:  "Ace Books",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("Failed to build book: %v", err)
	}
	book, err = s.AddBook(book)
	if err != nil {
		t.Fatalf("Failed to add book: %v", err)
	}

	copy, err := model.NewPhysicalCopy(book.ID, totalCopies, "Shelf A1")
	if err != nil {
		t.Fatalf("Failed to build copy: %v", err)
	}
	copy, err = s.AddCopy(copy)
	if err != nil {
		t.Fatalf("Failed to add copy: %v", err)
	}

	reader, err := model.NewReader(&model.ReaderUpsertRequest{UserID: user.ID, Name: "Ada"})
	if err != nil {
		t.Fatalf("Failed to build reader: %v", err)
	}
	reader, err = s.AddReader(reader)
	if err != nil {
		t.Fatalf("Failed to add reader: %v", err)
	}

	return copy, reader
}

func mustBorrow(t *testing.T, s *Store, copy *model.BookCopy, readerID int32, now time.Time) *model.BorrowRecord {
	t.Helper()
	record, err := model.NewBorrowRecord(copy, readerID, now, 30)
	if err != nil {
		t.Fatalf("Failed to build borrow record: %v", err)
	}
	record, err = s.BorrowBook(record, copy.Type)
	if err != nil {
		t.Fatalf("Failed to borrow: %v", err)
	}
	return record
}

func TestBorrowBookTakesStock(t *testing.T) {
	s := newTestStore(t, "borrow_takes_stock")
	copy, reader := seedLending(t, s, 2)
	now := time.Now().UTC()

	record := mustBorrow(t, s, copy, reader.ID, now)
	if record.ID == 0 {
		t.Fatalf("Expected a persisted record id")
	}
	if record.Status != model.BorrowStatusBorrowed {
		t.Fatalf("Expected status BORROWED, got %s", record.Status)
	}
	if record.DueDate == nil {
		t.Fatalf("Expected a due date")
	}

	reloaded, err := s.GetCopy(&model.FindCopy{ID: &copy.ID})
	if err != nil {
		t.Fatalf("Failed to get copy: %v", err)
	}
	if reloaded.AvailableCopies != 1 {
		t.Fatalf("Expected 1 available copy, got %d", reloaded.AvailableCopies)
	}

	mustBorrow(t, s, copy, reader.ID, now)

	// The stock is drained now, the next borrow has to lose.
	record, err = model.NewBorrowRecord(copy, reader.ID, now, 30)
	if err != nil {
		t.Fatalf("Failed to build borrow record: %v", err)
	}
	_, err = s.BorrowBook(record, copy.Type)
	var outOfStock *model.OutOfStockError
	if !errors.As(err, &outOfStock) {
		t.Fatalf("Expected OutOfStockError, got %v", err)
	}

	count, err := s.CountBorrows(&model.FindBorrow{CopyID: &copy.ID})
	if err != nil {
		t.Fatalf("Failed to count borrows: %v", err)
	}
	if count != 2 {
		t.Fatalf("The failed borrow must not leave a record, got %d", count)
	}
}

func TestBorrowEbookSkipsCounters(t *testing.T) {
	s := newTestStore(t, "borrow_ebook")
	physical, reader := seedLending(t, s, 1)

	ebook, err := model.NewEbookCopy(physical.BookID, model.EbookFormatEpub, "/data/books/x.epub", 1024)
	if err != nil {
		t.Fatalf("Failed to build ebook copy: %v", err)
	}
	ebook, err = s.AddCopy(ebook)
	if err != nil {
		t.Fatalf("Failed to add ebook copy: %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		mustBorrow(t, s, ebook, reader.ID, now)
	}

	reloaded, err := s.GetCopy(&model.FindCopy{ID: &ebook.ID})
	if err != nil {
		t.Fatalf("Failed to get copy: %v", err)
	}
	if reloaded.AvailableCopies != 0 || reloaded.TotalCopies != 0 {
		t.Fatalf("Ebook counters must stay zero, got %d/%d", reloaded.AvailableCopies, reloaded.TotalCopies)
	}

	// The status gate still applies to ebooks.
	reloaded.MarkMaintenance()
	if _, err := s.UpdateCopy(reloaded); err != nil {
		t.Fatalf("Failed to update copy: %v", err)
	}
	record, err := model.NewBorrowRecord(ebook, reader.ID, now, 30)
	if err != nil {
		t.Fatalf("Failed to build borrow record: %v", err)
	}
	_, err = s.BorrowBook(record, ebook.Type)
	var invalidState *model.InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("Expected InvalidStateError, got %v", err)
	}

	record.CopyID = 9999
	_, err = s.BorrowBook(record, model.CopyTypeEbook)
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for unknown copy, got %v", err)
	}
}

func TestReturnBookRestocksOnce(t *testing.T) {
	s := newTestStore(t, "return_restocks")
	copy, reader := seedLending(t, s, 1)
	now := time.Now().UTC()

	record := mustBorrow(t, s, copy, reader.ID, now)

	returned, err := s.ReturnBook(record.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to return: %v", err)
	}
	if returned.Status != model.BorrowStatusReturned {
		t.Fatalf("Expected status RETURNED, got %s", returned.Status)
	}
	if returned.ReturnDate == nil {
		t.Fatalf("Expected a return date")
	}

	reloaded, err := s.GetCopy(&model.FindCopy{ID: &copy.ID})
	if err != nil {
		t.Fatalf("Failed to get copy: %v", err)
	}
	if reloaded.AvailableCopies != 1 {
		t.Fatalf("Expected stock back to 1, got %d", reloaded.AvailableCopies)
	}

	_, err = s.ReturnBook(record.ID, now.Add(2*time.Hour))
	var invalidState *model.InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("Expected InvalidStateError on double return, got %v", err)
	}
}

func TestRenewIsPersisted(t *testing.T) {
	s := newTestStore(t, "renew_persisted")
	copy, reader := seedLending(t, s, 1)
	now := time.Now().UTC().Truncate(time.Second)

	record := mustBorrow(t, s, copy, reader.ID, now)
	originalDue := *record.DueDate

	if err := record.Renew(now.Add(time.Hour), 15, 2); err != nil {
		t.Fatalf("Failed to renew: %v", err)
	}
	if _, err := s.UpdateBorrow(record); err != nil {
		t.Fatalf("Failed to update borrow: %v", err)
	}

	reloaded, err := s.GetBorrow(&model.FindBorrow{ID: &record.ID})
	if err != nil {
		t.Fatalf("Failed to get borrow: %v", err)
	}
	if reloaded.RenewCount != 1 {
		t.Fatalf("Expected renew count 1, got %d", reloaded.RenewCount)
	}
	if !reloaded.DueDate.Equal(originalDue.AddDate(0, 0, 15)) {
		t.Fatalf("Expected due date %v, got %v", originalDue.AddDate(0, 0, 15), *reloaded.DueDate)
	}
}

func TestMarkOverdueRecords(t *testing.T) {
	s := newTestStore(t, "mark_overdue")
	copy, reader := seedLending(t, s, 5)

	// Two loans taken 45 days ago with a 30 day term are past due, one
	// taken today is not, and a returned one must never be promoted.
	past := time.Now().UTC().Add(-45 * 24 * time.Hour)
	now := time.Now().UTC()

	late1 := mustBorrow(t, s, copy, reader.ID, past)
	late2 := mustBorrow(t, s, copy, reader.ID, past)
	current := mustBorrow(t, s, copy, reader.ID, now)
	closed := mustBorrow(t, s, copy, reader.ID, past)
	if _, err := s.ReturnBook(closed.ID, now); err != nil {
		t.Fatalf("Failed to return: %v", err)
	}

	// The sweep has not run yet, but the reader already counts as holding
	// overdue items.
	hasOverdue, err := s.HasOverdueByReader(reader.ID, now)
	if err != nil {
		t.Fatalf("Failed to check overdue: %v", err)
	}
	if !hasOverdue {
		t.Fatalf("Expected overdue items before the sweep")
	}

	marked, err := s.MarkOverdueRecords(now)
	if err != nil {
		t.Fatalf("Failed to mark overdue records: %v", err)
	}
	if marked != 2 {
		t.Fatalf("Expected 2 records marked, got %d", marked)
	}

	for _, id := range []int32{late1.ID, late2.ID} {
		record, err := s.GetBorrow(&model.FindBorrow{ID: &id})
		if err != nil {
			t.Fatalf("Failed to get borrow: %v", err)
		}
		if record.Status != model.BorrowStatusOverdue {
			t.Fatalf("Expected record %d OVERDUE, got %s", id, record.Status)
		}
	}
	record, err := s.GetBorrow(&model.FindBorrow{ID: &current.ID})
	if err != nil {
		t.Fatalf("Failed to get borrow: %v", err)
	}
	if record.Status != model.BorrowStatusBorrowed {
		t.Fatalf("The current loan must stay BORROWED, got %s", record.Status)
	}

	// Running the sweep again finds nothing new.
	marked, err = s.MarkOverdueRecords(now)
	if err != nil {
		t.Fatalf("Failed to mark overdue records: %v", err)
	}
	if marked != 0 {
		t.Fatalf("Expected an idempotent sweep, got %d", marked)
	}
}

func TestActiveBorrowGuards(t *testing.T) {
	s := newTestStore(t, "active_guards")
	copy, reader := seedLending(t, s, 1)
	now := time.Now().UTC()

	record := mustBorrow(t, s, copy, reader.ID, now)

	count, err := s.CountActiveByReader(reader.ID)
	if err != nil {
		t.Fatalf("Failed to count active borrows: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 active borrow, got %d", count)
	}

	var conflict *model.ConflictError
	if err := s.RemoveReader(reader.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError removing a borrowing reader, got %v", err)
	}
	if err := s.RemoveCopy(copy.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError removing a checked out copy, got %v", err)
	}

	if _, err := s.ReturnBook(record.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("Failed to return: %v", err)
	}

	active, err := s.HasActiveBorrowsByReader(reader.ID)
	if err != nil {
		t.Fatalf("Failed to check active borrows: %v", err)
	}
	if active {
		t.Fatalf("Expected no active borrows after return")
	}

	// The returned record still references both rows, so deletion must
	// come back as a conflict rather than a foreign key failure.
	if err := s.RemoveReader(reader.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError removing a reader with history, got %v", err)
	}
	if err := s.RemoveCopy(copy.ID); !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError removing a copy with history, got %v", err)
	}

	// Rows nothing ever referenced delete cleanly.
	fresh, err := model.NewPhysicalCopy(copy.BookID, 1, "Shelf Z9")
	if err != nil {
		t.Fatalf("Failed to build copy: %v", err)
	}
	fresh, err = s.AddCopy(fresh)
	if err != nil {
		t.Fatalf("Failed to add copy: %v", err)
	}
	if err := s.RemoveCopy(fresh.ID); err != nil {
		t.Fatalf("Failed to remove unused copy: %v", err)
	}

	user, err := s.CreateUser(&model.User{
		Username:     "grace",
		PasswordHash: "secret",
		Role:         model.RoleUser,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	walkIn, err := model.NewReader(&model.ReaderUpsertRequest{UserID: user.ID, Name: "Grace"})
	if err != nil {
		t.Fatalf("Failed to build reader: %v", err)
	}
	walkIn, err = s.AddReader(walkIn)
	if err != nil {
		t.Fatalf("Failed to add reader: %v", err)
	}
	if err := s.RemoveReader(walkIn.ID); err != nil {
		t.Fatalf("Failed to remove unused reader: %v", err)
	}
}
