package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

const borrowColumns = `id, created_ts, updated_ts, copy_id, book_id, reader_id, borrow_date, due_date, return_date, renew_count, status`

func (s *Store) GetBorrow(find *model.FindBorrow) (*model.BorrowRecord, error) {
	list, err := s.ListBorrows(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListBorrows(find *model.FindBorrow) ([]*model.BorrowRecord, error) {
	where, args := borrowFilter(find)

	query := `
		SELECT ` + borrowColumns + `
		FROM borrow_record
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY borrow_date DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query borrow records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.BorrowRecord, 0)
	for rows.Next() {
		record, err := scanBorrowRow(rows)
		if err != nil {
			log.Error("Failed to scan borrow record", zap.Error(err))
			return nil, err
		}
		list = append(list, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountBorrows(find *model.FindBorrow) (int, error) {
	where, args := borrowFilter(find)
	query := `SELECT COUNT(*) FROM borrow_record WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func borrowFilter(find *model.FindBorrow) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.CopyID; v != nil {
		where, args = append(where, "copy_id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.ReaderID; v != nil {
		where, args = append(where, "reader_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	return where, args
}

// CountActiveByReader is the number of BORROWED/OVERDUE records held by a
// reader, checked against the borrow limit.
func (s *Store) CountActiveByReader(readerID int32) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM borrow_record WHERE reader_id = ? AND status IN ('BORROWED', 'OVERDUE')`,
		readerID,
	).Scan(&count)
	return count, err
}

// HasOverdueByReader reports whether the reader holds anything past due at
// now, counting BORROWED records the sweep has not promoted yet.
func (s *Store) HasOverdueByReader(readerID int32, now time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM borrow_record
		WHERE reader_id = ?
		AND (status = 'OVERDUE' OR (status = 'BORROWED' AND due_date IS NOT NULL AND due_date < ?))`,
		readerID, formatTime(now),
	).Scan(&count)
	return count > 0, err
}

func (s *Store) HasActiveBorrowsByCopy(copyID int32) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM borrow_record WHERE copy_id = ? AND status IN ('BORROWED', 'OVERDUE')`,
		copyID,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) HasActiveBorrowsByBook(bookID int32) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM borrow_record WHERE book_id = ? AND status IN ('BORROWED', 'OVERDUE')`,
		bookID,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) HasActiveBorrowsByReader(readerID int32) (bool, error) {
	count, err := s.CountActiveByReader(readerID)
	return count > 0, err
}

// Borrow records keep foreign keys to their reader and copy, so rows with
// any history, returned included, block deletion of the referenced entity.
func (s *Store) HasBorrowHistoryByReader(readerID int32) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM borrow_record WHERE reader_id = ?`,
		readerID,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) HasBorrowHistoryByCopy(copyID int32) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM borrow_record WHERE copy_id = ?`,
		copyID,
	).Scan(&count)
	return count > 0, err
}

// BorrowBook persists a new lending transaction. The stock decrement and
// the record insert share one transaction, and the decrement is
// conditional on remaining stock, so two concurrent borrows of the last
// physical copy cannot both succeed: the loser matches zero rows and the
// whole transaction rolls back.
func (s *Store) BorrowBook(record *model.BorrowRecord, copyType model.CopyType) (*model.BorrowRecord, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if copyType == model.CopyTypePhysical {
		result, err := tx.Exec(`
			UPDATE book_copy
			SET available_copies = available_copies - 1, updated_ts = ?
			WHERE id = ? AND type = 'PHYSICAL' AND status = 'AVAILABLE' AND available_copies > 0`,
			now, record.CopyID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to take stock")
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			return nil, model.NewOutOfStockError("no available copies of copy %d", record.CopyID)
		}
	} else {
		// Ebook reads are unlimited; only the status gate applies.
		var status model.CopyStatus
		if err := tx.QueryRow(`SELECT status FROM book_copy WHERE id = ?`, record.CopyID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, model.NewNotFoundError("copy", record.CopyID)
			}
			return nil, err
		}
		if status != model.CopyStatusAvailable {
			return nil, model.NewInvalidStateError("copy %d is %s and cannot be borrowed", record.CopyID, status)
		}
	}

	stmt := `
		INSERT INTO borrow_record (copy_id, book_id, reader_id, borrow_date, due_date, return_date, renew_count, status)
		VALUES (?, ?, ?, ?, ?, NULL, ?, ?)
		RETURNING ` + borrowColumns
	args := []any{record.CopyID, record.BookID, record.ReaderID, formatTime(record.BorrowDate), formatTimePtr(record.DueDate), record.RenewCount, record.Status}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	newRecord, err := scanBorrowRow(tx.QueryRow(stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert borrow record")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return newRecord, nil
}

// ReturnBook closes a lending transaction. The record transition and the
// stock increment commit together; both are guarded so a double return
// fails at whichever layer sees it first.
func (s *Store) ReturnBook(recordID int32, now time.Time) (*model.BorrowRecord, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	record, err := scanBorrowRow(tx.QueryRow(`
		UPDATE borrow_record
		SET status = 'RETURNED', return_date = ?, updated_ts = ?
		WHERE id = ? AND status IN ('BORROWED', 'OVERDUE')
		RETURNING `+borrowColumns,
		formatTime(now), now.Unix(), recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewInvalidStateError("borrow record %d is already returned", recordID)
		}
		return nil, errors.Wrap(err, "failed to close borrow record")
	}

	var copyType model.CopyType
	if err := tx.QueryRow(`SELECT type FROM book_copy WHERE id = ?`, record.CopyID).Scan(&copyType); err != nil {
		return nil, err
	}
	if copyType == model.CopyTypePhysical {
		result, err := tx.Exec(`
			UPDATE book_copy
			SET available_copies = available_copies + 1, updated_ts = ?
			WHERE id = ? AND available_copies < total_copies`,
			now.Unix(), record.CopyID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to restock copy")
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			return nil, model.NewOverReturnError("all copies of copy %d are already in stock", record.CopyID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateBorrow persists an entity mutated in memory, e.g. after Renew.
func (s *Store) UpdateBorrow(record *model.BorrowRecord) (*model.BorrowRecord, error) {
	stmt := `
		UPDATE borrow_record
		SET due_date = ?, return_date = ?, renew_count = ?, status = ?, updated_ts = ?
		WHERE id = ?
		RETURNING ` + borrowColumns
	args := []any{formatTimePtr(record.DueDate), formatTimePtr(record.ReturnDate), record.RenewCount, record.Status, time.Now().Unix(), record.ID}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := scanBorrowRow(tx.QueryRow(stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("borrow record", record.ID)
		}
		return nil, errors.Wrap(err, "failed to update borrow record")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkOverdueRecords promotes every expired BORROWED record to OVERDUE and
// returns the number updated. The conditional set makes the sweep
// idempotent and safe to run concurrently.
func (s *Store) MarkOverdueRecords(now time.Time) (int64, error) {
	stmt := `
		UPDATE borrow_record
		SET status = 'OVERDUE', updated_ts = ?
		WHERE status = 'BORROWED' AND return_date IS NULL AND due_date IS NOT NULL AND due_date < ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	result, err := s.db.Exec(stmt, now.Unix(), formatTime(now))
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark overdue records")
	}
	return result.RowsAffected()
}

func scanBorrowRow(row rowScanner) (*model.BorrowRecord, error) {
	var record model.BorrowRecord
	var borrowDate string
	var dueDate, returnDate sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.CreatedTs,
		&record.UpdatedTs,
		&record.CopyID,
		&record.BookID,
		&record.ReaderID,
		&borrowDate,
		&dueDate,
		&returnDate,
		&record.RenewCount,
		&record.Status,
	); err != nil {
		return nil, err
	}
	record.BorrowDate = parseTime(borrowDate)
	record.DueDate = parseTimePtr(dueDate)
	record.ReturnDate = parseTimePtr(returnDate)
	return &record, nil
}
