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

const copyColumns = `id, created_ts, updated_ts, book_id, type, status, total_copies, available_copies, location, format, file_path, file_size`

func (s *Store) GetCopy(find *model.FindCopy) (*model.BookCopy, error) {
	list, err := s.ListCopies(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListCopies(find *model.FindCopy) ([]*model.BookCopy, error) {
	where, args := copyFilter(find)

	query := `
		SELECT ` + copyColumns + `
		FROM book_copy
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
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
		log.Error("Failed to query copies", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.BookCopy, 0)
	for rows.Next() {
		var copy model.BookCopy
		if err := rows.Scan(
			&copy.ID,
			&copy.CreatedTs,
			&copy.UpdatedTs,
			&copy.BookID,
			&copy.Type,
			&copy.Status,
			&copy.TotalCopies,
			&copy.AvailableCopies,
			&copy.Location,
			&copy.Format,
			&copy.FilePath,
			&copy.FileSize,
		); err != nil {
			log.Error("Failed to scan copy", zap.Error(err))
			return nil, err
		}
		list = append(list, &copy)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountCopies(find *model.FindCopy) (int, error) {
	where, args := copyFilter(find)
	query := `SELECT COUNT(*) FROM book_copy WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func copyFilter(find *model.FindCopy) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "type = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	return where, args
}

func (s *Store) AddCopy(copy *model.BookCopy) (*model.BookCopy, error) {
	if err := copy.Validate(); err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO book_copy (book_id, type, status, total_copies, available_copies, location, format, file_path, file_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + copyColumns
	args := []any{copy.BookID, copy.Type, copy.Status, copy.TotalCopies, copy.AvailableCopies, copy.Location, copy.Format, copy.FilePath, copy.FileSize}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	newCopy, err := scanCopyRow(tx.QueryRow(stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to add copy")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return newCopy, nil
}

// UpdateCopy persists a mutated copy entity. Validate runs again here so
// no mutation path can write a mixed-type or out-of-bounds row.
func (s *Store) UpdateCopy(copy *model.BookCopy) (*model.BookCopy, error) {
	if err := copy.Validate(); err != nil {
		return nil, err
	}

	stmt := `
		UPDATE book_copy
		SET status = ?, total_copies = ?, available_copies = ?, location = ?, format = ?, file_path = ?, file_size = ?, updated_ts = ?
		WHERE id = ?
		RETURNING ` + copyColumns
	args := []any{copy.Status, copy.TotalCopies, copy.AvailableCopies, copy.Location, copy.Format, copy.FilePath, copy.FileSize, time.Now().Unix(), copy.ID}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := scanCopyRow(tx.QueryRow(stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("copy", copy.ID)
		}
		return nil, errors.Wrap(err, "failed to update copy")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateCopyStock resizes physical stock inside one transaction so the
// borrowed count read and the counter write cannot interleave with a
// concurrent borrow.
func (s *Store) UpdateCopyStock(id int32, newTotal int) (*model.BookCopy, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	copy, err := scanCopyRow(tx.QueryRow(`SELECT `+copyColumns+` FROM book_copy WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("copy", id)
		}
		return nil, err
	}

	if err := copy.UpdateTotalCopies(newTotal); err != nil {
		return nil, err
	}

	updated, err := scanCopyRow(tx.QueryRow(`
		UPDATE book_copy
		SET total_copies = ?, available_copies = ?, updated_ts = ?
		WHERE id = ?
		RETURNING `+copyColumns,
		copy.TotalCopies, copy.AvailableCopies, time.Now().Unix(), id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update copy stock")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveCopy deletes a copy that was never borrowed. Copies with history
// stay referenced by their borrow records; mark them UNAVAILABLE instead.
func (s *Store) RemoveCopy(id int32) error {
	active, err := s.HasActiveBorrowsByCopy(id)
	if err != nil {
		return err
	}
	if active {
		return model.NewConflictError("copy %d is still checked out", id)
	}
	history, err := s.HasBorrowHistoryByCopy(id)
	if err != nil {
		return err
	}
	if history {
		return model.NewConflictError("copy %d has borrow history and cannot be deleted", id)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM book_copy WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return model.NewNotFoundError("copy", id)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCopyRow(row rowScanner) (*model.BookCopy, error) {
	var copy model.BookCopy
	if err := row.Scan(
		&copy.ID,
		&copy.CreatedTs,
		&copy.UpdatedTs,
		&copy.BookID,
		&copy.Type,
		&copy.Status,
		&copy.TotalCopies,
		&copy.AvailableCopies,
		&copy.Location,
		&copy.Format,
		&copy.FilePath,
		&copy.FileSize,
	); err != nil {
		return nil, err
	}
	return &copy, nil
}
