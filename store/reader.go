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

const readerColumns = `id, created_ts, updated_ts, user_id, name, COALESCE(student_id, ''), phone, email, status, max_borrow_limit`

func (s *Store) GetReader(find *model.FindReader) (*model.Reader, error) {
	list, err := s.ListReaders(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListReaders(find *model.FindReader) ([]*model.Reader, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.StudentID; v != nil {
		where, args = append(where, "student_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	query := `
		SELECT ` + readerColumns + `
		FROM reader
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name`
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
		log.Error("Failed to query readers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Reader, 0)
	for rows.Next() {
		reader, err := scanReaderRow(rows)
		if err != nil {
			log.Error("Failed to scan reader", zap.Error(err))
			return nil, err
		}
		list = append(list, reader)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) AddReader(reader *model.Reader) (*model.Reader, error) {
	if existing, err := s.GetReader(&model.FindReader{UserID: &reader.UserID}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, model.NewConflictError("user %d already has a reader account", reader.UserID)
	}
	if reader.StudentID != "" {
		if existing, err := s.GetReader(&model.FindReader{StudentID: &reader.StudentID}); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, model.NewConflictError("student id %q already registered", reader.StudentID)
		}
	}

	stmt := `
		INSERT INTO reader (user_id, name, student_id, phone, email, status, max_borrow_limit)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		RETURNING ` + readerColumns
	args := []any{reader.UserID, reader.Name, reader.StudentID, reader.Phone, reader.Email, reader.Status, reader.MaxBorrowLimit}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	newReader, err := scanReaderRow(tx.QueryRow(stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to add reader")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return newReader, nil
}

func (s *Store) UpdateReader(reader *model.Reader) (*model.Reader, error) {
	stmt := `
		UPDATE reader
		SET name = ?, student_id = NULLIF(?, ''), phone = ?, email = ?, status = ?, max_borrow_limit = ?, updated_ts = ?
		WHERE id = ?
		RETURNING ` + readerColumns
	args := []any{reader.Name, reader.StudentID, reader.Phone, reader.Email, reader.Status, reader.MaxBorrowLimit, time.Now().Unix(), reader.ID}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := scanReaderRow(tx.QueryRow(stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("reader", reader.ID)
		}
		return nil, errors.Wrap(err, "failed to update reader")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveReader deletes a reader without any borrowing history. Accounts
// with history must be deactivated instead so the records keep a valid
// owner.
func (s *Store) RemoveReader(id int32) error {
	active, err := s.HasActiveBorrowsByReader(id)
	if err != nil {
		return err
	}
	if active {
		return model.NewConflictError("reader %d still has active borrows", id)
	}
	history, err := s.HasBorrowHistoryByReader(id)
	if err != nil {
		return err
	}
	if history {
		return model.NewConflictError("reader %d has borrow history, deactivate the account instead", id)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM reader WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return model.NewNotFoundError("reader", id)
	}
	return tx.Commit()
}

func scanReaderRow(row rowScanner) (*model.Reader, error) {
	var reader model.Reader
	if err := row.Scan(
		&reader.ID,
		&reader.CreatedTs,
		&reader.UpdatedTs,
		&reader.UserID,
		&reader.Name,
		&reader.StudentID,
		&reader.Phone,
		&reader.Email,
		&reader.Status,
		&reader.MaxBorrowLimit,
	); err != nil {
		return nil, err
	}
	return &reader, nil
}
