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

func (s *Store) GetBook(find *model.FindBook) (*model.Book, error) {
	if find.ID != nil {
		if cache, ok := s.BookCache.Load(*find.ID); ok {
			return cache.(*model.Book), nil
		}
	}

	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	book := list[0]
	s.BookCache.Store(book.ID, book)
	return book, nil
}

func (s *Store) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	where, args := bookFilter(find)

	// Default order by title
	orderBy := []string{"title"}
	if find.OrderBy != nil {
		orderBy = append([]string{*find.OrderBy}, orderBy...)
	}

	query := `
		SELECT
			id,
			created_ts,
			updated_ts,
			title,
			author,
			publisher,
			isbn,
			category_id,
			cover_path,
			description,
			publish_date
		FROM book
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY ` + strings.Join(orderBy, ", ")
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
		log.Error("Failed to query books", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error("Failed to scan book", zap.Error(err))
			return nil, err
		}
		list = append(list, book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// CountBooks returns the total matching a filter, for list pagination.
func (s *Store) CountBooks(find *model.FindBook) (int, error) {
	where, args := bookFilter(find)
	query := `SELECT COUNT(*) FROM book WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func bookFilter(find *model.FindBook) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title = ?"), append(args, *v)
	}
	if v := find.Author; v != nil {
		where, args = append(where, "author = ?"), append(args, *v)
	}
	if v := find.ISBN; v != nil {
		where, args = append(where, "isbn = ?"), append(args, *v)
	}
	if v := find.CategoryID; v != nil {
		where, args = append(where, "category_id = ?"), append(args, *v)
	}
	return where, args
}

func scanBook(rows *sql.Rows) (*model.Book, error) {
	var book model.Book
	var isbn sql.NullString
	if err := rows.Scan(
		&book.ID,
		&book.CreatedTs,
		&book.UpdatedTs,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&isbn,
		&book.CategoryID,
		&book.CoverPath,
		&book.Description,
		&book.PublishDate,
	); err != nil {
		return nil, err
	}
	book.ISBN = isbn.String
	return &book, nil
}

// ExistsByISBN reports whether another book already carries the ISBN.
func (s *Store) ExistsByISBN(isbn string, excludeID int32) (bool, error) {
	if isbn == "" {
		return false, nil
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM book WHERE isbn = ? AND id != ?`, isbn, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) AddBook(book *model.Book) (*model.Book, error) {
	stmt := `
		INSERT INTO book (title, author, publisher, isbn, category_id, cover_path, description, publish_date)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		RETURNING id, created_ts, updated_ts, title, author, publisher, COALESCE(isbn, ''), category_id, cover_path, description, publish_date
	`
	args := []any{book.Title, book.Author, book.Publisher, book.ISBN, book.CategoryID, book.CoverPath, book.Description, book.PublishDate}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var newBook model.Book
	if err := tx.QueryRow(stmt, args...).Scan(
		&newBook.ID,
		&newBook.CreatedTs,
		&newBook.UpdatedTs,
		&newBook.Title,
		&newBook.Author,
		&newBook.Publisher,
		&newBook.ISBN,
		&newBook.CategoryID,
		&newBook.CoverPath,
		&newBook.Description,
		&newBook.PublishDate,
	); err != nil {
		return nil, errors.Wrap(err, "failed to add book")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.BookCache.Store(newBook.ID, &newBook)
	return &newBook, nil
}

func (s *Store) UpdateBook(book *model.Book) (*model.Book, error) {
	stmt := `
		UPDATE book
		SET title = ?, author = ?, publisher = ?, isbn = NULLIF(?, ''), category_id = ?, cover_path = ?, description = ?, publish_date = ?, updated_ts = ?
		WHERE id = ?
		RETURNING id, created_ts, updated_ts, title, author, publisher, COALESCE(isbn, ''), category_id, cover_path, description, publish_date
	`
	args := []any{book.Title, book.Author, book.Publisher, book.ISBN, book.CategoryID, book.CoverPath, book.Description, book.PublishDate, time.Now().Unix(), book.ID}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var updated model.Book
	if err := tx.QueryRow(stmt, args...).Scan(
		&updated.ID,
		&updated.CreatedTs,
		&updated.UpdatedTs,
		&updated.Title,
		&updated.Author,
		&updated.Publisher,
		&updated.ISBN,
		&updated.CategoryID,
		&updated.CoverPath,
		&updated.Description,
		&updated.PublishDate,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update book")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.BookCache.Store(updated.ID, &updated)
	return &updated, nil
}

// RemoveBook deletes a book and its copies. Blocked while any copy is
// still checked out or the book has copies attached.
func (s *Store) RemoveBook(id int32) error {
	active, err := s.HasActiveBorrowsByBook(id)
	if err != nil {
		return err
	}
	if active {
		return model.NewConflictError("book %d still has active borrows", id)
	}
	var copies int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM book_copy WHERE book_id = ?`, id).Scan(&copies); err != nil {
		return err
	}
	if copies > 0 {
		return model.NewConflictError("book %d still has %d copies, remove them first", id, copies)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM book WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return model.NewNotFoundError("book", id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.BookCache.Delete(id)
	return nil
}
