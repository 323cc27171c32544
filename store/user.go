package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

func (s *Store) GetUser(find *model.FindUser) (*model.User, error) {
	if find.ID != nil {
		if cache, ok := s.UserCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.UserCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "row_status = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}

	// Here will return password_hash, so need to be careful.
	// Use response.UserResponse to remove it before replying to a client.
	query := `
		SELECT
			id,
			created_ts,
			updated_ts,
			row_status,
			username,
			role,
			email,
			nickname,
			password_hash,
			last_login_ts
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	// zap not support escape character, so need to fallback.
	// https://github.com/uber-go/zap/issues/963
	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.CreatedTs,
			&user.UpdatedTs,
			&user.RowStatus,
			&user.Username,
			&user.Role,
			&user.Email,
			&user.Nickname,
			&user.PasswordHash,
			&user.LastLoginTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CreateUser(create *model.User) (*model.User, error) {
	if existing, err := s.GetUser(&model.FindUser{Username: &create.Username}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, model.NewConflictError("username %q already exists", create.Username)
	}

	stmt := `
		INSERT INTO user (username, role, email, nickname, password_hash)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_ts, updated_ts, row_status, username, role, email, nickname, password_hash, last_login_ts
	`
	args := []any{create.Username, create.Role, create.Email, create.Nickname, create.PasswordHash}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var user model.User
	if err := tx.QueryRow(stmt, args...).Scan(
		&user.ID,
		&user.CreatedTs,
		&user.UpdatedTs,
		&user.RowStatus,
		&user.Username,
		&user.Role,
		&user.Email,
		&user.Nickname,
		&user.PasswordHash,
		&user.LastLoginTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.UserCache.Store(user.ID, &user)
	return &user, nil
}

func (s *Store) SetLastLogin(userID int32) error {
	stmt := `UPDATE user SET last_login_ts = ? WHERE id = ?`
	if _, err := s.db.Exec(stmt, time.Now().Unix(), userID); err != nil {
		return errors.Wrap(err, "unable to update last login date")
	}
	s.UserCache.Delete(userID)
	return nil
}
