package store

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/util"
)

func (s *Store) GetSystemSetting(name string) (*model.SystemSetting, error) {
	if cache, ok := s.SystemSettingCache.Load(name); ok {
		return cache.(*model.SystemSetting), nil
	}

	setting := &model.SystemSetting{}
	stmt := `SELECT name, value, description FROM system_setting WHERE name = ?`
	if err := s.db.QueryRow(stmt, name).Scan(&setting.Name, &setting.Value, &setting.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get system setting")
	}

	s.SystemSettingCache.Store(setting.Name, setting)
	return setting, nil
}

func (s *Store) UpsertSystemSetting(setting *model.SystemSetting) (*model.SystemSetting, error) {
	stmt := `
		INSERT INTO system_setting (name, value, description)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description
		RETURNING name, value, description
	`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	newSetting := &model.SystemSetting{}
	if err := tx.QueryRow(stmt, setting.Name, setting.Value, setting.Description).Scan(
		&newSetting.Name,
		&newSetting.Value,
		&newSetting.Description,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert system setting")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.SystemSettingCache.Store(newSetting.Name, newSetting)
	return newSetting, nil
}

// GetOrInitSecuritySetting returns the security setting, generating and
// persisting a fresh JWT secret on first use.
func (s *Store) GetOrInitSecuritySetting() (*model.SystemSettingSecurity, error) {
	setting, err := s.GetSystemSetting(model.SettingTypeSecurity)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		return setting.GetSecurity()
	}

	secret, err := util.RandomString(32)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate jwt secret")
	}
	security := &model.SystemSettingSecurity{JWTSecret: secret}
	value, err := json.Marshal(security)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal security setting")
	}
	if _, err := s.UpsertSystemSetting(&model.SystemSetting{
		Name:        model.SettingTypeSecurity,
		Value:       string(value),
		Description: "signing secret for access tokens",
	}); err != nil {
		return nil, err
	}
	return security, nil
}

// GetBorrowPolicy returns the configured borrowing rules, falling back to
// the defaults when none are stored.
func (s *Store) GetBorrowPolicy() (model.BorrowPolicy, error) {
	setting, err := s.GetSystemSetting(model.SettingTypeBorrowPolicy)
	if err != nil {
		return model.BorrowPolicy{}, err
	}
	if setting == nil {
		return model.DefaultBorrowPolicy(), nil
	}
	policy, err := setting.GetBorrowPolicy()
	if err != nil {
		return model.BorrowPolicy{}, err
	}
	return *policy, nil
}

func (s *Store) SetBorrowPolicy(policy model.BorrowPolicy) (model.BorrowPolicy, error) {
	if err := policy.Validate(); err != nil {
		return model.BorrowPolicy{}, err
	}
	value, err := json.Marshal(policy)
	if err != nil {
		return model.BorrowPolicy{}, errors.Wrap(err, "failed to marshal borrow policy")
	}
	if _, err := s.UpsertSystemSetting(&model.SystemSetting{
		Name:        model.SettingTypeBorrowPolicy,
		Value:       string(value),
		Description: "loan length, renewal cap and renewal length",
	}); err != nil {
		return model.BorrowPolicy{}, err
	}
	return policy, nil
}
