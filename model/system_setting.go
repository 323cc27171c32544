package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	// SettingTypeSecurity holds the JWT signing secret.
	SettingTypeSecurity = "security"
	// SettingTypeBorrowPolicy holds the configurable borrowing rules.
	SettingTypeBorrowPolicy = "borrow_policy"
)

type SystemSetting struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type SystemSettingSecurity struct {
	JWTSecret string `json:"jwt_secret"`
}

func (s *SystemSetting) GetSecurity() (*SystemSettingSecurity, error) {
	if s.Name != SettingTypeSecurity {
		return nil, errors.Errorf("setting %q is not a security setting", s.Name)
	}
	security := &SystemSettingSecurity{}
	if err := json.Unmarshal([]byte(s.Value), security); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal security setting")
	}
	return security, nil
}

func (s *SystemSetting) GetBorrowPolicy() (*BorrowPolicy, error) {
	if s.Name != SettingTypeBorrowPolicy {
		return nil, errors.Errorf("setting %q is not a borrow policy", s.Name)
	}
	policy := &BorrowPolicy{}
	if err := json.Unmarshal([]byte(s.Value), policy); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal borrow policy")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *SystemSetting) ToJSON() string {
	buf, _ := json.Marshal(s)
	return string(buf)
}
