package validator // import "github.com/liber-hq/liber/validator"

import (
	"github.com/pkg/errors"

	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/store"
	"github.com/liber-hq/liber/util"
)

func ValidateUserCreateRequest(s *store.Store, user *model.UserCreateRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if user.Username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return errors.New("username is invalid")
	}
	if user.Email != "" && !util.ValidateEmail(user.Email) {
		return errors.New("email is invalid")
	}
	if existing, _ := s.GetUser(&model.FindUser{Username: &user.Username}); existing != nil {
		return errors.New("username already exists")
	}
	return validatePassword(user.Password)
}

func ValidateSignupRequest(s *store.Store, user *model.UserSignupRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if user.Username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return errors.New("username is invalid")
	}
	if existing, _ := s.GetUser(&model.FindUser{Username: &user.Username}); existing != nil {
		return errors.New("username already exists")
	}
	return validatePassword(user.Password)
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is empty")
	}
	if len(password) < 6 {
		return errors.New("password is too short")
	}
	return nil
}
