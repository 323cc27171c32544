package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/liber-hq/liber/http/response"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/validator"
)

// createUser lets an admin provision accounts directly, e.g. reader
// accounts created at the front desk.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	create := &model.UserCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := validator.ValidateUserCreateRequest(h.store, create); err != nil {
		log.Warn("Failed to validate user create request", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(create.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	role := model.RoleUser
	if create.IsAdmin {
		role = model.RoleAdmin
	}

	user := model.User{
		Username:     create.Username,
		Nickname:     create.Nickname,
		Email:        create.Email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	newUser, err := h.store.CreateUser(&user)
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}

	response.Created(w, r, response.UserResponse(newUser))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	normal := model.Normal
	users, err := h.store.ListUsers(&model.FindUser{RowStatus: &normal})
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, response.UserListResponse(users))
}
