package response

import (
	"github.com/liber-hq/liber/model"
)

// UserResponse strips the password hash before a user leaves the API.
func UserResponse(user *model.User) *model.User {
	return &model.User{
		ID:          user.ID,
		RowStatus:   user.RowStatus,
		CreatedTs:   user.CreatedTs,
		UpdatedTs:   user.UpdatedTs,
		Username:    user.Username,
		Role:        user.Role,
		Email:       user.Email,
		Nickname:    user.Nickname,
		LastLoginTs: user.LastLoginTs,
	}
}

func UserListResponse(users []*model.User) []*model.User {
	var response []*model.User
	for _, user := range users {
		response = append(response, UserResponse(user))
	}
	return response
}
