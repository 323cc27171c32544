package request

import (
	"net/http"

	"github.com/liber-hq/liber/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	UserIDContextKey
	UserNameContextKey
	UserRoleContextKey
)

func getContextStringValue(r *http.Request, key ContextKey) string {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(string); valid {
			return value
		}
	}
	return ""
}

// ClientIP returns the client IP address stored in the context.
func ClientIP(r *http.Request) string {
	return getContextStringValue(r, ClientIPContextKey)
}

// UserID returns the authenticated user ID stored in the context, or 0.
func UserID(r *http.Request) int32 {
	if v := r.Context().Value(UserIDContextKey); v != nil {
		if value, valid := v.(int32); valid {
			return value
		}
	}
	return 0
}

// UserName returns the authenticated username stored in the context.
func UserName(r *http.Request) string {
	return getContextStringValue(r, UserNameContextKey)
}

// UserRole returns the authenticated user role stored in the context.
func UserRole(r *http.Request) model.Role {
	if v := r.Context().Value(UserRoleContextKey); v != nil {
		if value, valid := v.(model.Role); valid {
			return value
		}
	}
	return model.RoleUser
}
