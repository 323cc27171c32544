package server

import (
	"context"
	"net/http"

	"github.com/liber-hq/liber/http/request"
)

// clientIPMiddleware resolves the client address once per request and makes
// it available to every layer below.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.FindClientIP(r)
		ctx := context.WithValue(r.Context(), request.ClientIPContextKey, clientIP)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
