package web

import (
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
)

// Authenticate requires a valid bearer token and stores its actor in the
// request context.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				JSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			actor, err := tokens.Parse(raw)
			if err != nil {
				JSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// RequireFinance lets through staff and admins only.
func RequireFinance(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Actor(r).ManagesFinance() {
			JSON(w, http.StatusForbidden, errorResponse{Error: "staff access required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Actor returns the authenticated caller. Without Authenticate upstream it
// is the zero actor, which every service refuses.
func Actor(r *http.Request) auth.Actor {
	a, _ := auth.ActorFrom(r.Context())
	return a
}
