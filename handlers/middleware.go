package handlers

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey holds the authenticated admin username.
	UserContextKey ContextKey = "user"
)

const authRealm = `Basic realm="showlog"`

// AuthMiddleware guards mutating routes with HTTP basic auth checked against a bcrypt
// hash. An empty hash disables the check.
func AuthMiddleware(username, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", authRealm)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization required")
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass))
			if !userOK || passErr != nil {
				log.Printf("Rejected credentials for user '%s' from %s", user, r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", authRealm)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid username or password")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
