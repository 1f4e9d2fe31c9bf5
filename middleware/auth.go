package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/NicoBaldowine/pickleplay/apperr"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (jwt.MapClaims, error)
}

// Authenticate rejects requests without a valid bearer token. An expired
// token is answered with code "session_expired" so that clients can send
// the user back to sign in. The token may also be passed as the "token"
// query parameter, which browsers need for websocket upgrades.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "missing authentication token")
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				if apperr.Is(err, apperr.KindSessionExpired) {
					writeAuthError(w, http.StatusUnauthorized, "session_expired", "Your session has expired. Please log in again.")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", apperr.MessageOf(err))
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
