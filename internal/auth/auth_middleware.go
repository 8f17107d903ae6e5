package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/session"
)

// Claims is the store-issued access token payload. The subject is the user
// id; the capability metadata rides along in the two metadata bags.
type Claims struct {
	Email        string          `json:"email"`
	AppMetadata  models.Metadata `json:"app_metadata"`
	UserMetadata models.Metadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into a session actor with capabilities
// resolved.
func (c *Claims) Actor() *models.Actor {
	actor := &models.Actor{
		ID:           c.Subject,
		Email:        c.Email,
		AppMetadata:  c.AppMetadata,
		UserMetadata: c.UserMetadata,
	}
	actor.Resolve()
	return actor
}

// SessionMiddleware resolves the caller's bearer token into an actor and
// stores both on the request context. Browsing never requires a session:
// a missing token, and a token the secret no longer verifies, both pass
// through as anonymous.
func SessionMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validateToken(tokenString, jwtSecret)
			if err != nil {
				// Expired or forged tokens degrade to anonymous instead of
				// blocking the request; mutations fail their own gates later.
				next.ServeHTTP(w, r)
				return
			}

			ctx := session.WithActor(r.Context(), claims.Actor(), tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous callers. Mutating endpoints sit behind
// it so they can assume an actor.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.ActorFrom(r.Context()) == nil {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin capability.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := session.ActorFrom(r.Context())
		if actor == nil {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		if !actor.IsAdmin() {
			http.Error(w, "Insufficient privileges", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func extractToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:7]) == "BEARER " {
		return bearer[7:]
	}
	return ""
}
