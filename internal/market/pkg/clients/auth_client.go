package clients

import (
	"context"
	"errors"
	"net/http"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/storage"
)

// AuthClient fronts the store's passwordless auth endpoints.
type AuthClient struct {
	*BaseClient
}

func NewAuthClient(base *BaseClient) *AuthClient {
	return &AuthClient{BaseClient: base}
}

// userPayload is the store's user record, reduced to what a session needs.
type userPayload struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	AppMetadata  models.Metadata `json:"app_metadata"`
	UserMetadata models.Metadata `json:"user_metadata"`
}

// CurrentSession resolves the caller's token into an actor. No token, or a
// token the store no longer accepts, is an anonymous session rather than an
// error.
func (c *AuthClient) CurrentSession(ctx context.Context) (*models.Actor, error) {
	if tokenFrom(ctx) == "" {
		return nil, nil
	}

	var user userPayload
	if err := c.request(ctx, http.MethodGet, "/auth/v1/user", nil, &user); err != nil {
		var remote *storage.RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, err
	}

	actor := &models.Actor{
		ID:           user.ID,
		Email:        user.Email,
		AppMetadata:  user.AppMetadata,
		UserMetadata: user.UserMetadata,
	}
	actor.Resolve()
	return actor, nil
}

// SignInWithEmailLink asks the store to mail a magic link. The flow
// completes out of band; no session exists until the caller comes back with
// the token from the link.
func (c *AuthClient) SignInWithEmailLink(ctx context.Context, email string) error {
	body := map[string]interface{}{
		"email":       email,
		"create_user": true,
	}
	return c.request(ctx, http.MethodPost, "/auth/v1/otp", body, nil)
}

// SignOut revokes the caller's token. A token the store already dropped
// counts as signed out.
func (c *AuthClient) SignOut(ctx context.Context) error {
	err := c.request(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	if err != nil {
		var remote *storage.RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusUnauthorized {
			return nil
		}
	}
	return err
}
