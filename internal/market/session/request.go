package session

import (
	"context"

	"surplusmarket_api/internal/market/models"
)

type requestKey int

const (
	actorRequestKey requestKey = iota
	tokenRequestKey
)

// WithActor binds a verified actor and its raw access token to a request
// context. The token travels along so store calls made for this request can
// present the caller's own credentials.
func WithActor(ctx context.Context, actor *models.Actor, token string) context.Context {
	ctx = context.WithValue(ctx, actorRequestKey, actor)
	if token != "" {
		ctx = context.WithValue(ctx, tokenRequestKey, token)
	}
	return ctx
}

// ActorFrom returns the request's actor, nil when anonymous.
func ActorFrom(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(actorRequestKey).(*models.Actor)
	return actor
}

// TokenFrom returns the request's raw access token, "" when anonymous.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenRequestKey).(string)
	return token
}
