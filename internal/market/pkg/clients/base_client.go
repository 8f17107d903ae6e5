// Package clients holds the HTTP adapters for the hosted backend: the
// listings table behind its REST layer, the passwordless auth endpoints and
// the image bucket. All of them share one BaseClient.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"surplusmarket_api/config"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/pkg/logger"
	"surplusmarket_api/pkg/middleware"
)

type contextKey int

const (
	tokenContextKey contextKey = iota
	preferContextKey
)

// WithToken forwards the caller's access token to the remote store, so its
// row policies apply to the signed-in user instead of the service key.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// withPrefer sets the Prefer header for one REST call.
func withPrefer(ctx context.Context, value string) context.Context {
	return context.WithValue(ctx, preferContextKey, value)
}

func preferFrom(ctx context.Context) string {
	value, _ := ctx.Value(preferContextKey).(string)
	return value
}

type BaseClient struct {
	BaseURL string
	apiKey  string
	log     logger.Logger
	client  *http.Client
	limiter *rate.Limiter
	request middleware.RequestFunc
}

func NewBaseClient(cfg config.RemoteStoreConfig, writer io.Writer, logPrefix string, mws ...middleware.Middleware) *BaseClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &BaseClient{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		log:     logger.NewLogger(writer, logPrefix),
		client:  &http.Client{Timeout: timeout},
	}
	if cfg.RatePerMinute > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RatePerMinute
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), burst)
	}

	c.request = c.doRequest
	for i := len(mws) - 1; i >= 0; i-- {
		c.request = mws[i](c.request)
	}
	return c
}

func (c *BaseClient) doRequest(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
	if err := c.wait(ctx); err != nil {
		return &storage.NetworkError{Op: method + " " + endpoint, Err: err}
	}

	var bodyBytes []byte
	if requestBody != nil {
		var err error
		bodyBytes, err = json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", c.BaseURL, endpoint), bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(ctx, req)
	if prefer := preferFrom(ctx); prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return &storage.NetworkError{Op: method + " " + endpoint, Err: ctx.Err()}
		default:
			return &storage.NetworkError{Op: method + " " + endpoint, Err: err}
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &storage.RemoteError{
			Op:     method + " " + trimQuery(endpoint),
			Status: resp.StatusCode,
			Msg:    remoteMessage(body),
		}
		c.log.Error("%s", remoteErr)
		return remoteErr
	}

	if response == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// authorize attaches the store credentials. Every request carries the api
// key; the bearer is the caller's token when present, the key otherwise.
// Tokens arrive either via WithToken or riding on a served request's
// context, so store calls made for a signed-in user present that user's
// credentials and the store's row policies judge the right actor.
func (c *BaseClient) authorize(ctx context.Context, req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	token := tokenFrom(ctx)
	if token == "" {
		token = session.TokenFrom(ctx)
	}
	if token == "" {
		token = c.apiKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *BaseClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func trimQuery(endpoint string) string {
	if i := strings.Index(endpoint, "?"); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

// remoteMessage pulls the human-readable part out of an error response. The
// store's services disagree on the field name.
func remoteMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "msg", "error_description", "error"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
