// Package auth exchanges user credentials for an opaque session token.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/config"
	"github.com/sony/gobreaker/v2"
)

// DefaultRejectionMessage is reported when the server rejects the
// credentials without saying why.
const DefaultRejectionMessage = "please check your credentials"

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("authentication service unavailable")

// RejectedError is returned when the server refuses the credentials.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("login rejected (%d): %s", e.StatusCode, e.Message)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// Client calls the login endpoint through a circuit breaker. Rejected
// credentials do not count as failures; transport errors and 5xx answers do.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[string]
}

// NewClient creates a Client for the configured login endpoint.
func NewClient(conf config.Auth) *Client {
	return NewClientWithHTTP(conf, &http.Client{Timeout: conf.Timeout})
}

// NewClientWithHTTP is NewClient with a caller supplied http.Client.
func NewClientWithHTTP(conf config.Auth, httpClient *http.Client) *Client {
	settings := gobreaker.Settings{
		Name:        "auth",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var rejected *RejectedError
			return err == nil || errors.As(err, &rejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("name", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	}

	return &Client{
		httpClient: httpClient,
		url:        conf.URL,
		apiKey:     conf.APIKey,
		breaker:    gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Authenticate returns the token issued for email and password.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	token, err := c.breaker.Execute(func() (string, error) {
		return c.login(ctx, email, password)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return token, err
}

func (c *Client) login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("login endpoint returned %d", resp.StatusCode)
	}

	var decoded loginResponse
	// A non-JSON body on a 4xx still means the credentials were refused.
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && decoded.Token != "" {
		return decoded.Token, nil
	}

	message := decoded.Error
	if message == "" {
		message = DefaultRejectionMessage
	}
	return "", &RejectedError{StatusCode: resp.StatusCode, Message: message}
}
