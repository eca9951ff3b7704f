// Package api is the HTTP client for the proofpay server used by the
// terminal client. It keeps the session token from login and attaches it to
// subsequent requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the proofpay HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New constructs a Client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SessionStatus describes the server-side view of the current session.
type SessionStatus struct {
	Email      string `json:"email"`
	IDVerified bool   `json:"idVerified"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
			return errors.New(e.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Ping checks server reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil)
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, email, password, confirmPassword string) error {
	in := map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": confirmPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/signup", in, nil)
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// Logout ends the session and drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.token = ""
	return err
}

// Session returns the current session status.
func (c *Client) Session(ctx context.Context) (*SessionStatus, error) {
	var out SessionStatus
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoggedIn reports whether a session token is held.
func (c *Client) LoggedIn() bool {
	return c.token != ""
}
