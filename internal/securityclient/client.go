// Package securityclient talks to the security service HTTP API on behalf of
// control panels.
package securityclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"control_panel/internal/logger"
	"control_panel/internal/models"
	"control_panel/internal/panel"
)

const defaultTimeout = 5 * time.Second

// Config locates the service and the operator account the client signs in with.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client implements panel.SecurityService. It signs in lazily and signs in
// again once when the service answers 401.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      *logger.Logger

	mu    sync.Mutex
	token string
}

var _ panel.SecurityService = (*Client)(nil)

func New(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
		log:      log.Named("securityclient"),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) CheckCredentials(ctx context.Context, subjectID, code string) (models.Role, error) {
	var out struct {
		Role models.Role `json:"role"`
	}
	if err := c.call(ctx, http.MethodPost, subjectPath(subjectID, "credentials/check"), map[string]string{"code": code}, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) PowerOn(ctx context.Context, subjectID string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "power/on"), nil, nil)
}

func (c *Client) PowerOff(ctx context.Context, subjectID string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "power/off"), nil, nil)
}

func (c *Client) Arm(ctx context.Context, subjectID string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "arm"), nil, nil)
}

func (c *Client) Disarm(ctx context.Context, subjectID string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "disarm"), nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, subjectID, newPassword string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "password"), map[string]string{"new_password": newPassword}, nil)
}

func (c *Client) Panic(ctx context.Context, subjectID string) error {
	return c.call(ctx, http.MethodPost, subjectPath(subjectID, "panic"), nil, nil)
}

// Provision creates a subject. Used by the provisioning CLI.
func (c *Client) Provision(ctx context.Context, subjectID, masterCode, guestCode string) (models.Subject, error) {
	var out models.Subject
	body := map[string]string{"id": subjectID, "master_code": masterCode, "guest_code": guestCode}
	if err := c.call(ctx, http.MethodPost, "/api/v1/subjects", body, &out); err != nil {
		return models.Subject{}, err
	}
	return out, nil
}

// Status fetches a subject's power and arm state.
func (c *Client) Status(ctx context.Context, subjectID string) (models.Subject, error) {
	var out models.Subject
	if err := c.call(ctx, http.MethodGet, subjectPath(subjectID, ""), nil, &out); err != nil {
		return models.Subject{}, err
	}
	return out, nil
}

func subjectPath(subjectID, action string) string {
	p := "/api/v1/subjects/" + url.PathEscape(subjectID)
	if action != "" {
		p += "/" + action
	}
	return p
}

// call performs an authenticated request, re-signing in once on 401.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.bearer(ctx)
		if err != nil {
			return err
		}
		status, body, err := c.send(ctx, method, path, token, in)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized && attempt == 0 {
			c.log.Infow("token_rejected_resigning", "path", path)
			c.dropToken(token)
			continue
		}
		return decode(status, body, out)
	}
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	status, body, err := c.send(ctx, http.MethodPost, "/auth/sign-in", "",
		map[string]string{"username": c.username, "password": c.password})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: sign-in returned %d: %s", panel.ErrUnavailable, status, errorText(body))
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		return "", fmt.Errorf("%w: sign-in response has no token", panel.ErrUnavailable)
	}
	c.token = out.Token
	return c.token, nil
}

func (c *Client) dropToken(stale string) {
	c.mu.Lock()
	if c.token == stale {
		c.token = ""
	}
	c.mu.Unlock()
}

func (c *Client) send(ctx context.Context, method, path, token string, in any) (int, []byte, error) {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", panel.ErrUnavailable, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", panel.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", panel.ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

// decode maps a response onto the panel's outcome classes: 400/403/404/409
// are authoritative refusals, everything else non-2xx is an outage.
func decode(status int, body []byte, out any) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", panel.ErrUnavailable, err)
		}
		return nil
	case status == http.StatusBadRequest, status == http.StatusForbidden,
		status == http.StatusNotFound, status == http.StatusConflict:
		return fmt.Errorf("%w: %s", panel.ErrRejected, errorText(body))
	default:
		return fmt.Errorf("%w: status %d: %s", panel.ErrUnavailable, status, errorText(body))
	}
}

func errorText(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(body))
}

// IsRejected reports whether err is an authoritative refusal.
func IsRejected(err error) bool {
	return errors.Is(err, panel.ErrRejected)
}
