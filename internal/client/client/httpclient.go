package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/countdown/internal/auth"
	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/server/models"
)

const tokenValidity = 5 * time.Minute

type HTTPClient struct {
	baseURL   string
	secretKey []byte
	http      *http.Client
}

type timerRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Days *int   `json:"days,omitempty"`
}

type timerResponse struct {
	Success bool          `json:"success"`
	Timer   *models.Timer `json:"timer"`
	Error   string        `json:"error"`
}

func NewHTTPClient(baseURL, secretKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: []byte(secretKey),
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) Init(ctx context.Context) error {
	var resp timerResponse
	return c.do(ctx, http.MethodPost, "/init", nil, &resp)
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Timer, error) {
	timers := []models.Timer{}
	if err := c.do(ctx, http.MethodGet, "/timers", nil, &timers); err != nil {
		return nil, err
	}
	return timers, nil
}

func (c *HTTPClient) Create(ctx context.Context, id, name string, days int) (*models.Timer, error) {
	var resp timerResponse
	req := timerRequest{ID: id, Name: name, Days: &days}
	if err := c.do(ctx, http.MethodPost, "/timers", req, &resp); err != nil {
		return nil, err
	}
	return resp.Timer, nil
}

// Reset restarts timer id. An empty id is rejected locally: it would produce
// "/timers//reset", which the server redirects instead of answering.
func (c *HTTPClient) Reset(ctx context.Context, id string) (*models.Timer, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", common.ErrValidation)
	}

	var resp timerResponse
	path := "/timers/" + url.PathEscape(id) + "/reset"
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Timer, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", common.JSONContentType)
	}
	if len(c.secretKey) > 0 {
		token, err := auth.GenerateToken("cli", c.secretKey, tokenValidity)
		if err != nil {
			return err
		}
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return mapError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: unexpected response: %v", ErrServer, err)
	}
	return nil
}

func mapError(status int, body []byte) error {
	var resp timerResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		msg = resp.Error
	}

	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = common.ErrValidation
	case status == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = common.ErrNotFound
	case status == http.StatusConflict:
		sentinel = common.ErrAlreadyExists
	default:
		sentinel = ErrServer
	}

	if msg == "" {
		msg = fmt.Sprintf("%s (status %d)", sentinel, status)
	}
	return &APIError{Status: status, Message: msg, kind: sentinel}
}

// APIError is a non-2xx response. It matches its sentinel with errors.Is.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string { return e.Message }
func (e *APIError) Unwrap() error { return e.kind }
