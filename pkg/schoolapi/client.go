// Package schoolapi is a client for the school-management REST API.
//
// Every endpoint answers with {"success": bool, "data": ..., "meta": {...}} and requires a bearer token.
package schoolapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/pkg/config"
)

// ErrNotConfigured is returned when no base URL was provided.
var ErrNotConfigured = errors.New("school api base url not configured")

// APIError describes an unsuccessful upstream answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("school api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("school api: status %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
}

// Client talks to the school-management API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client from configuration.
func New(cfg config.SchoolAPIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Configured reports whether the client has somewhere to call.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// LoadDepartment fetches the dashboard snapshot of a department.
func (c *Client) LoadDepartment(ctx context.Context, departmentCode string) (*models.DepartmentSnapshot, error) {
	var snap models.DepartmentSnapshot
	path := "/departments/" + url.PathEscape(departmentCode) + "/dashboard"
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DeliverTeacherMessage posts a message to the teacher's inbox.
func (c *Client) DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) error {
	path := "/teachers/" + strconv.Itoa(msg.TeacherID) + "/messages"
	_, err := c.do(ctx, http.MethodPost, path, nil, msg, nil)
	return err
}

// ForwardResourceRequest files a resource request with the resource management system.
func (c *Client) ForwardResourceRequest(ctx context.Context, departmentCode string, req models.ResourceRequest) error {
	path := "/departments/" + url.PathEscape(departmentCode) + "/resource-requests"
	_, err := c.do(ctx, http.MethodPost, path, nil, req, nil)
	return err
}

// FinancialOverview fetches the fee collection overview for a term.
func (c *Client) FinancialOverview(ctx context.Context, term string) (*models.FinancialOverview, error) {
	query := url.Values{}
	if term != "" {
		query.Set("term", term)
	}
	var overview models.FinancialOverview
	if _, err := c.do(ctx, http.MethodGet, "/finance/overview", query, nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// ListUsers fetches one page of managed users.
func (c *Client) ListUsers(ctx context.Context, filter models.UserFilter) (*models.UserPage, error) {
	query := url.Values{}
	if filter.Role != nil {
		query.Set("role", string(*filter.Role))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(filter.PageSize))
	}

	var users []models.ManagedUser
	meta, err := c.do(ctx, http.MethodGet, "/users", query, nil, &users)
	if err != nil {
		return nil, err
	}
	page := &models.UserPage{
		Users: users,
		Pagination: models.Pagination{
			Page:       metaInt(meta, "page", filter.Page),
			PageSize:   metaInt(meta, "pageSize", filter.PageSize),
			TotalCount: metaInt(meta, "total", len(users)),
		},
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, &APIError{StatusCode: resp.StatusCode}
			}
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env.Meta, nil
}

func metaInt(meta map[string]interface{}, key string, fallback int) int {
	if meta == nil {
		return fallback
	}
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
