package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// apiClient talks to the shipment desk HTTP API.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient(base, token string) *apiClient {
	return &apiClient{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
	Body    string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, strings.TrimSpace(e.Body))
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	} `json:"user"`
}

func (c *apiClient) login(ctx context.Context, email, password, tenant string) (loginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	if tenant != "" {
		body["tenantId"] = tenant
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return loginResponse{}, err
	}
	var out loginResponse
	err = c.do(ctx, http.MethodPost, "/api/auth/login", nil, raw, &out)
	return out, err
}

func (c *apiClient) createShipment(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/form/create", nil, payload, &out)
	return out, err
}

func (c *apiClient) listShipments(ctx context.Context, page, limit int, search string) (json.RawMessage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/form/mydata", q, nil, &out)
	return out, err
}

func (c *apiClient) getShipment(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/form/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &apiError{Status: resp.StatusCode, Body: string(b)}
		var msg struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(b, &msg) == nil {
			ae.Message = msg.Message
			if msg.Error != "" {
				ae.Message += ": " + msg.Error
			}
		}
		return ae
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

// tokenExpiry reads exp from a JWT without verifying it; the server owns the key.
func tokenExpiry(tok string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no exp")
	}
	return claims.ExpiresAt.Time, nil
}
