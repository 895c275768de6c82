// Package marketapi is the HTTP client for the upstream marketplace REST
// API: the identity endpoints plus the vehicle, user, order, and payment
// resources. Every resource request carries a bearer token when one is
// available; the server is the final authority and rejects the rest.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

var (
	// ErrUnauthorized is returned for any 401 from a resource endpoint.
	// The HTTP layer converts it into a hard redirect to sign-in.
	ErrUnauthorized = errors.New("upstream rejected authorization")

	// ErrLoginRejected is returned when the identity endpoint rejects the
	// credential pair or answers with a malformed body.
	ErrLoginRejected = ports.ErrLoginRejected

	// ErrRefreshRejected is returned when the refresh endpoint rejects the
	// refresh token or answers with a malformed body.
	ErrRefreshRejected = ports.ErrRefreshRejected

	// ErrNotFound is returned for a 404 on a resource endpoint.
	ErrNotFound = errors.New("resource not found")
)

// Config captures the subset of upstream behaviour we need.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	Logger     *slog.Logger
}

// Client talks to the upstream marketplace API.
type Client struct {
	baseURL    string
	client     *http.Client
	retryLimit int
	logger     *slog.Logger
}

// NewClient builds an upstream API client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("upstream base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		client:     hc,
		retryLimit: retries,
		logger:     logger,
	}, nil
}

// --- identity endpoints ---

// loginEnvelope matches the identity endpoint's double-wrapped success body.
type loginEnvelope struct {
	Data struct {
		Data struct {
			User         *userPayload `json:"user"`
			AccessToken  string       `json:"accessToken"`
			RefreshToken string       `json:"refreshToken"`
		} `json:"data"`
	} `json:"data"`
}

type userPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Login exchanges credentials at POST /auth/login.
// Non-2xx responses and bodies missing the token or user object are both
// credential rejections; diagnostic detail is logged server-side only.
func (c *Client) Login(
	ctx context.Context,
	in ports.LoginInput,
) (domainauth.Identity, domainauth.TokenPair, error) {
	body, err := json.Marshal(map[string]string{"email": in.Email, "password": in.Password})
	if err != nil {
		return domainauth.Identity{}, domainauth.TokenPair{}, fmt.Errorf("encode login payload: %w", err)
	}

	respBody, status, err := c.post(ctx, "/auth/login", "", body)
	if err != nil {
		return domainauth.Identity{}, domainauth.TokenPair{}, fmt.Errorf("login request: %w", err)
	}
	if status < 200 || status >= 300 {
		c.logger.WarnContext(ctx, "login rejected by identity endpoint",
			"status", status, "body", truncateForLog(respBody))
		return domainauth.Identity{}, domainauth.TokenPair{}, ErrLoginRejected
	}

	var env loginEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		c.logger.WarnContext(ctx, "malformed login response", "error", err)
		return domainauth.Identity{}, domainauth.TokenPair{}, ErrLoginRejected
	}

	payload := env.Data.Data
	if payload.AccessToken == "" || payload.User == nil {
		c.logger.WarnContext(ctx, "login response missing token or user",
			"token_present", payload.AccessToken != "",
			"user_present", payload.User != nil)
		return domainauth.Identity{}, domainauth.TokenPair{}, ErrLoginRejected
	}

	identity := domainauth.Identity{
		UserID:   payload.User.ID,
		Email:    payload.User.Email,
		FullName: payload.User.FullName,
		Role:     domainauth.Role(payload.User.Role),
	}
	pair := domainauth.TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	return identity, pair, nil
}

// refreshEnvelope matches the refresh endpoint's success body. The rotated
// refresh token is optional; absence keeps the current one.
type refreshEnvelope struct {
	Data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// Refresh exchanges a refresh token at POST /auth/refresh-token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("encode refresh payload: %w", err)
	}

	respBody, status, err := c.post(ctx, "/auth/refresh-token", "", body)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("refresh request: %w", err)
	}
	if status < 200 || status >= 300 {
		c.logger.WarnContext(ctx, "refresh rejected by identity endpoint", "status", status)
		return domainauth.TokenPair{}, ErrRefreshRejected
	}

	var env refreshEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshRejected, err)
	}
	if env.Data.AccessToken == "" {
		return domainauth.TokenPair{}, fmt.Errorf("%w: missing access token", ErrRefreshRejected)
	}

	rotated := env.Data.RefreshToken
	if rotated == "" {
		rotated = refreshToken
	}
	return domainauth.TokenPair{AccessToken: env.Data.AccessToken, RefreshToken: rotated}, nil
}

// --- resource endpoints ---

// ListVehicles fetches vehicle listings.
func (c *Client) ListVehicles(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.Vehicle, error) {
	var out []model.Vehicle
	if err := c.getJSON(ctx, "/vehicles"+listQuery(p), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVehicle fetches a single vehicle listing.
func (c *Client) GetVehicle(ctx context.Context, token, id string) (model.Vehicle, error) {
	var out model.Vehicle
	if err := c.getJSON(ctx, "/vehicles/"+url.PathEscape(id), token, &out); err != nil {
		return model.Vehicle{}, err
	}
	return out, nil
}

// CreateVehicle creates a manual vehicle listing.
func (c *Client) CreateVehicle(
	ctx context.Context,
	token string,
	in model.VehicleInput,
) (model.Vehicle, error) {
	var out model.Vehicle
	if err := c.writeJSON(ctx, http.MethodPost, "/vehicles", token, in, &out); err != nil {
		return model.Vehicle{}, err
	}
	return out, nil
}

// UpdateVehicle replaces the mutable fields of a listing.
func (c *Client) UpdateVehicle(
	ctx context.Context,
	token, id string,
	in model.VehicleInput,
) (model.Vehicle, error) {
	var out model.Vehicle
	path := "/vehicles/" + url.PathEscape(id)
	if err := c.writeJSON(ctx, http.MethodPut, path, token, in, &out); err != nil {
		return model.Vehicle{}, err
	}
	return out, nil
}

// DeleteVehicle removes a listing.
func (c *Client) DeleteVehicle(ctx context.Context, token, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/vehicles/"+url.PathEscape(id), token, nil, nil)
}

// ListUsers fetches customer accounts.
func (c *Client) ListUsers(ctx context.Context, token string, p model.ListParams) ([]model.User, error) {
	var out []model.User
	if err := c.getJSON(ctx, "/users"+listQuery(p), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches a single customer account.
func (c *Client) GetUser(ctx context.Context, token, id string) (model.User, error) {
	var out model.User
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(id), token, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// ListOrders fetches purchase orders.
func (c *Client) ListOrders(ctx context.Context, token string, p model.ListParams) ([]model.Order, error) {
	var out []model.Order
	if err := c.getJSON(ctx, "/orders"+listQuery(p), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder fetches a single purchase order.
func (c *Client) GetOrder(ctx context.Context, token, id string) (model.Order, error) {
	var out model.Order
	if err := c.getJSON(ctx, "/orders/"+url.PathEscape(id), token, &out); err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// UpdateOrder patches the mutable order fields.
func (c *Client) UpdateOrder(
	ctx context.Context,
	token, id string,
	in model.OrderUpdate,
) (model.Order, error) {
	var out model.Order
	path := "/orders/" + url.PathEscape(id)
	if err := c.writeJSON(ctx, http.MethodPatch, path, token, in, &out); err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// ListPayments fetches settlement records.
func (c *Client) ListPayments(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.Payment, error) {
	var out []model.Payment
	if err := c.getJSON(ctx, "/payments"+listQuery(p), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPayment fetches a single settlement record.
func (c *Client) GetPayment(ctx context.Context, token, id string) (model.Payment, error) {
	var out model.Payment
	if err := c.getJSON(ctx, "/payments/"+url.PathEscape(id), token, &out); err != nil {
		return model.Payment{}, err
	}
	return out, nil
}

// RefundPayment issues a refund for a settlement.
func (c *Client) RefundPayment(
	ctx context.Context,
	token, id string,
	amount float64,
) (model.Payment, error) {
	var out model.Payment
	path := "/payments/" + url.PathEscape(id) + "/refund"
	in := map[string]float64{"amount": amount}
	if err := c.writeJSON(ctx, http.MethodPost, path, token, in, &out); err != nil {
		return model.Payment{}, err
	}
	return out, nil
}

// DashboardStats fetches the headline dashboard counters.
func (c *Client) DashboardStats(ctx context.Context, token string) (model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.getJSON(ctx, "/dashboard/stats", token, &out); err != nil {
		return model.DashboardStats{}, err
	}
	return out, nil
}

// --- transport helpers ---

// resourceEnvelope is the single-level data wrapper on resource responses.
type resourceEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// getJSON performs an authenticated GET with bounded linear-backoff
// retries; GETs are idempotent so retrying is safe.
func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		lastErr = c.doJSON(ctx, http.MethodGet, path, token, nil, out)
		if lastErr == nil ||
			errors.Is(lastErr, ErrUnauthorized) ||
			errors.Is(lastErr, ErrNotFound) ||
			ctx.Err() != nil {
			return lastErr
		}
		if attempt < attempts-1 {
			// Simple linear backoff to avoid hammering a struggling upstream.
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}

// writeJSON performs an authenticated mutation without retries.
func (c *Client) writeJSON(ctx context.Context, method, path, token string, in, out any) error {
	return c.doJSON(ctx, method, path, token, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
	}

	respBody, status, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status < 200 || status >= 300:
		return fmt.Errorf("upstream %s %s: unexpected status %d", method, path, status)
	}

	if out == nil {
		return nil
	}

	// Resource responses wrap the payload in a data envelope; tolerate
	// unwrapped bodies from older upstream versions.
	var env resourceEnvelope
	if err := json.Unmarshal(respBody, &env); err == nil && len(env.Data) > 0 {
		respBody = env.Data
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, token string, body []byte) ([]byte, int, error) {
	return c.do(ctx, http.MethodPost, path, token, body)
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WarnContext(ctx, "close upstream response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read upstream response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func listQuery(p model.ListParams) string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(p.PerPage))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("search", s)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func truncateForLog(b []byte) string {
	const maxLoggedBody = 512
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
