// Package licensing implements the license-platform client over its
// HTTP API. Every platform response is wrapped in a uniform envelope
// {code, message, data}; business rejections arrive as 503 envelopes
// with Spanish prose messages, which are surfaced to callers via
// licensing.ProviderError.
package licensing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"marketplace/internal/application/licensing"
	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20 // 1MB

	// Platform tokens live for an hour; refresh a little early.
	tokenTTL = 50 * time.Minute
)

// envelope is the uniform response wrapper the platform puts around
// every payload, success and failure alike.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// PlanCache is the read-through cache for the plan catalog.
type PlanCache interface {
	Get(ctx context.Context) ([]licensing.Plan, bool)
	Set(ctx context.Context, plans []licensing.Plan)
}

// Client talks to the license platform with a cached token. The
// platform hands out tokens that already carry their auth scheme, so
// they are replayed verbatim in the Authorization header.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	store      string
	cache      PlanCache
	logger     logger.Interface

	mu           sync.Mutex
	token        string
	tokenFetched time.Time
}

var _ licensing.Client = (*Client)(nil)

func NewClient(cfg *config.LicensingConfig, cache PlanCache, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		store:      cfg.Store,
		cache:      cache,
		logger:     log,
	}
}

// decodeEnvelope reads and unwraps a platform response body.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse platform envelope: %w", err)
	}
	return &env, nil
}

// providerMessage pulls the human-readable rejection out of an error
// envelope. The platform is inconsistent about which field carries
// it, so message, detalle and error are all tried in that order.
func providerMessage(body []byte) string {
	var raw struct {
		Message string `json:"message"`
		Detalle string `json:"detalle"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err == nil {
		for _, m := range []string{raw.Message, raw.Detalle, raw.Error} {
			if m != "" {
				return m
			}
		}
	}
	return string(body)
}

// getToken returns a cached token, logging in when it is missing or
// stale. force discards the cached token first.
//
// Login credentials travel as query parameters, not a body.
func (c *Client) getToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.token != "" && time.Since(c.tokenFetched) < tokenTTL {
		return c.token, nil
	}

	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewExternalAPIError("license platform login failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &licensing.ProviderError{StatusCode: resp.StatusCode, Body: providerMessage(body)}
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return "", err
	}
	if env.Code != http.StatusOK {
		return "", &licensing.ProviderError{StatusCode: env.Code, Body: env.Message}
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse login data: %w", err)
	}
	if data.Token == "" {
		return "", fmt.Errorf("license platform returned empty token")
	}

	// The token comes back with its scheme already attached.
	c.token = data.Token
	c.tokenFetched = time.Now()
	c.logger.Debugw("license platform token refreshed")
	return c.token, nil
}

// doAuthed performs an authenticated request, retrying once with a
// fresh token when the platform rejects the cached one. The store
// identifier is appended to every query.
func (c *Client) doAuthed(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("store", c.store)
	fullPath := path + "?" + query.Encode()

	force := false
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.getToken(ctx, force)
		if err != nil {
			return 0, nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+fullPath, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, apperrors.NewExternalAPIError("license platform request failed", err)
		}
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			force = true
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	return 0, nil, fmt.Errorf("unreachable")
}

func (c *Client) ListPlans(ctx context.Context) ([]licensing.Plan, error) {
	if c.cache != nil {
		if plans, ok := c.cache.Get(ctx); ok {
			return plans, nil
		}
	}

	status, body, err := c.doAuthed(ctx, http.MethodGet, "/store/plans", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &licensing.ProviderError{StatusCode: status, Body: providerMessage(body)}
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Code != http.StatusOK {
		return nil, &licensing.ProviderError{StatusCode: env.Code, Body: env.Message}
	}

	var plans []licensing.Plan
	if err := json.Unmarshal(env.Data, &plans); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}

	for i := range plans {
		if (plans[i].Price == 0) != plans[i].IsFree() {
			c.logger.Warnw("plan price disagrees with catalog naming",
				"plan_id", plans[i].ID,
				"name", plans[i].Name,
				"price", plans[i].Price,
			)
		}
	}

	if c.cache != nil {
		c.cache.Set(ctx, plans)
	}
	return plans, nil
}

func (c *Client) GetPlan(ctx context.Context, planID uint) (*licensing.Plan, error) {
	plans, err := c.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == planID {
			return &plans[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("plan %d not found in catalog", planID))
}

func (c *Client) CreateSubscription(ctx context.Context, req licensing.CreateSubscriptionRequest) (*licensing.CreateSubscriptionResult, error) {
	fullName := strings.TrimSpace(req.FirstName + " " + req.LastName)
	payload := map[string]any{
		"rfc": req.IdentityNumber,
		"client_info": map[string]any{
			"name":        fullName,
			"brand_name":  fullName + " - " + c.store,
			"address":     "No address provided",
			"description": fmt.Sprintf("%s account for %s", c.store, req.Email),
		},
		"username": req.Email,
		"user_info": map[string]any{
			"first_name":   req.FirstName,
			"last_name":    req.LastName,
			"email":        req.Email,
			"password":     req.Password,
			"phone_number": req.Phone,
		},
		"plan_id":    req.PlanID,
		"new_client": req.IsNewClient,
	}

	status, body, err := c.doAuthed(ctx, http.MethodPost, "/store/subscription", nil, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &licensing.ProviderError{StatusCode: status, Body: providerMessage(body)}
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Code != http.StatusOK {
		return nil, &licensing.ProviderError{StatusCode: env.Code, Body: env.Message}
	}

	var data struct {
		ClientID *int `json:"client_id"`
		UserID   *int `json:"user_id"`
		Licenses int  `json:"total_licencias"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to parse subscription data: %w", err)
		}
	}

	return &licensing.CreateSubscriptionResult{
		ClientID: data.ClientID,
		UserID:   data.UserID,
		Licenses: data.Licenses,
	}, nil
}

// ValidateIdentity asks the platform whether the identity number is
// already bound to a subscription. A 200 envelope means the number is
// taken, whether or not the data list has entries; the specific 503
// saying the number does not correspond to any client clears it;
// anything else stays unsettled so registration can retry later.
func (c *Client) ValidateIdentity(ctx context.Context, identityNumber string) (*licensing.IdentityCheck, error) {
	q := url.Values{}
	q.Set("rfc", identityNumber)

	status, body, err := c.doAuthed(ctx, http.MethodGet, "/store/client/subscription", q, nil)
	if err != nil {
		return nil, err
	}

	env, envErr := decodeEnvelope(body)

	switch {
	case status == http.StatusOK && envErr == nil && env.Code == http.StatusOK:
		return &licensing.IdentityCheck{AlreadyRegistered: true}, nil
	case status == http.StatusServiceUnavailable && envErr == nil &&
		env.Code == http.StatusServiceUnavailable &&
		strings.Contains(strings.ToLower(env.Message), "no corresponde"):
		return &licensing.IdentityCheck{Allowed: true}, nil
	default:
		c.logger.Warnw("identity validation unsettled",
			"status", status,
			"identity_number", identityNumber,
		)
		return &licensing.IdentityCheck{Retryable: true}, nil
	}
}
