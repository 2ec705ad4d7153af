// Package otp implements phone verification over the WhatsApp
// gateway used by the billing portal.
package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

const (
	requestTimeout  = 15 * time.Second
	maxResponseSize = 64 * 1024

	authenticatePath = "/phone/autenticate"
)

// Sender delivers and verifies one-time codes.
type Sender interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (bool, error)
}

// WhatsAppClient is the gateway-backed Sender. The gateway mints and
// checks the codes itself; this service never sees them. Responses
// ride the gateway's {code, message, data} envelope.
type WhatsAppClient struct {
	httpClient  *http.Client
	baseURL     string
	keycode     string
	token       string
	application string
	logger      logger.Interface
}

var _ Sender = (*WhatsAppClient)(nil)

func NewWhatsAppClient(cfg *config.WhatsAppConfig, application string, log logger.Interface) *WhatsAppClient {
	return &WhatsAppClient{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		keycode:     cfg.Keycode,
		token:       cfg.Token,
		application: application,
		logger:      log,
	}
}

type gatewayEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *WhatsAppClient) do(ctx context.Context, method string, params url.Values) (int, []byte, error) {
	params.Set("keycode", c.keycode)
	params.Set("application", c.application)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+authenticatePath+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.NewExternalAPIError("whatsapp gateway unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// SendCode asks the gateway to deliver a verification code. Delivery
// is a POST carrying the gateway token; an envelope code of 200 means
// a fresh code went out and 201 means a still-valid one was reused.
func (c *WhatsAppClient) SendCode(ctx context.Context, phone string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return apperrors.NewValidationError("invalid phone number", err.Error())
	}

	params := url.Values{}
	params.Set("token", c.token)
	params.Set("type", "web")
	params.Set("phone", normalized)

	status, body, err := c.do(ctx, http.MethodPost, params)
	if err != nil {
		return err
	}

	var env gatewayEnvelope
	if status != http.StatusOK || json.Unmarshal(body, &env) != nil ||
		(env.Code != http.StatusOK && env.Code != http.StatusCreated) {
		c.logger.Warnw("whatsapp code send rejected",
			"status", status,
			"phone", normalized,
		)
		return apperrors.NewExternalAPIError(
			fmt.Sprintf("whatsapp gateway returned %d", status), nil)
	}

	c.logger.Infow("verification code sent", "phone", normalized, "gateway_code", env.Code)
	return nil
}

// VerifyCode checks a user-supplied code against the gateway. Only an
// envelope code of 200 whose data reports validated counts; anything
// unexpected, including an undecodable body, leaves the phone
// unverified.
func (c *WhatsAppClient) VerifyCode(ctx context.Context, phone, code string) (bool, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return false, apperrors.NewValidationError("invalid phone number", err.Error())
	}

	params := url.Values{}
	params.Set("phone", normalized)
	params.Set("code", code)

	status, body, err := c.do(ctx, http.MethodGet, params)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, nil
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code != http.StatusOK {
		return false, nil
	}
	var data struct {
		Validated bool `json:"validated"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, nil
	}
	return data.Validated, nil
}
