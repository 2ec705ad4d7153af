// Package mercadopago implements the checkout gateway over the
// Mercado Pago REST API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/application/payment/paymentgateway"
	"marketplace/internal/shared/biztime"
	"marketplace/internal/shared/config"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

const (
	apiBaseURL      = "https://api.mercadopago.com"
	requestTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20 // 1MB

	// Checkout links die after a day so stale carts cannot pay
	// against an outdated catalog.
	preferenceTTL = 24 * time.Hour
)

// Gateway is the Mercado Pago implementation of the checkout contract.
type Gateway struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	sandbox     bool
	logger      logger.Interface
}

var _ paymentgateway.Gateway = (*Gateway)(nil)

func NewGateway(cfg *config.MercadoPagoConfig, log logger.Interface) *Gateway {
	return &Gateway{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     apiBaseURL,
		accessToken: cfg.AccessToken,
		sandbox:     cfg.Sandbox,
		logger:      log,
	}
}

type preferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type preferencePayload struct {
	Items             []preferenceItem  `json:"items"`
	Payer             map[string]string `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls"`
	AutoReturn        string            `json:"auto_return"`
	ExternalReference string            `json:"external_reference"`
	ExpirationFrom    string            `json:"expiration_date_from"`
	ExpirationTo      string            `json:"expiration_date_to"`
	Expires           bool              `json:"expires"`
}

func (g *Gateway) CreatePreference(ctx context.Context, req paymentgateway.PreferenceRequest) (*paymentgateway.Preference, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	now := biztime.NowUTC()
	payload := preferencePayload{
		Items: []preferenceItem{{
			Title:       req.Title,
			Description: req.Description,
			Quantity:    quantity,
			UnitPrice:   req.Amount,
			CurrencyID:  req.Currency,
		}},
		BackURLs: map[string]string{
			"success": req.SuccessURL,
			"failure": req.FailureURL,
			"pending": req.PendingURL,
		},
		AutoReturn:        "approved",
		ExternalReference: req.ExternalReference,
		ExpirationFrom:    now.Format(time.RFC3339),
		ExpirationTo:      now.Add(preferenceTTL).Format(time.RFC3339),
		Expires:           true,
	}
	if req.PayerEmail != "" {
		payload.Payer = map[string]string{"email": req.PayerEmail}
	}

	status, body, err := g.do(ctx, http.MethodPost, "/checkout/preferences", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		g.logger.Errorw("preference creation rejected",
			"status", status,
			"external_reference", req.ExternalReference,
		)
		return nil, apperrors.NewExternalAPIError(
			fmt.Sprintf("mercado pago returned %d creating preference", status), nil)
	}

	var resp struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse preference response: %w", err)
	}

	initPoint := resp.InitPoint
	if g.sandbox && resp.SandboxInitPoint != "" {
		initPoint = resp.SandboxInitPoint
	}
	return &paymentgateway.Preference{
		ID:        resp.ID,
		InitPoint: initPoint,
	}, nil
}

func (g *Gateway) GetPayment(ctx context.Context, paymentID string) (*paymentgateway.PaymentInfo, error) {
	status, body, err := g.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, apperrors.NewExternalAPIError(
			fmt.Sprintf("mercado pago returned %d fetching payment %s", status, paymentID), nil)
	}

	var resp struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		StatusDetail      string      `json:"status_detail"`
		ExternalReference string      `json:"external_reference"`
		TransactionAmount float64     `json:"transaction_amount"`
		CurrencyID        string      `json:"currency_id"`
		Payer             struct {
			Email string `json:"email"`
		} `json:"payer"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse payment response: %w", err)
	}

	id := resp.ID.String()
	if id == "" {
		id = paymentID
	}
	return &paymentgateway.PaymentInfo{
		ID:                id,
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		Amount:            resp.TransactionAmount,
		Currency:          resp.CurrencyID,
		PayerEmail:        resp.Payer.Email,
	}, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", idempotencyKey())
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.NewExternalAPIError("mercado pago unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func idempotencyKey() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
