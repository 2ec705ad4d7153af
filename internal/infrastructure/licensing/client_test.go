package licensing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applicensing "marketplace/internal/application/licensing"
	"marketplace/internal/shared/config"
	"marketplace/internal/shared/logger"
)

const testToken = "Bearer abc123"

// newTestClient wires a Client against a stub platform. The stub
// answers /login with an envelope-wrapped token and delegates
// everything else to handle.
func newTestClient(t *testing.T, handle http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "admin", r.URL.Query().Get("username"))
			assert.Equal(t, "secret", r.URL.Query().Get("password"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"code":200,"message":"ok","data":{"token":"` + testToken + `"}}`))
			return
		}
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.LicensingConfig{
		BaseURL:  srv.URL,
		Username: "admin",
		Password: "secret",
		Store:    "marketplace",
	}
	return NewClient(cfg, nil, logger.NewLogger())
}

func TestClientSendsTokenVerbatim(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":200,"message":"ok","data":[]}`))
	})

	_, err := c.ListPlans(context.Background())
	require.NoError(t, err)

	// The platform issues tokens with the scheme baked in; no second
	// prefix may be added.
	assert.Equal(t, testToken, gotAuth)
}

func TestClientListPlansUnwrapsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/plans", r.URL.Path)
		assert.Equal(t, "marketplace", r.URL.Query().Get("store"))
		w.Write([]byte(`{"code":200,"message":"ok","data":[
			{"id":1,"name":"Plan Gratuito","price":0},
			{"id":2,"name":"Plan Equipo Anual","price":4990}
		]}`))
	})

	plans, err := c.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, uint(2), plans[1].ID)
	assert.Equal(t, float64(4990), plans[1].Price)
}

func TestClientCreateSubscriptionPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/store/subscription", r.URL.Path)
		assert.Equal(t, "marketplace", r.URL.Query().Get("store"))
		w.Write([]byte(`{"code":200,"message":"created","data":{"client_id":7,"user_id":11,"total_licencias":5}}`))
	})

	res, err := c.CreateSubscription(context.Background(), applicensing.CreateSubscriptionRequest{
		PlanID:         2,
		Email:          "ana@example.com",
		Password:       "pw",
		FirstName:      "Ana",
		LastName:       "Lopez",
		Phone:          "+525511112222",
		IdentityNumber: "LOAA900101AB1",
		IsNewClient:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.ClientID)
	assert.Equal(t, 7, *res.ClientID)
	require.NotNil(t, res.UserID)
	assert.Equal(t, 11, *res.UserID)
	assert.Equal(t, 5, res.Licenses)
}

func TestClientCreateSubscriptionRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":503,"message":"El RFC ya se encuentra registrado","data":null}`))
	})

	_, err := c.CreateSubscription(context.Background(), applicensing.CreateSubscriptionRequest{PlanID: 2})
	var provErr *applicensing.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "ya se encuentra registrado")
}

func TestClientValidateIdentity(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		registered bool
		allowed    bool
		retryable  bool
	}{
		{
			name:       "ok envelope with entries means taken",
			status:     http.StatusOK,
			body:       `{"code":200,"message":"ok","data":[{"id":1}]}`,
			registered: true,
		},
		{
			// An empty data list still rides a 200 envelope, and a
			// 200 envelope means the platform knows the number.
			name:       "ok envelope with empty data still means taken",
			status:     http.StatusOK,
			body:       `{"code":200,"message":"ok","data":[]}`,
			registered: true,
		},
		{
			name:    "503 no corresponde clears the number",
			status:  http.StatusServiceUnavailable,
			body:    `{"code":503,"message":"El RFC no corresponde a ningun cliente","data":null}`,
			allowed: true,
		},
		{
			name:      "other 503 stays unsettled",
			status:    http.StatusServiceUnavailable,
			body:      `{"code":503,"message":"Servicio en mantenimiento","data":null}`,
			retryable: true,
		},
		{
			name:      "unparseable body stays unsettled",
			status:    http.StatusOK,
			body:      `OK`,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/store/client/subscription", r.URL.Path)
				assert.Equal(t, "XAXX010101000", r.URL.Query().Get("rfc"))
				assert.Equal(t, "marketplace", r.URL.Query().Get("store"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			check, err := c.ValidateIdentity(context.Background(), "XAXX010101000")
			require.NoError(t, err)
			assert.Equal(t, tt.registered, check.AlreadyRegistered)
			assert.Equal(t, tt.allowed, check.Allowed)
			assert.Equal(t, tt.retryable, check.Retryable)
		})
	}
}

func TestClientRetriesOnceOnStaleToken(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":401,"message":"token expirado","data":null}`))
			return
		}
		w.Write([]byte(`{"code":200,"message":"ok","data":[]}`))
	})

	plans, err := c.ListPlans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Equal(t, 2, attempts)
}
