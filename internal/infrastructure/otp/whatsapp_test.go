package otp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/shared/config"
	"marketplace/internal/shared/logger"
)

func newTestWhatsApp(t *testing.T, handle http.HandlerFunc) *WhatsAppClient {
	t.Helper()
	srv := httptest.NewServer(handle)
	t.Cleanup(srv.Close)
	cfg := &config.WhatsAppConfig{
		BaseURL: srv.URL,
		Keycode: "kc-1",
		Token:   "tok-1",
	}
	return NewWhatsAppClient(cfg, "marketplace", logger.NewLogger())
}

func TestWhatsAppSendCode(t *testing.T) {
	var gotMethod, gotPath string
	var gotQuery map[string]string
	c := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"token":       r.URL.Query().Get("token"),
			"type":        r.URL.Query().Get("type"),
			"phone":       r.URL.Query().Get("phone"),
			"application": r.URL.Query().Get("application"),
			"keycode":     r.URL.Query().Get("keycode"),
		}
		w.Write([]byte(`{"code":200,"message":"sent","data":null}`))
	})

	err := c.SendCode(context.Background(), "+52 55 1111 2222")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/phone/autenticate", gotPath)
	assert.Equal(t, "tok-1", gotQuery["token"])
	assert.Equal(t, "web", gotQuery["type"])
	assert.Equal(t, "marketplace", gotQuery["application"])
	assert.Equal(t, "kc-1", gotQuery["keycode"])
	assert.NotEmpty(t, gotQuery["phone"])
}

func TestWhatsAppSendCodeReusesPendingCode(t *testing.T) {
	c := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":201,"message":"code still valid","data":null}`))
	})

	assert.NoError(t, c.SendCode(context.Background(), "+525511112222"))
}

func TestWhatsAppSendCodeRejection(t *testing.T) {
	c := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":429,"message":"too many attempts","data":null}`))
	})

	assert.Error(t, c.SendCode(context.Background(), "+525511112222"))
}

func TestWhatsAppVerifyCode(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		verified bool
	}{
		{
			name:     "validated",
			status:   http.StatusOK,
			body:     `{"code":200,"message":"ok","data":{"validated":true}}`,
			verified: true,
		},
		{
			name:   "not validated",
			status: http.StatusOK,
			body:   `{"code":200,"message":"ok","data":{"validated":false}}`,
		},
		{
			name:   "envelope rejection",
			status: http.StatusOK,
			body:   `{"code":400,"message":"codigo incorrecto","data":null}`,
		},
		{
			// A body that is not the envelope must never count as
			// verified.
			name:   "plain text body stays unverified",
			status: http.StatusOK,
			body:   `OK`,
		},
		{
			name:   "http error",
			status: http.StatusBadRequest,
			body:   `{"code":400,"message":"codigo incorrecto","data":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/phone/autenticate", r.URL.Path)
				assert.Equal(t, "123456", r.URL.Query().Get("code"))
				assert.Empty(t, r.URL.Query().Get("token"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			ok, err := c.VerifyCode(context.Background(), "+525511112222", "123456")
			require.NoError(t, err)
			assert.Equal(t, tt.verified, ok)
		})
	}
}
