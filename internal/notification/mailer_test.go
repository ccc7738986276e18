package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_Send(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got resendEmailRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
			assert.Equal(t, "notification-9", r.Header.Get("Idempotency-Key"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"email_123"}`))
		}))
		defer srv.Close()

		m := NewResendMailer(srv.URL, "re_test", "noreply@arkom.app")
		err := m.Send(context.Background(), Email{To: "mira@example.com", Subject: "Hello", Text: "body", IdempotencyKey: "notification-9"})
		require.NoError(t, err)

		assert.Equal(t, "noreply@arkom.app", got.From)
		assert.Equal(t, []string{"mira@example.com"}, got.To)
		assert.Equal(t, "Hello", got.Subject)
		assert.Equal(t, "body", got.Text)
	})

	t.Run("APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
		}))
		defer srv.Close()

		m := NewResendMailer(srv.URL, "re_test", "noreply@arkom.app")
		err := m.Send(context.Background(), Email{To: "bad", Subject: "Hello"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid to field")
		assert.Contains(t, err.Error(), "422")
	})
}

func TestResendMailer_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"statusCode":500,"name":"internal_server_error","message":"try later"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "noreply@arkom.app")
	err := m.Send(context.Background(), Email{To: "mira@example.com", Subject: "Hello"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewMailer_NoKeyIsNop(t *testing.T) {
	m := NewMailer("", "noreply@arkom.app")
	assert.IsType(t, nopMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), Email{To: "x@example.com"}))
}
