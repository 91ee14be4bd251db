package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testaro/testaro_backend/internal/core/ports"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *PostmarkNotifier {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := NewPostmarkNotifier(&config.Config{
		PostmarkServerToken:  "test-server-token",
		PostmarkAccountToken: "test-account-token",
		SenderEmail:          "no-reply@testaro.app",
	})
	require.NoError(t, err)
	n.client.BaseURL = srv.URL
	return n
}

func TestNewPostmarkNotifier_InvalidConfig(t *testing.T) {
	t.Run("missing server token", func(t *testing.T) {
		n, err := NewPostmarkNotifier(&config.Config{
			PostmarkAccountToken: "test-account-token",
			SenderEmail:          "no-reply@testaro.app",
		})
		assert.Error(t, err)
		assert.Nil(t, n)
	})

	t.Run("missing sender email", func(t *testing.T) {
		n, err := NewPostmarkNotifier(&config.Config{
			PostmarkServerToken:  "test-server-token",
			PostmarkAccountToken: "test-account-token",
		})
		assert.Error(t, err)
		assert.Nil(t, n)
	})
}

func TestPostmarkNotifier_SendSuccess(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"user@example.com","MessageID":"msg-1","ErrorCode":0,"Message":"OK"}`))
	})

	err := n.Send(context.Background(), "user@example.com", ports.NotificationWelcome, map[string]string{
		"email": "user@example.com",
	})

	assert.NoError(t, err)
}

func TestPostmarkNotifier_SendReportsBodyLevelRejection(t *testing.T) {
	// Postmark answers 200 with a non-zero ErrorCode for per-message
	// rejections such as an inactive recipient; that must surface as an
	// error so callers can log the failure.
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"inactive@example.com","ErrorCode":406,"Message":"You tried to send to a recipient that has been marked as inactive."}`))
	})

	err := n.Send(context.Background(), "inactive@example.com", ports.NotificationWelcome, map[string]string{
		"email": "inactive@example.com",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "406")
	assert.Contains(t, err.Error(), "inactive")
}

func TestPostmarkNotifier_SendUnknownKind(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an unknown notification kind")
	})

	err := n.Send(context.Background(), "user@example.com", ports.NotificationKind("unknown"), nil)

	assert.Error(t, err)
}
