package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance_watcher/internal/infrastructure/configloader"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Debug(string, ...any) {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func TestSMTPNotifierComposesMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)

	n := NewSMTPNotifier(configloader.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "watcher@example.com",
	}, testLogger{})
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := n.Send(context.Background(), "ops@example.com", "Balance change", "details here")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "watcher@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Balance change\r\n")
	assert.Contains(t, gotMsg, "To: ops@example.com\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\ndetails here")
}

func TestSMTPNotifierPropagatesFailure(t *testing.T) {
	n := NewSMTPNotifier(configloader.SMTPConfig{Host: "smtp.example.com", Port: 587}, testLogger{})
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := n.Send(context.Background(), "ops@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp delivery")
}

func TestSMTPNotifierHonorsCancelledContext(t *testing.T) {
	n := NewSMTPNotifier(configloader.SMTPConfig{}, testLogger{})
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail must not be called with a cancelled context")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.Send(ctx, "ops@example.com", "s", "b"))
}

func TestWebhookNotifierPostsJSON(t *testing.T) {
	var captured webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, testLogger{})
	err := n.Send(context.Background(), "ops@example.com", "Balance change", "details here")
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", captured.Recipient)
	assert.Equal(t, "Balance change", captured.Subject)
	assert.Equal(t, "details here", captured.Body)
	assert.NotEmpty(t, captured.Time)
}

func TestWebhookNotifierRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, testLogger{})
	err := n.Send(context.Background(), "ops@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNoopNotifierAlwaysSucceeds(t *testing.T) {
	n := NewNoopNotifier(testLogger{})
	assert.NoError(t, n.Send(context.Background(), "anyone", "s", "b"))
}

func TestFromConfigSelectsMode(t *testing.T) {
	logger := testLogger{}

	cfg := &configloader.Config{}
	cfg.Notification.Mode = "smtp"
	assert.IsType(t, &SMTPNotifier{}, FromConfig(cfg, logger))

	cfg.Notification.Mode = "webhook"
	assert.IsType(t, &WebhookNotifier{}, FromConfig(cfg, logger))

	cfg.Notification.Mode = "noop"
	assert.IsType(t, &NoopNotifier{}, FromConfig(cfg, logger))

	cfg.Notification.Mode = "carrier-pigeon"
	assert.IsType(t, &NoopNotifier{}, FromConfig(cfg, logger))
}
