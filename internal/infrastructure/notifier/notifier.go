package notifier

import (
	"context"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/infrastructure/configloader"
)

// NoopNotifier logs and drops messages. Used when no delivery channel is configured.
type NoopNotifier struct {
	logger port.Logger
}

// NewNoopNotifier creates a notifier that only logs.
func NewNoopNotifier(logger port.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Send logs the message instead of delivering it.
func (n *NoopNotifier) Send(_ context.Context, recipient, subject, _ string) error {
	n.logger.Info("Notification (noop channel)", "recipient", recipient, "subject", subject)
	return nil
}

// FromConfig builds the notifier selected by the notification mode.
// Unknown modes fall back to noop with a warning.
func FromConfig(cfg *configloader.Config, logger port.Logger) port.Notifier {
	switch cfg.Notification.Mode {
	case "smtp":
		return NewSMTPNotifier(cfg.Notification.SMTP, logger)
	case "webhook":
		return NewWebhookNotifier(cfg.Notification.WebhookURL, logger)
	case "noop", "":
		return NewNoopNotifier(logger)
	default:
		logger.Warn("Unknown notification mode, falling back to noop", "mode", cfg.Notification.Mode)
		return NewNoopNotifier(logger)
	}
}
