package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/infrastructure/configloader"
)

// SMTPNotifier delivers messages over plain SMTP. One message per call; the
// aggregation into per-recipient digests happens upstream.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   port.Logger

	// sendMail is swappable in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates an SMTP notifier from configuration.
func NewSMTPNotifier(cfg configloader.SMTPConfig, logger port.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// Send composes and delivers a single message to the recipient.
func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := n.sendMail(addr, auth, n.from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp delivery to %s failed: %w", recipient, err)
	}
	n.logger.Debug("SMTP message delivered", "recipient", recipient, "subject", subject)
	return nil
}
