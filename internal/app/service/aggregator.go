package service

import (
	"context"
	"fmt"
	"math/big"
	"net/mail"
	"sort"
	"strings"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
	"balance_watcher/internal/pkg/utils"
	"balance_watcher/pkg/metrics"
)

// BaselineCommitter advances a wallet's valuation baseline after a change has
// been delivered. Implemented by WalletTracker.
type BaselineCommitter interface {
	Commit(address string, confirmed *big.Int)
}

// NotificationAggregator groups confirmed change records by recipient and
// delivers one message per recipient per cycle. Baselines are committed only
// for wallets whose message was actually sent, so an undeliverable change is
// re-detected on the next cycle.
type NotificationAggregator struct {
	notifier         port.Notifier
	committer        BaselineCommitter
	defaultRecipient string
	logger           port.Logger
}

// NewNotificationAggregator creates an aggregator delivering through the given notifier.
func NewNotificationAggregator(
	notifier port.Notifier,
	committer BaselineCommitter,
	defaultRecipient string,
	logger port.Logger,
) *NotificationAggregator {
	return &NotificationAggregator{
		notifier:         notifier,
		committer:        committer,
		defaultRecipient: defaultRecipient,
		logger:           logger,
	}
}

// Dispatch delivers the cycle's confirmed changes, one message per recipient.
func (a *NotificationAggregator) Dispatch(ctx context.Context, changes []*entity.ChangeRecord) {
	if len(changes) == 0 {
		return
	}

	groups := make(map[string][]*entity.ChangeRecord)
	for _, change := range changes {
		recipient := a.effectiveRecipient(change)
		if recipient == "" {
			a.logger.Warn("No deliverable recipient for wallet change, skipping",
				"address", change.Address, "label", change.Label)
			continue
		}
		groups[recipient] = append(groups[recipient], change)
	}

	recipients := make([]string, 0, len(groups))
	for recipient := range groups {
		recipients = append(recipients, recipient)
	}
	sort.Strings(recipients)

	for _, recipient := range recipients {
		group := groups[recipient]
		subject := subjectFor(group)
		body := bodyFor(group)

		if err := a.notifier.Send(ctx, recipient, subject, body); err != nil {
			metrics.NotificationsFailedTotal.Inc()
			a.logger.Error("Notification delivery failed, baselines left unchanged",
				"recipient", recipient, "wallets", len(group), "error", err)
			continue
		}

		metrics.NotificationsSentTotal.Inc()
		a.logger.Info("Notification delivered", "recipient", recipient, "wallets", len(group))
		for _, change := range group {
			a.committer.Commit(change.Address, change.Valuation)
		}
	}
}

// effectiveRecipient picks the wallet's own email when it parses as an
// address, otherwise the configured default. Empty means undeliverable.
func (a *NotificationAggregator) effectiveRecipient(change *entity.ChangeRecord) string {
	if change.Email != "" {
		if _, err := mail.ParseAddress(change.Email); err == nil {
			return change.Email
		}
		a.logger.Warn("Wallet email is not a valid address, using default recipient",
			"address", change.Address, "email", change.Email)
	}
	return a.defaultRecipient
}

func subjectFor(group []*entity.ChangeRecord) string {
	if len(group) == 1 {
		return fmt.Sprintf("Balance change detected: %s", displayName(group[0]))
	}
	return fmt.Sprintf("Balance changes detected on %d wallets", len(group))
}

func bodyFor(group []*entity.ChangeRecord) string {
	var b strings.Builder
	for i, change := range group {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Wallet %s\n", displayName(change))
		fmt.Fprintf(&b, "Change: %s USD, current valuation: %s USD\n",
			utils.FormatMicroUnits(change.Delta), utils.FormatMicroUnits(change.Valuation))
		for _, line := range change.Details {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func displayName(change *entity.ChangeRecord) string {
	if change.Label != "" {
		return fmt.Sprintf("%s (%s)", change.Label, change.Address)
	}
	return change.Address
}
