package port

import "context"

// Notifier delivers one composed message to one recipient. Delivery failure is
// non-fatal to the process; callers decide how to react.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
