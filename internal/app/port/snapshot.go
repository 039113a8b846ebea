package port

import (
	"context"

	"balance_watcher/internal/domain/entity"
)

// Snapshotter produces one NetworkSnapshot per selected network for a wallet.
// It never fails as a whole: per-network failures are captured in-line as
// error markers so one broken chain never blocks the others.
type Snapshotter interface {
	Snapshot(ctx context.Context, walletAddress string) []entity.NetworkSnapshot
}
