package service

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
	"balance_watcher/internal/pkg/utils"
	"balance_watcher/pkg/metrics"
)

// WalletTracker is the per-wallet change-detection state machine. It keeps one
// WalletState per canonical address for the lifetime of the process; baselines
// advance only through Commit, which the aggregator calls after successful
// delivery.
type WalletTracker struct {
	snapshotter   port.Snapshotter
	logger        port.Logger
	threshold     *big.Int
	errorTolerant bool

	mu     sync.Mutex
	states map[string]*entity.WalletState
}

// NewWalletTracker creates a tracker with the given micro-unit threshold.
func NewWalletTracker(snapshotter port.Snapshotter, thresholdMicro *big.Int, errorTolerant bool, logger port.Logger) *WalletTracker {
	return &WalletTracker{
		snapshotter:   snapshotter,
		logger:        logger,
		threshold:     thresholdMicro,
		errorTolerant: errorTolerant,
		states:        make(map[string]*entity.WalletState),
	}
}

// EvaluateWallet runs one sampling pass for the wallet and returns an accepted
// change record, or nil when nothing is to be notified. The wallet's baseline
// is never advanced here; that happens in Commit after delivery.
func (t *WalletTracker) EvaluateWallet(ctx context.Context, wallet entity.Wallet) *entity.ChangeRecord {
	metrics.WalletEvaluationsTotal.Inc()

	snapshots := t.snapshotter.Snapshot(ctx, wallet.Address)
	valuation, hadErrors := Valuate(snapshots)
	state := t.ensureState(wallet)

	if state.LastValuation == nil {
		// First observation: the valuation becomes the baseline, silently.
		state.LastValuation = valuation
		t.logger.Info("Wallet baseline recorded",
			"address", wallet.Address, "valuation_usd", utils.FormatMicroUnits(valuation))
		return nil
	}

	delta := new(big.Int).Sub(valuation, state.LastValuation)
	delta.Abs(delta)
	if delta.Cmp(t.threshold) < 0 {
		return nil
	}

	if hadErrors && !t.errorTolerant {
		// A dead chain or failed stable-token read deflates the valuation;
		// acting on it would notify about money that never moved.
		t.logger.Warn("Valuation change gated by snapshot errors",
			"address", wallet.Address, "delta_usd", utils.FormatMicroUnits(delta))
		return nil
	}

	// Confirmation re-sample: one immediate re-read against the same baseline
	// filters RPC jitter and single-block timing artifacts.
	metrics.ConfirmationsTotal.Inc()
	confSnapshots := t.snapshotter.Snapshot(ctx, wallet.Address)
	confValuation, confErrors := Valuate(confSnapshots)

	if confErrors && !t.errorTolerant {
		t.logger.Warn("Confirmation pass gated by snapshot errors", "address", wallet.Address)
		return nil
	}

	confDelta := new(big.Int).Sub(confValuation, state.LastValuation)
	confDelta.Abs(confDelta)
	if confDelta.Cmp(t.threshold) < 0 {
		metrics.ConfirmationsSuppressedTotal.Inc()
		t.logger.Info("Change not confirmed, treating as transient noise",
			"address", wallet.Address,
			"initial_delta_usd", utils.FormatMicroUnits(delta),
			"confirmed_delta_usd", utils.FormatMicroUnits(confDelta))
		return nil
	}

	t.logger.Info("Confirmed valuation change",
		"address", wallet.Address,
		"delta_usd", utils.FormatMicroUnits(confDelta),
		"valuation_usd", utils.FormatMicroUnits(confValuation))

	return &entity.ChangeRecord{
		Address:   wallet.Address,
		Label:     state.Label,
		User:      state.User,
		Email:     state.Email,
		Delta:     confDelta,
		Valuation: confValuation,
		Details:   detailLines(confSnapshots),
	}
}

// Commit advances the wallet's baseline to the confirmed valuation. Called by
// the aggregator only for wallets whose change was successfully delivered.
func (t *WalletTracker) Commit(address string, confirmed *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.states[address]; ok {
		state.LastValuation = confirmed
	}
}

// State returns a copy of the wallet's tracking state and whether it exists.
func (t *WalletTracker) State(address string) (entity.WalletState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[address]
	if !ok {
		return entity.WalletState{}, false
	}
	return *state, true
}

// ensureState returns the state for the wallet, creating it on first
// observation. Metadata fields take the latest non-empty value from the
// configured wallet entry.
func (t *WalletTracker) ensureState(wallet entity.Wallet) *entity.WalletState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[wallet.Address]
	if !ok {
		state = &entity.WalletState{Address: wallet.Address}
		t.states[wallet.Address] = state
	}
	if wallet.Label != "" {
		state.Label = wallet.Label
	}
	if wallet.User != "" {
		state.User = wallet.User
	}
	if wallet.Email != "" {
		state.Email = wallet.Email
	}
	return state
}

// detailLines renders one human-readable line per network snapshot.
func detailLines(snapshots []entity.NetworkSnapshot) []string {
	lines := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Err != nil {
			lines = append(lines, fmt.Sprintf("%s: unavailable (%v)", snap.NetworkName, snap.Err))
			continue
		}

		parts := []string{fmt.Sprintf("%s %s", snap.NativeSymbol, utils.FormatBigInt(snap.Native, snap.NativeDecimals))}

		symbols := make([]string, 0, len(snap.Tokens))
		for symbol := range snap.Tokens {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			reading := snap.Tokens[symbol]
			if reading.Err != nil {
				parts = append(parts, fmt.Sprintf("%s read failed", symbol))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s", symbol, utils.FormatBigInt(reading.Raw, reading.Decimals)))
		}

		lines = append(lines, fmt.Sprintf("%s: %s (via %s)", snap.NetworkName, strings.Join(parts, ", "), snap.EndpointURL))
	}
	return lines
}
