package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
	"balance_watcher/pkg/metrics"
)

// WatcherService drives the periodic watch loop: one cycle evaluates every
// wallet, aggregates confirmed changes, and dispatches notifications. Cycles
// never overlap; the interval timer is re-armed only after a cycle finishes.
type WatcherService struct {
	walletProvider port.WalletProvider
	tracker        *WalletTracker
	aggregator     *NotificationAggregator
	logger         port.Logger

	sem      *semaphore.Weighted
	interval time.Duration

	running        atomic.Bool
	cycles         atomic.Uint64
	lastCycleNanos atomic.Int64

	walletsMu sync.RWMutex
	wallets   []entity.Wallet
}

// NewWatcherService wires the watch loop together.
func NewWatcherService(
	walletProvider port.WalletProvider,
	tracker *WalletTracker,
	aggregator *NotificationAggregator,
	interval time.Duration,
	maxConcurrentWallets int,
	logger port.Logger,
) *WatcherService {
	return &WatcherService{
		walletProvider: walletProvider,
		tracker:        tracker,
		aggregator:     aggregator,
		logger:         logger,
		sem:            semaphore.NewWeighted(int64(maxConcurrentWallets)),
		interval:       interval,
	}
}

// Run loads the wallet list and blocks in the watch loop until ctx is
// cancelled. An empty wallet list is a startup error, not a silent idle loop.
func (w *WatcherService) Run(ctx context.Context) error {
	wallets, err := w.walletProvider.GetWallets()
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}
	if len(wallets) == 0 {
		return fmt.Errorf("no valid wallets to watch")
	}

	w.walletsMu.Lock()
	w.wallets = wallets
	w.walletsMu.Unlock()

	w.running.Store(true)
	w.logger.Info("Watcher started",
		"wallets", len(wallets), "interval", w.interval.String())

	// Run one cycle immediately, then poll. The timer is re-armed only after
	// each cycle returns, so a slow cycle delays the next one instead of
	// stacking on top of it.
	if w.running.Load() {
		w.RunCycle(ctx)
	}

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.running.Store(false)
			w.logger.Info("Watcher stopping", "cycles_completed", w.cycles.Load())
			return nil
		case <-timer.C:
			if w.running.Load() {
				w.RunCycle(ctx)
			}
			timer.Reset(w.interval)
		}
	}
}

// RunCycle evaluates every wallet with bounded concurrency, then dispatches
// the cycle's confirmed changes as one aggregated pass.
func (w *WatcherService) RunCycle(ctx context.Context) {
	start := time.Now()

	w.walletsMu.RLock()
	wallets := w.wallets
	w.walletsMu.RUnlock()

	var (
		mu      sync.Mutex
		changes []*entity.ChangeRecord
		wg      sync.WaitGroup
	)

	for _, wallet := range wallets {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(wallet entity.Wallet) {
			defer wg.Done()
			defer w.sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Panic during wallet evaluation",
						"address", wallet.Address, "panic", r)
				}
			}()

			if change := w.tracker.EvaluateWallet(ctx, wallet); change != nil {
				mu.Lock()
				changes = append(changes, change)
				mu.Unlock()
			}
		}(wallet)
	}
	wg.Wait()

	w.aggregator.Dispatch(ctx, changes)

	elapsed := time.Since(start)
	w.cycles.Add(1)
	w.lastCycleNanos.Store(int64(elapsed))
	metrics.CyclesTotal.Inc()
	metrics.LastCycleDurationSeconds.Set(elapsed.Seconds())

	w.logger.Info("Cycle completed",
		"cycle", w.cycles.Load(),
		"wallets", len(wallets),
		"changes", len(changes),
		"duration", elapsed.String())
}

// Running reports whether the watch loop is evaluating cycles.
func (w *WatcherService) Running() bool { return w.running.Load() }

// Start resumes cycle evaluation after a Stop. Idempotent.
func (w *WatcherService) Start() { w.running.Store(true) }

// Stop pauses cycle evaluation; the loop keeps ticking but skips cycles.
func (w *WatcherService) Stop() { w.running.Store(false) }

// CycleCount returns the number of completed cycles.
func (w *WatcherService) CycleCount() uint64 { return w.cycles.Load() }

// LastCycleDuration returns how long the most recent cycle took.
func (w *WatcherService) LastCycleDuration() time.Duration {
	return time.Duration(w.lastCycleNanos.Load())
}

// Wallets returns a copy of the watched wallet list.
func (w *WatcherService) Wallets() []entity.Wallet {
	w.walletsMu.RLock()
	defer w.walletsMu.RUnlock()
	out := make([]entity.Wallet, len(w.wallets))
	copy(out, w.wallets)
	return out
}
