package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
)

type staticWalletProvider struct {
	wallets []entity.Wallet
	err     error
}

func (p *staticWalletProvider) GetWallets() ([]entity.Wallet, error) {
	return p.wallets, p.err
}

// slowSnapshotter sleeps per call and tracks peak concurrency.
type slowSnapshotter struct {
	delay time.Duration

	mu      sync.Mutex
	active  int
	maxSeen int
	calls   atomic.Int64
}

func (s *slowSnapshotter) Snapshot(_ context.Context, _ string) []entity.NetworkSnapshot {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(s.delay)
	s.calls.Add(1)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return snapsWorth(1_000_000)
}

func makeWallets(n int) []entity.Wallet {
	wallets := make([]entity.Wallet, n)
	for i := range wallets {
		wallets[i] = entity.Wallet{Address: fmt.Sprintf("0x%040x", i+1)}
	}
	return wallets
}

func newTestWatcher(snap port.Snapshotter, wallets []entity.Wallet, maxConcurrent int) *WatcherService {
	tracker := NewWalletTracker(snap, ThresholdMicroUnits(1.0), false, noopLogger{})
	agg := NewNotificationAggregator(&recordingNotifier{}, tracker, "default@example.com", noopLogger{})
	return NewWatcherService(
		&staticWalletProvider{wallets: wallets},
		tracker,
		agg,
		time.Hour, // irrelevant for direct RunCycle calls
		maxConcurrent,
		noopLogger{},
	)
}

func TestRunCycleRespectsConcurrencyLimit(t *testing.T) {
	const (
		walletCount = 10
		limit       = 2
		delay       = 20 * time.Millisecond
	)

	snap := &slowSnapshotter{delay: delay}
	watcher := newTestWatcher(snap, makeWallets(walletCount), limit)

	watcher.walletsMu.Lock()
	watcher.wallets = makeWallets(walletCount)
	watcher.walletsMu.Unlock()

	start := time.Now()
	watcher.RunCycle(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, int64(walletCount), snap.calls.Load())
	assert.LessOrEqual(t, snap.maxSeen, limit)
	// 10 wallets at concurrency 2 need at least 5 sequential batches.
	assert.GreaterOrEqual(t, elapsed, time.Duration(walletCount/limit)*delay)
	assert.Equal(t, uint64(1), watcher.CycleCount())
	assert.Greater(t, watcher.LastCycleDuration(), time.Duration(0))
}

func TestRunCycleSurvivesPanickingWallet(t *testing.T) {
	snap := &panickingSnapshotter{panicOn: "0x0000000000000000000000000000000000000002"}
	wallets := makeWallets(3)
	watcher := newTestWatcher(snap, wallets, 4)

	watcher.walletsMu.Lock()
	watcher.wallets = wallets
	watcher.walletsMu.Unlock()

	// Must not propagate the panic; the other wallets still get evaluated.
	watcher.RunCycle(context.Background())
	assert.Equal(t, int64(2), snap.ok.Load())
}

type panickingSnapshotter struct {
	panicOn string
	ok      atomic.Int64
}

func (s *panickingSnapshotter) Snapshot(_ context.Context, walletAddress string) []entity.NetworkSnapshot {
	if walletAddress == s.panicOn {
		panic("boom")
	}
	s.ok.Add(1)
	return snapsWorth(1_000_000)
}

func TestRunFailsOnWalletLoadError(t *testing.T) {
	tracker := NewWalletTracker(&scriptedSnapshotter{script: [][]entity.NetworkSnapshot{snapsWorth(0)}}, ThresholdMicroUnits(1.0), false, noopLogger{})
	agg := NewNotificationAggregator(&recordingNotifier{}, tracker, "", noopLogger{})
	watcher := NewWatcherService(
		&staticWalletProvider{err: errors.New("open data/wallets.txt: no such file")},
		tracker, agg, time.Hour, 1, noopLogger{},
	)

	err := watcher.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load wallets")
}

func TestRunFailsOnEmptyWalletList(t *testing.T) {
	tracker := NewWalletTracker(&scriptedSnapshotter{script: [][]entity.NetworkSnapshot{snapsWorth(0)}}, ThresholdMicroUnits(1.0), false, noopLogger{})
	agg := NewNotificationAggregator(&recordingNotifier{}, tracker, "", noopLogger{})
	watcher := NewWatcherService(&staticWalletProvider{}, tracker, agg, time.Hour, 1, noopLogger{})

	err := watcher.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid wallets")
}

func TestStartStopToggleRunning(t *testing.T) {
	watcher := newTestWatcher(&scriptedSnapshotter{script: [][]entity.NetworkSnapshot{snapsWorth(0)}}, makeWallets(1), 1)

	assert.False(t, watcher.Running())
	watcher.Start()
	assert.True(t, watcher.Running())
	watcher.Stop()
	assert.False(t, watcher.Running())
}

func TestWalletsReturnsCopy(t *testing.T) {
	wallets := makeWallets(2)
	watcher := newTestWatcher(&scriptedSnapshotter{script: [][]entity.NetworkSnapshot{snapsWorth(0)}}, wallets, 1)

	watcher.walletsMu.Lock()
	watcher.wallets = wallets
	watcher.walletsMu.Unlock()

	got := watcher.Wallets()
	require.Len(t, got, 2)
	got[0].Address = "mutated"
	assert.NotEqual(t, "mutated", watcher.Wallets()[0].Address)
}
