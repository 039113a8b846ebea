package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
	"balance_watcher/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/ethclient"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ErrNoLiveEndpoint is returned when every candidate endpoint for a network is unreachable.
var ErrNoLiveEndpoint = errors.New("no live RPC endpoint")

// cachedEndpoint is the currently trusted endpoint for one chain.
type cachedEndpoint struct {
	client *ethclient.Client
	url    string
}

// EndpointProvider implements port.BlockchainClientProvider. It keeps one
// trusted endpoint per chain id, probes it cheaply on each Acquire, and fails
// over through the candidate list when the probe fails. The cache is an
// overwrite-on-refresh store: concurrent refreshes of the same chain are
// benign, last write wins.
type EndpointProvider struct {
	mu    sync.Mutex
	cache map[uint64]*cachedEndpoint

	overrides      map[string]string // network identifier -> preferred URL
	probeTimeout   time.Duration
	dialTimeout    time.Duration
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	metaCache      *gocache.Cache
	logger         port.Logger
}

// NewEndpointProvider creates a new EndpointProvider from configuration.
func NewEndpointProvider(cfg *configloader.Config, log port.Logger) *EndpointProvider {
	return &EndpointProvider{
		cache:          make(map[uint64]*cachedEndpoint),
		overrides:      cfg.Performance.RPCOverrides,
		probeTimeout:   time.Duration(cfg.Performance.ProbeTimeoutSeconds) * time.Second,
		dialTimeout:    time.Duration(cfg.Performance.DialTimeoutSeconds) * time.Second,
		rpcCallTimeout: time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
		limiter:        rate.NewLimiter(rate.Limit(cfg.Performance.RPCRatePerSecond), 1),
		metaCache:      gocache.New(gocache.NoExpiration, gocache.NoExpiration),
		logger:         log,
	}
}

// Acquire returns a client backed by a live endpoint for the given network.
// A cached endpoint is probed with the short timeout and returned unchanged on
// success, which avoids re-handshaking on every wallet. On probe failure, or
// when nothing is cached, candidates are walked in order (configured override
// first) under the longer timeout; the first live one replaces the cache entry.
func (p *EndpointProvider) Acquire(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	entry := p.cache[netDef.ChainID]
	p.mu.Unlock()

	if entry != nil {
		if err := p.probe(ctx, entry.client, p.probeTimeout); err == nil {
			return newEVMClient(entry.client, netDef, entry.url, p.rpcCallTimeout, p.metaCache), nil
		}
		p.logger.Warn("Cached endpoint failed liveness probe, selecting a new one",
			"network", netDef.Name, "url", entry.url)
		entry.client.Close()
	}

	var lastErr error
	for _, url := range p.candidates(netDef) {
		client, err := p.dialAndProbe(ctx, url)
		if err != nil {
			p.logger.Debug("Endpoint candidate unreachable", "network", netDef.Name, "url", url, "error", err)
			lastErr = err
			continue
		}

		p.mu.Lock()
		p.cache[netDef.ChainID] = &cachedEndpoint{client: client, url: url}
		p.mu.Unlock()

		p.logger.Info("Selected live endpoint", "network", netDef.Name, "url", url)
		return newEVMClient(client, netDef, url, p.rpcCallTimeout, p.metaCache), nil
	}

	return nil, fmt.Errorf("%w for network %s: %v", ErrNoLiveEndpoint, netDef.Name, lastErr)
}

// candidates lists endpoint URLs in selection order: preferred override first,
// then the static list with duplicates removed.
func (p *EndpointProvider) candidates(netDef entity.NetworkDefinition) []string {
	static := netDef.CandidateRPCURLs()
	override := p.overrides[netDef.Identifier]
	if override == "" {
		return static
	}
	urls := make([]string, 0, 1+len(static))
	urls = append(urls, override)
	for _, u := range static {
		if u != override {
			urls = append(urls, u)
		}
	}
	return urls
}

func (p *EndpointProvider) dialAndProbe(ctx context.Context, url string) (*ethclient.Client, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	client, err := ethclient.DialContext(dialCtx, url)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", url, err)
	}

	if err := p.probe(ctx, client, p.dialTimeout); err != nil {
		client.Close()
		return nil, fmt.Errorf("endpoint %s failed probe: %w", url, err)
	}
	return client, nil
}

func (p *EndpointProvider) probe(ctx context.Context, client *ethclient.Client, timeout time.Duration) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := client.BlockNumber(probeCtx)
	return err
}
