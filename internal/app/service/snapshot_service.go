package service

import (
	"context"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
	"balance_watcher/pkg/metrics"
)

// SnapshotService implements port.Snapshotter: it orchestrates chain reads for
// one wallet across all active networks. It never fails as a whole; failures
// are captured in-line per network or per token.
type SnapshotService struct {
	networkProvider port.NetworkDefinitionProvider
	clientProvider  port.BlockchainClientProvider
	logger          port.Logger
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(
	np port.NetworkDefinitionProvider,
	cp port.BlockchainClientProvider,
	logger port.Logger,
) *SnapshotService {
	return &SnapshotService{
		networkProvider: np,
		clientProvider:  cp,
		logger:          logger,
	}
}

// Snapshot reads the wallet's balances on every active network, one snapshot
// per network. Networks are read sequentially; token reads within one network
// go out as a single batched call.
func (s *SnapshotService) Snapshot(ctx context.Context, walletAddress string) []entity.NetworkSnapshot {
	networks := s.networkProvider.GetAllNetworkDefinitions()
	snapshots := make([]entity.NetworkSnapshot, 0, len(networks))
	for _, netDef := range networks {
		snapshots = append(snapshots, s.snapshotNetwork(ctx, netDef, walletAddress))
	}
	return snapshots
}

func (s *SnapshotService) snapshotNetwork(ctx context.Context, netDef entity.NetworkDefinition, walletAddress string) entity.NetworkSnapshot {
	snap := entity.NetworkSnapshot{
		NetworkName:    netDef.Name,
		Identifier:     netDef.Identifier,
		ChainID:        netDef.ChainID,
		NativeSymbol:   netDef.NativeSymbol,
		NativeDecimals: uint8(netDef.Decimals),
	}

	client, err := s.clientProvider.Acquire(ctx, netDef)
	if err != nil {
		s.logger.Warn("No live endpoint for network", "network", netDef.Name, "wallet", walletAddress, "error", err)
		metrics.SnapshotNetworkErrorsTotal.WithLabelValues(netDef.Identifier).Inc()
		snap.Err = err
		return snap
	}
	snap.EndpointURL = client.EndpointURL()

	native, err := client.NativeBalance(ctx, walletAddress)
	if err != nil {
		s.logger.Warn("Native balance read failed", "network", netDef.Name, "wallet", walletAddress, "error", err)
		metrics.SnapshotNetworkErrorsTotal.WithLabelValues(netDef.Identifier).Inc()
		snap.Err = err
		return snap
	}
	snap.Native = native

	tokens, err := client.TokenBalances(ctx, walletAddress, netDef.StableTokens)
	if err != nil {
		// Per-token markers are already set inside the readings; the batch
		// error itself is informational here.
		s.logger.Warn("Token balance batch failed", "network", netDef.Name, "wallet", walletAddress, "error", err)
	}
	snap.Tokens = tokens
	return snap
}
