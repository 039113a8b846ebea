package port

import (
	"context"
	"math/big"

	"balance_watcher/internal/domain/entity"
)

// BlockchainClient reads balances for one network through one live endpoint.
// Implementations are specific to a chain family (EVM account-model chains for
// now); UTXO chains are out of scope.
type BlockchainClient interface {
	// NativeBalance fetches the native currency balance (e.g. ETH, BNB) for a wallet.
	NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// TokenBalances fetches balances for the given symbol -> contract address
	// mapping. Failures are isolated per token inside the returned readings;
	// the error return covers only total failure of the underlying call.
	TokenBalances(ctx context.Context, walletAddress string, tokens map[string]string) (map[string]entity.TokenReading, error)

	// EndpointURL returns the RPC URL this client is connected to.
	EndpointURL() string

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// BlockchainClientProvider selects and caches a live RPC endpoint per network.
type BlockchainClientProvider interface {
	// Acquire returns a client backed by a live endpoint for the network,
	// probing the cached endpoint first and failing over to the remaining
	// candidates. Returns ErrNoLiveEndpoint-wrapping errors when every
	// candidate is unreachable.
	Acquire(ctx context.Context, netDef entity.NetworkDefinition) (BlockchainClient, error)
}

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all active network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a specific network definition by its
	// identifier, and whether it was found.
	GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool)
}
