package definition

import (
	"strings"

	"balance_watcher/internal/app/port"
	"balance_watcher/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions. Activation is driven
// by the configured tracked-network identifiers; an empty filter activates all
// known networks.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[string]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://eth.llamarpc.com"},
		BlockExplorerURL: "https://etherscan.io",
		StableTokens: map[string]string{
			"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		},
	}
	BSC = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "bsc",
		NativeSymbol:     "BNB",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
		StableTokens: map[string]string{
			"USDT": "0x55d398326f99059fF775485246999027B3197955",
			"USDC": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
		},
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		NativeSymbol:     "POL",
		Decimals:         18,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
		StableTokens: map[string]string{
			"USDT": "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
			"USDC": "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
		},
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
		StableTokens: map[string]string{
			"USDT": "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
			"USDC": "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		},
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://op-pokt.nodies.app",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
		StableTokens: map[string]string{
			"USDT": "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58",
			"USDC": "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
		},
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		NativeSymbol:     "AVAX",
		Decimals:         18,
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
		StableTokens: map[string]string{
			"USDT": "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7",
			"USDC": "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
		},
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
		StableTokens: map[string]string{
			"USDT": "0xfde4C96c8593536E31F229EA8f37b2ADa2699bb2",
			"USDC": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		},
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:          100,
		Name:             "Gnosis Chain",
		Identifier:       "gnosis",
		NativeSymbol:     "xDAI",
		Decimals:         18,
		PrimaryRPCURL:    "https://0xrpc.io/gno",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/gnosis", "https://gnosis.publicnode.com"},
		BlockExplorerURL: "https://gnosisscan.io",
		StableTokens: map[string]string{
			"USDT": "0x4ECaBa5870353805a9F068101A40E0f32ed605C6",
			"USDC": "0xDDAfbb505ad214D7b80b1f830fcCc89B60fb7A83",
		},
	}
	Fantom = entity.NetworkDefinition{
		ChainID:          250,
		Name:             "Fantom Opera",
		Identifier:       "fantom",
		NativeSymbol:     "FTM",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/ftm",
		FallbackRPCURLs:  []string{"https://fantom.publicnode.com", "https://rpc.ankr.com/fantom"},
		BlockExplorerURL: "https://ftmscan.com",
		StableTokens: map[string]string{
			"USDC": "0x04068DA6C83AFCFA0e13ba15A6696662335D5B75",
		},
	}
	Celo = entity.NetworkDefinition{
		ChainID:          42220,
		Name:             "Celo Mainnet",
		Identifier:       "celo",
		NativeSymbol:     "CELO",
		Decimals:         18,
		PrimaryRPCURL:    "https://forno.celo.org",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/celo"},
		BlockExplorerURL: "https://celoscan.io",
		StableTokens: map[string]string{
			"USDT": "0x48065fbBE25f71C9282ddf5e1cD6D6A887483D5e",
			"USDC": "0xcebA9300f2b948710d2653dD7B07f33A8B32118C",
		},
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier:  Ethereum,
	BSC.Identifier:       BSC,
	Polygon.Identifier:   Polygon,
	Arbitrum.Identifier:  Arbitrum,
	Optimism.Identifier:  Optimism,
	Avalanche.Identifier: Avalanche,
	Base.Identifier:      Base,
	Gnosis.Identifier:    Gnosis,
	Fantom.Identifier:    Fantom,
	Celo.Identifier:      Celo,
}

// NewNetworkDefinitionProvider creates a provider activating the networks named
// in trackedIdentifiers. An empty list activates every known network. Unknown
// identifiers are skipped with a warning.
func NewNetworkDefinitionProvider(log port.Logger, trackedIdentifiers []string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    allKnownDefinitions,
		activeNetworkDefs: make([]entity.NetworkDefinition, 0, len(allKnownDefinitions)),
	}

	if len(trackedIdentifiers) == 0 {
		for _, def := range orderedIdentifiers {
			p.activeNetworkDefs = append(p.activeNetworkDefs, allKnownDefinitions[def])
		}
		p.logger.Info("No network filter configured, all known networks active", "count", len(p.activeNetworkDefs))
		return p
	}

	seen := make(map[string]struct{}, len(trackedIdentifiers))
	for _, raw := range trackedIdentifiers {
		identifier := strings.ToLower(strings.TrimSpace(raw))
		if identifier == "" {
			continue
		}
		if _, dup := seen[identifier]; dup {
			p.logger.Warn("Duplicate network identifier in filter, skipping", "identifier", identifier)
			continue
		}
		def, ok := p.allNetworkDefs[identifier]
		if !ok {
			p.logger.Warn("Unknown network identifier in filter, skipping", "identifier", identifier)
			continue
		}
		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
		seen[identifier] = struct{}{}
	}

	p.logger.Info("NetworkDefinitionProvider initialized", "active_networks", len(p.activeNetworkDefs))
	return p
}

// orderedIdentifiers keeps the all-networks activation deterministic.
var orderedIdentifiers = []string{
	Ethereum.Identifier,
	BSC.Identifier,
	Polygon.Identifier,
	Arbitrum.Identifier,
	Optimism.Identifier,
	Avalanche.Identifier,
	Base.Identifier,
	Gnosis.Identifier,
	Fantom.Identifier,
	Celo.Identifier,
}

// GetAllNetworkDefinitions returns the list of active (tracked) network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier if it's active.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	identifier = strings.ToLower(identifier)
	for _, def := range p.activeNetworkDefs {
		if def.Identifier == identifier {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
