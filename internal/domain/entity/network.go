package entity

// NetworkDefinition holds the static configuration for a specific blockchain network.
// Definitions are supplied by the network directory and never mutated by the engine.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // stable key, e.g. "ethereum", "bsc"
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	// StableTokens maps a stable-value token symbol (e.g. "USDT") to its
	// contract address on this network. Networks without a deployment of a
	// given token simply omit the entry.
	StableTokens map[string]string `json:"stableTokens,omitempty" yaml:"stableTokens,omitempty"`
}

// CandidateRPCURLs returns the ordered endpoint candidates for this network:
// primary first, then fallbacks, with duplicates removed.
func (nd NetworkDefinition) CandidateRPCURLs() []string {
	seen := make(map[string]struct{}, 1+len(nd.FallbackRPCURLs))
	urls := make([]string, 0, 1+len(nd.FallbackRPCURLs))
	for _, u := range append([]string{nd.PrimaryRPCURL}, nd.FallbackRPCURLs...) {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
