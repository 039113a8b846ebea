package entity

// Wallet is a single watched address with optional owner metadata.
type Wallet struct {
	Address string `json:"address" yaml:"address"` // canonical (EIP-55) form
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	User    string `json:"user,omitempty" yaml:"user,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}
