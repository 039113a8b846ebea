package entity

import "math/big"

// WalletState is the per-wallet tracking state kept for the lifetime of the
// process. LastValuation == nil means the wallet has not been initialized yet;
// the first observed valuation becomes the baseline without notification.
type WalletState struct {
	Address       string
	Label         string
	User          string
	Email         string
	LastValuation *big.Int // micro-units; nil until first observation
}

// ChangeRecord is an accepted, confirmed valuation change for one wallet in
// one cycle. The wallet's baseline is advanced to Valuation only after the
// record has been successfully delivered.
type ChangeRecord struct {
	Address   string
	Label     string
	User      string
	Email     string
	Delta     *big.Int // micro-units, absolute
	Valuation *big.Int // confirmed valuation, micro-units
	Details   []string // per-network human-readable detail lines
}
