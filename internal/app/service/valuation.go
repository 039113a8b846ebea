package service

import (
	"math"
	"math/big"
	"strings"

	"balance_watcher/internal/domain/entity"
)

// microUnitsPerUnit is the fixed-point scale: 1 unit of value = 1,000,000 micro-units.
var microUnitsPerUnit = big.NewInt(1_000_000)

// stableSymbols are the recognized stable-value token symbols. Their unit is
// treated as approximately one unit of fiat value for summation purposes.
var stableSymbols = map[string]struct{}{
	"USDT": {},
	"USDC": {},
}

// IsStableSymbol reports whether the symbol is a recognized stable-value token.
func IsStableSymbol(symbol string) bool {
	_, ok := stableSymbols[strings.ToUpper(symbol)]
	return ok
}

// ToMicroUnits converts a raw integer token amount with the given decimal
// precision into micro-units: raw * 1_000_000 / 10^decimals. Integer arithmetic
// throughout, so repeated cycles cannot accumulate rounding drift. A nil raw
// amount contributes zero.
func ToMicroUnits(raw *big.Int, decimals uint8) *big.Int {
	if raw == nil {
		return big.NewInt(0)
	}
	scaled := new(big.Int).Mul(raw, microUnitsPerUnit)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scaled.Quo(scaled, divisor)
}

// Valuate sums micro-units over the recognized stable-value tokens across all
// non-errored snapshots of one sampling pass. The second return is the
// any-error flag: set when a snapshot carries a network-level error or a
// recognized stable token failed to read, since either deflates the total and
// can fake a delta.
func Valuate(snapshots []entity.NetworkSnapshot) (*big.Int, bool) {
	total := big.NewInt(0)
	anyError := false

	for _, snap := range snapshots {
		if snap.Err != nil {
			anyError = true
			continue
		}
		for symbol, reading := range snap.Tokens {
			if !IsStableSymbol(symbol) {
				continue
			}
			if reading.Err != nil {
				anyError = true
				continue
			}
			total.Add(total, ToMicroUnits(reading.Raw, reading.Decimals))
		}
	}
	return total, anyError
}

// ThresholdMicroUnits converts a USD delta threshold into micro-units.
func ThresholdMicroUnits(usdDelta float64) *big.Int {
	return big.NewInt(int64(math.Round(usdDelta * 1_000_000)))
}
