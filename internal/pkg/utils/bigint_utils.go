package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt converts a raw integer token amount to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(amountFloat, divisor)

	formatted := value.Text('f', int(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if strings.HasPrefix(formatted, ".") {
		formatted = "0" + formatted
	}
	if formatted == "" || formatted == "-" {
		return "0"
	}
	return formatted
}

// FormatMicroUnits renders a micro-unit valuation as a fixed two-decimal
// currency-style string, e.g. 1150000 => "1.15".
func FormatMicroUnits(micro *big.Int) string {
	if micro == nil {
		return "0.00"
	}
	neg := micro.Sign() < 0
	abs := new(big.Int).Abs(micro)
	units := new(big.Int)
	rem := new(big.Int)
	units.QuoRem(abs, big.NewInt(1_000_000), rem)
	// two decimal places, truncated
	cents := new(big.Int).Quo(rem, big.NewInt(10_000))
	s := units.String() + "." + pad2(cents.Int64())
	if neg {
		s = "-" + s
	}
	return s
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + big.NewInt(v).String()
	}
	return big.NewInt(v).String()
}
