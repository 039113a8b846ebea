package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBigInt(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"nil", nil, 18, "0"},
		{"zero", big.NewInt(0), 18, "0"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"trims trailing zeros", mustBig("1234500000000000000"), 18, "1.2345"},
		{"whole number", mustBig("2000000"), 6, "2"},
		{"fraction only", big.NewInt(5), 1, "0.5"},
		{"negative", mustBig("-1500000000000000000"), 18, "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBigInt(tt.amount, tt.decimals))
		})
	}
}

func TestFormatMicroUnits(t *testing.T) {
	tests := []struct {
		name  string
		micro *big.Int
		want  string
	}{
		{"nil", nil, "0.00"},
		{"zero", big.NewInt(0), "0.00"},
		{"whole", big.NewInt(2_000_000), "2.00"},
		{"cents", big.NewInt(1_150_000), "1.15"},
		{"sub-cent truncated", big.NewInt(1_159_999), "1.15"},
		{"single cent digit", big.NewInt(1_050_000), "1.05"},
		{"negative", big.NewInt(-3_250_000), "-3.25"},
		{"large", mustBig("123456789000000"), "123456789.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMicroUnits(tt.micro))
		})
	}
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big.Int literal: " + s)
	}
	return v
}
