package entity

import "math/big"

// TokenReading is the result of reading one token balance on one network.
// Either Raw/Decimals are set or Err is set; a reading is immutable once produced.
type TokenReading struct {
	Symbol   string
	Raw      *big.Int
	Decimals uint8
	Err      error
}

// NetworkSnapshot captures one wallet's balances on one network during a single
// sampling pass. Err is a network-level marker (endpoint unreachable, native
// read failed) and is mutually exclusive with the success fields.
type NetworkSnapshot struct {
	NetworkName    string
	Identifier     string
	ChainID        uint64
	EndpointURL    string
	NativeSymbol   string
	NativeDecimals uint8
	Native         *big.Int
	Tokens         map[string]TokenReading
	Err            error
}
