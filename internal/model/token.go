package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MaxDecimals bounds the fractional digits of a token; 10^77 is the largest power of ten
// below 2^256.
const MaxDecimals = 77

// Token identifies an ERC20 token and its base-unit exponent.
type Token struct {
	address  common.Address
	symbol   string
	decimals uint
}

// NewToken validates the address and decimals.
func NewToken(address string, symbol string, decimals uint) (Token, error) {
	if !common.IsHexAddress(address) {
		return Token{}, fmt.Errorf("invalid token address %q", address)
	}
	if decimals > MaxDecimals {
		return Token{}, fmt.Errorf("token decimals %d exceed %d", decimals, MaxDecimals)
	}
	return Token{
		address:  common.HexToAddress(address),
		symbol:   symbol,
		decimals: decimals,
	}, nil
}

func (t Token) Address() common.Address { return t.address }
func (t Token) Symbol() string          { return t.symbol }
func (t Token) Decimals() uint          { return t.decimals }

// IsZero reports whether the token was never constructed.
func (t Token) IsZero() bool {
	return t.address == (common.Address{})
}

func (t Token) String() string {
	if t.symbol != "" {
		return t.symbol
	}
	return t.address.Hex()
}
