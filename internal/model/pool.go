package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a point-in-time view of a V3 pool for a token pair and fee tier. When Exists is
// false the optional state fields are nil and Address is the zero address.
type Pool struct {
	Address      common.Address `json:"address"`
	Token0       common.Address `json:"token0"`
	Token1       common.Address `json:"token1"`
	Fee          uint32         `json:"fee"`
	Exists       bool           `json:"exists"`
	SqrtPriceX96 *big.Int       `json:"sqrt_price_x96,omitempty"`
	Tick         *int32         `json:"tick,omitempty"`
	DerivedPrice *string        `json:"derived_price,omitempty"`
}
