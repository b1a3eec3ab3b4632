package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Quote is the simulated result of an exact-input swap.
type Quote struct {
	AmountOut          *big.Int        `json:"amount_out"`
	AmountOutFormatted string          `json:"amount_out_formatted"`
	SqrtPriceX96After  *big.Int        `json:"sqrt_price_x96_after"`
	PriceImpactPercent decimal.Decimal `json:"price_impact_percent"`
}
