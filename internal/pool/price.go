package pool

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// minPricePlaces is the fractional precision kept for prices >= 1. Prices < 1 get one extra
// place per leading fractional zero, so the significant digits stay constant.
const minPricePlaces = 18

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// PriceFromSqrtX96 returns (sqrtPriceX96 / 2^96)^2 as a decimal string in raw token1 per
// token0 base units.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int) string {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return "0"
	}

	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	places := minPricePlaces
	if squared.Cmp(q192) < 0 {
		places += len(q192.String()) - len(squared.String())
	}

	num := decimal.NewFromBigInt(squared, 0)
	den := decimal.NewFromBigInt(q192, 0)
	return num.DivRound(den, int32(places)).String()
}

// AdjustPrice rescales a raw price by 10^(decimals0-decimals1) into human units.
func AdjustPrice(raw string, decimals0, decimals1 uint) (string, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}
	return price.Shift(int32(decimals0) - int32(decimals1)).String(), nil
}
