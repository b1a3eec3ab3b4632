package quote

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pushLaunch/internal/amount"
	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
	"pushLaunch/internal/xerror"
)

// DefaultFeeTier is the 0.3% pool.
const DefaultFeeTier uint32 = 3000

// PoolResolver locates the pool that serves a quote.
type PoolResolver interface {
	Resolve(ctx context.Context, tokenA, tokenB model.Token, fee uint32) (model.Pool, error)
}

// Quoter simulates an exact-input swap without changing chain state.
type Quoter interface {
	QuoteExactInputSingle(ctx context.Context, p dex.QuoteParams) (dex.QuoteResult, error)
}

// Request asks for the output of swapping AmountIn of TokenIn. A zero FeeTier selects the
// engine default.
type Request struct {
	AmountIn string
	TokenIn  model.Token
	TokenOut model.Token
	FeeTier  uint32
}

// Engine produces quotes from a pool resolver and a quoter.
type Engine struct {
	pools          PoolResolver
	quoter         Quoter
	defaultFeeTier uint32
	logger         *zap.Logger
}

func NewEngine(pools PoolResolver, quoter Quoter, defaultFeeTier uint32, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultFeeTier == 0 {
		defaultFeeTier = DefaultFeeTier
	}
	return &Engine{
		pools:          pools,
		quoter:         quoter,
		defaultFeeTier: defaultFeeTier,
		logger:         logger,
	}
}

// Quote returns (nil, nil) when no amount has been entered or the amount is zero. A non-zero
// amount below the token's smallest unit is an input failure.
func (e *Engine) Quote(ctx context.Context, req Request) (*model.Quote, error) {
	if strings.TrimSpace(req.AmountIn) == "" {
		return nil, nil
	}

	amountIn, err := amount.ToUint256(req.AmountIn, req.TokenIn.Decimals())
	if err != nil {
		return nil, xerror.InvalidInput.Wrap(err, "amount in")
	}
	if amountIn.Sign() == 0 {
		if amount.IsZero(req.AmountIn) {
			return nil, nil
		}
		return nil, xerror.InvalidInput.Newf("amount in %s is below the smallest unit of %s", strings.TrimSpace(req.AmountIn), req.TokenIn)
	}

	fee := req.FeeTier
	if fee == 0 {
		fee = e.defaultFeeTier
	}

	p, err := e.pools.Resolve(ctx, req.TokenIn, req.TokenOut, fee)
	if err != nil {
		return nil, err
	}
	if !p.Exists {
		return nil, xerror.NoLiquidity.Newf("no pool for %s/%s at fee %d", req.TokenIn, req.TokenOut, fee)
	}

	res, err := e.quoter.QuoteExactInputSingle(ctx, dex.QuoteParams{
		TokenIn:  req.TokenIn.Address(),
		TokenOut: req.TokenOut.Address(),
		AmountIn: amountIn,
		Fee:      fee,
	})
	if err != nil {
		e.logger.Warn("quote failed", zap.String("pool", p.Address.Hex()), zap.Error(err))
		return nil, xerror.Resolution.Wrap(err, "quote exact input")
	}
	if res.AmountOut == nil {
		return nil, xerror.Resolution.Wrap(errors.New("empty amount out"), "quote exact input")
	}

	e.logger.Debug("quote",
		zap.String("pool", p.Address.Hex()),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", res.AmountOut.String()),
	)

	return &model.Quote{
		AmountOut:          res.AmountOut,
		AmountOutFormatted: amount.Format(res.AmountOut, req.TokenOut.Decimals()),
		SqrtPriceX96After:  res.SqrtPriceX96After,
		PriceImpactPercent: PriceImpact(p.SqrtPriceX96, res.SqrtPriceX96After),
	}, nil
}

var hundred = decimal.NewFromInt(100)

// PriceImpact is the percentage move of the pool price caused by the swap, rounded to six
// places. It is zero when either price is unknown.
func PriceImpact(sqrtBefore, sqrtAfter *big.Int) decimal.Decimal {
	if sqrtBefore == nil || sqrtAfter == nil || sqrtBefore.Sign() <= 0 || sqrtAfter.Sign() <= 0 {
		return decimal.Zero
	}
	before := decimal.NewFromBigInt(new(big.Int).Mul(sqrtBefore, sqrtBefore), 0)
	after := decimal.NewFromBigInt(new(big.Int).Mul(sqrtAfter, sqrtAfter), 0)
	return after.Sub(before).Abs().Mul(hundred).DivRound(before, 6)
}
