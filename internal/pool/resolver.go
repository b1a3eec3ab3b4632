package pool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
	"pushLaunch/internal/xerror"
)

// Factory locates pools.
type Factory interface {
	GetPool(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error)
}

// StateReader reads a pool's live state.
type StateReader interface {
	Slot0(ctx context.Context, pool common.Address) (dex.Slot0, error)
	Token0(ctx context.Context, pool common.Address) (common.Address, error)
	Token1(ctx context.Context, pool common.Address) (common.Address, error)
}

// Resolver finds the pool serving a pair and fee tier. It keeps no state between calls.
type Resolver struct {
	factory Factory
	state   StateReader
	logger  *zap.Logger
}

func NewResolver(factory Factory, state StateReader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{factory: factory, state: state, logger: logger}
}

// Resolve returns the pool for (tokenA, tokenB, fee). A missing pool is reported as
// Exists=false without error; transport failures are Resolution errors.
func (r *Resolver) Resolve(ctx context.Context, tokenA, tokenB model.Token, fee uint32) (model.Pool, error) {
	addr, err := r.factory.GetPool(ctx, tokenA.Address(), tokenB.Address(), fee)
	if err != nil {
		return model.Pool{}, xerror.Resolution.Wrap(err, "get pool")
	}

	if addr == (common.Address{}) {
		r.logger.Debug("pool not found",
			zap.String("token_a", tokenA.Address().Hex()),
			zap.String("token_b", tokenB.Address().Hex()),
			zap.Uint32("fee", fee),
		)
		return model.Pool{
			Token0: tokenA.Address(),
			Token1: tokenB.Address(),
			Fee:    fee,
		}, nil
	}

	var (
		slot0          dex.Slot0
		token0, token1 common.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slot0, err = r.state.Slot0(gctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		token0, err = r.state.Token0(gctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		token1, err = r.state.Token1(gctx, addr)
		return err
	})
	if err := g.Wait(); err != nil {
		r.logger.Warn("pool state read failed", zap.String("pool", addr.Hex()), zap.Error(err))
		return model.Pool{}, xerror.Resolution.Wrap(err, "read pool state")
	}

	tick := slot0.Tick
	price := PriceFromSqrtX96(slot0.SqrtPriceX96)
	return model.Pool{
		Address:      addr,
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		Exists:       true,
		SqrtPriceX96: slot0.SqrtPriceX96,
		Tick:         &tick,
		DerivedPrice: &price,
	}, nil
}
