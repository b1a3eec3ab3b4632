package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"pushLaunch/internal/chain"
)

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Addresses locates the periphery contracts.
type Addresses struct {
	Factory common.Address
	Quoter  common.Address
	Router  common.Address
}

// Slot0 holds the price fields read from a pool's slot0.
type Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int32
}

// QuoteParams are the inputs of QuoterV2.quoteExactInputSingle.
type QuoteParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               uint32
	SqrtPriceLimitX96 *big.Int
}

// QuoteResult are its outputs.
type QuoteResult struct {
	AmountOut               *big.Int
	SqrtPriceX96After       *big.Int
	InitializedTicksCrossed uint32
	GasEstimate             *big.Int
}

// ExactInputSingleParams are the inputs of SwapRouter.exactInputSingle.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint32
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Contracts binds the factory, pool, quoter, router and ERC20 calls to a caller and an
// optional transactor. Reads are stateless and safe for concurrent use.
type Contracts struct {
	caller Caller
	tx     chain.Transactor
	addrs  Addresses
}

// NewContracts builds the adapter. tx may be nil for read-only use.
func NewContracts(caller Caller, tx chain.Transactor, addrs Addresses) *Contracts {
	return &Contracts{caller: caller, tx: tx, addrs: addrs}
}

// Router returns the swap router address, the spender approved for swaps.
func (c *Contracts) Router() common.Address {
	return c.addrs.Router
}

// GetPool returns the pool for the pair and fee, or the zero address if none exists.
func (c *Contracts) GetPool(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := c.call(ctx, c.addrs.Factory, factoryABI, "getPool", tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// Slot0 reads the pool's current sqrt price and tick.
func (c *Contracts) Slot0(ctx context.Context, pool common.Address) (Slot0, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return Slot0{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := c.call(ctx, pool, poolABI, "slot0")
	if err != nil {
		return Slot0{}, err
	}
	if len(values) < 2 {
		return Slot0{}, fmt.Errorf("slot0 return size %d", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return Slot0{}, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return Slot0{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return Slot0{}, fmt.Errorf("tick: %w", err)
	}
	return Slot0{SqrtPriceX96: sqrt, Tick: tick}, nil
}

// Token0 reads the pool's first token.
func (c *Contracts) Token0(ctx context.Context, pool common.Address) (common.Address, error) {
	return c.poolAddress(ctx, pool, "token0")
}

// Token1 reads the pool's second token.
func (c *Contracts) Token1(ctx context.Context, pool common.Address) (common.Address, error) {
	return c.poolAddress(ctx, pool, "token1")
}

func (c *Contracts) poolAddress(ctx context.Context, pool common.Address, method string) (common.Address, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := c.call(ctx, pool, poolABI, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	return addr, nil
}

// QuoteExactInputSingle simulates a swap with eth_call; no state is changed.
func (c *Contracts) QuoteExactInputSingle(ctx context.Context, p QuoteParams) (QuoteResult, error) {
	quoterABI, err := QuoterV2ABI()
	if err != nil {
		return QuoteResult{}, fmt.Errorf("parse quoter abi: %w", err)
	}

	params := struct {
		TokenIn           common.Address
		TokenOut          common.Address
		AmountIn          *big.Int
		Fee               *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		AmountIn:          p.AmountIn,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		SqrtPriceLimitX96: orZero(p.SqrtPriceLimitX96),
	}
	values, err := c.call(ctx, c.addrs.Quoter, quoterABI, "quoteExactInputSingle", params)
	if err != nil {
		return QuoteResult{}, err
	}
	if len(values) != 4 {
		return QuoteResult{}, fmt.Errorf("quoteExactInputSingle return size %d", len(values))
	}

	amountOut, err := asBigInt(values[0])
	if err != nil {
		return QuoteResult{}, fmt.Errorf("amount out: %w", err)
	}
	sqrtAfter, err := asBigInt(values[1])
	if err != nil {
		return QuoteResult{}, fmt.Errorf("sqrt price after: %w", err)
	}
	ticks, err := asBigInt(values[2])
	if err != nil {
		return QuoteResult{}, fmt.Errorf("ticks crossed: %w", err)
	}
	gas, err := asBigInt(values[3])
	if err != nil {
		return QuoteResult{}, fmt.Errorf("gas estimate: %w", err)
	}
	return QuoteResult{
		AmountOut:               amountOut,
		SqrtPriceX96After:       sqrtAfter,
		InitializedTicksCrossed: uint32(ticks.Uint64()),
		GasEstimate:             gas,
	}, nil
}

// Allowance reads token.allowance(owner, spender).
func (c *Contracts) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := c.call(ctx, token, erc20, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Approve submits token.approve(spender, amount).
func (c *Contracts) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (chain.PendingTx, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := erc20.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	return c.transact(ctx, token, data)
}

// ExactInputSingle submits a value-less router swap.
func (c *Contracts) ExactInputSingle(ctx context.Context, p ExactInputSingleParams) (chain.PendingTx, error) {
	routerABI, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	data, err := routerABI.Pack("exactInputSingle", packExactInputSingle(p))
	if err != nil {
		return nil, fmt.Errorf("pack exactInputSingle: %w", err)
	}
	return c.transact(ctx, c.addrs.Router, data)
}

type exactInputSingleTuple struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

func packExactInputSingle(p ExactInputSingleParams) exactInputSingleTuple {
	return exactInputSingleTuple{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		Deadline:          orZero(p.Deadline),
		AmountIn:          orZero(p.AmountIn),
		AmountOutMinimum:  orZero(p.AmountOutMinimum),
		SqrtPriceLimitX96: orZero(p.SqrtPriceLimitX96),
	}
}

func (c *Contracts) transact(ctx context.Context, to common.Address, data []byte) (chain.PendingTx, error) {
	if c.tx == nil {
		return nil, chain.ErrNotConnected
	}
	return c.tx.Transact(ctx, to, data, nil)
}

func (c *Contracts) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if c.caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
