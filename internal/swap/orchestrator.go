package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"pushLaunch/internal/amount"
	"pushLaunch/internal/chain"
	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
	"pushLaunch/internal/xerror"
)

const (
	// DefaultConfirmTimeout bounds the Confirming step when no timeout is configured.
	DefaultConfirmTimeout = 3 * time.Minute
	// MaxDeadlineMinutes caps how far ahead a swap deadline may be set.
	MaxDeadlineMinutes = 365 * 24 * 60
)

// Wallet is the signing session the orchestrator swaps from. A wallet that also implements
// chain.Reconnector is asked to reconnect once when found disconnected.
type Wallet interface {
	Connected() bool
	Account(ctx context.Context) (common.Address, error)
}

// AllowanceEnsurer raises the router's allowance when needed.
type AllowanceEnsurer interface {
	Ensure(ctx context.Context, token model.Token, owner, spender common.Address, required *big.Int) error
}

// Router submits exact-input swaps.
type Router interface {
	Router() common.Address
	ExactInputSingle(ctx context.Context, p dex.ExactInputSingleParams) (chain.PendingTx, error)
}

// Observer receives every status change in order.
type Observer func(Status)

type Option func(*Orchestrator)

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, obs) }
}

// WithClock replaces time.Now for deadline computation.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithConfirmTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.confirmTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithDefaultFeeTier sets the fee used when a request leaves FeeTier at zero.
func WithDefaultFeeTier(fee uint32) Option {
	return func(o *Orchestrator) { o.defaultFee = fee }
}

// Orchestrator runs one swap attempt at a time through validation, allowance, submission
// and confirmation.
type Orchestrator struct {
	wallet    Wallet
	allowance AllowanceEnsurer
	router    Router

	defaultFee     uint32
	confirmTimeout time.Duration
	now            func() time.Time
	observers      []Observer
	logger         *zap.Logger

	mu      sync.Mutex
	status  Status
	running bool
}

func NewOrchestrator(wallet Wallet, allowance AllowanceEnsurer, router Router, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		wallet:         wallet,
		allowance:      allowance,
		router:         router,
		defaultFee:     3000,
		confirmTimeout: DefaultConfirmTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Status returns a snapshot of the current attempt.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Execute validates req, ensures allowance and submits the swap, returning once the
// transaction is mined. A call made while another is running fails with an input error.
func (o *Orchestrator) Execute(ctx context.Context, req model.SwapRequest) (*model.SwapOutcome, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, xerror.InvalidInput.New("swap already in progress")
	}
	o.running = true
	o.status = Status{State: Idle}
	o.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if !o.Status().State.Terminal() {
				o.fail(fmt.Errorf("swap aborted: %v", r))
			}
			o.release()
			panic(r)
		}
		o.release()
	}()

	o.enter(ValidatingInput, false)
	account, amountIn, minOut, err := o.validate(ctx, req)
	if err != nil {
		return nil, o.fail(err)
	}

	o.enter(EnsuringAllowance, false)
	spender := o.router.Router()
	if err := o.allowance.Ensure(ctx, req.TokenIn, account, spender, amountIn); err != nil {
		if xerror.KindOf(err) == xerror.Unknown {
			err = xerror.Allowance.Wrap(err, "ensure allowance")
		}
		return nil, o.fail(err)
	}

	o.enter(Submitting, true)
	fee := req.FeeTier
	if fee == 0 {
		fee = o.defaultFee
	}
	deadline := uint64(o.now().Unix()) + uint64(req.DeadlineMinutes)*60
	pending, err := o.router.ExactInputSingle(ctx, dex.ExactInputSingleParams{
		TokenIn:          req.TokenIn.Address(),
		TokenOut:         req.TokenOut.Address(),
		Fee:              fee,
		Recipient:        account,
		Deadline:         new(big.Int).SetUint64(deadline),
		AmountIn:         amountIn,
		AmountOutMinimum: minOut,
	})
	if err != nil {
		return nil, o.fail(xerror.SwapExecution.Wrap(err, ""))
	}
	o.logger.Info("swap submitted",
		zap.String("tx", pending.Hash().Hex()),
		zap.String("token_in", req.TokenIn.String()),
		zap.String("token_out", req.TokenOut.String()),
		zap.String("amount_in", amountIn.String()),
		zap.String("min_amount_out", minOut.String()),
		zap.Uint64("deadline", deadline),
	)

	o.enter(Confirming, true)
	receipt, err := o.wait(ctx, pending)
	if err != nil {
		return nil, o.fail(err)
	}

	outcome := &model.SwapOutcome{
		TxHash:   pending.Hash(),
		Receipt:  receipt,
		Deadline: deadline,
	}
	if receipt != nil && receipt.BlockNumber != nil {
		outcome.BlockNumber = receipt.BlockNumber.Uint64()
	}
	o.enter(Confirmed, false)
	o.logger.Info("swap confirmed", zap.String("tx", pending.Hash().Hex()), zap.Uint64("block", outcome.BlockNumber))
	return outcome, nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.status.Loading = false
	o.mu.Unlock()
}

func (o *Orchestrator) validate(ctx context.Context, req model.SwapRequest) (common.Address, *big.Int, *big.Int, error) {
	if o.wallet == nil {
		return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(chain.ErrNotConnected, "")
	}
	if !o.wallet.Connected() {
		if r, ok := o.wallet.(chain.Reconnector); ok {
			if err := r.TryReconnect(ctx); err != nil {
				return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(err, "reconnect wallet")
			}
		}
		if !o.wallet.Connected() {
			return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(chain.ErrNotConnected, "")
		}
	}
	account, err := o.wallet.Account(ctx)
	if err != nil {
		return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(err, "resolve account")
	}
	if account == (common.Address{}) {
		return common.Address{}, nil, nil, xerror.InvalidInput.New("no account")
	}

	if req.TokenIn.IsZero() || req.TokenOut.IsZero() {
		return common.Address{}, nil, nil, xerror.InvalidInput.New("token in and token out are required")
	}
	if req.TokenIn.Address() == req.TokenOut.Address() {
		return common.Address{}, nil, nil, xerror.InvalidInput.New("token in and token out must differ")
	}
	if req.DeadlineMinutes <= 0 || req.DeadlineMinutes > MaxDeadlineMinutes {
		return common.Address{}, nil, nil, xerror.InvalidInput.Newf("deadline minutes must be in 1..%d, got %d", MaxDeadlineMinutes, req.DeadlineMinutes)
	}

	amountIn, err := amount.ToUint256(req.AmountIn, req.TokenIn.Decimals())
	if err != nil {
		return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(err, "amount in")
	}
	if amountIn.Sign() == 0 {
		return common.Address{}, nil, nil, xerror.InvalidInput.New("amount in must be positive")
	}
	minOut, err := amount.ToUint256(req.MinAmountOut, req.TokenOut.Decimals())
	if err != nil {
		return common.Address{}, nil, nil, xerror.InvalidInput.Wrap(err, "min amount out")
	}
	return account, amountIn, minOut, nil
}

func (o *Orchestrator) wait(ctx context.Context, pending chain.PendingTx) (*types.Receipt, error) {
	waitCtx := ctx
	if o.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, o.confirmTimeout)
		defer cancel()
	}
	receipt, err := pending.Wait(waitCtx)
	if err == nil {
		return receipt, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, xerror.SwapExecution.Wrap(err, fmt.Sprintf("confirmation of %s timed out after %s", pending.Hash().Hex(), o.confirmTimeout))
	}
	return nil, xerror.SwapExecution.Wrap(err, "")
}

func (o *Orchestrator) enter(state State, loading bool) {
	o.mu.Lock()
	o.status.State = state
	o.status.Loading = loading
	snapshot := o.status
	o.mu.Unlock()
	o.notify(snapshot)
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.status = Status{State: Failed, Err: err.Error()}
	snapshot := o.status
	o.mu.Unlock()
	o.logger.Warn("swap failed", zap.String("kind", xerror.KindOf(err).String()), zap.Error(err))
	o.notify(snapshot)
	return err
}

func (o *Orchestrator) notify(s Status) {
	for _, obs := range o.observers {
		obs(s)
	}
}
