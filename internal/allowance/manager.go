package allowance

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pushLaunch/internal/chain"
	"pushLaunch/internal/model"
	"pushLaunch/internal/xerror"
)

// Policy selects how much is approved when the current allowance is short.
type Policy int

const (
	// PolicyMax approves 2^256-1 once so later swaps of the token need no approval.
	PolicyMax Policy = iota
	// PolicyExact approves exactly the required amount.
	PolicyExact
)

// ParsePolicy accepts "max" or "exact".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max":
		return PolicyMax, nil
	case "exact":
		return PolicyExact, nil
	default:
		return PolicyMax, fmt.Errorf("unknown approval policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyExact {
		return "exact"
	}
	return "max"
}

// MaxUint256 is the largest approvable amount.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Token is the ERC20 surface the manager needs.
type Token interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (chain.PendingTx, error)
}

// Manager raises a spender's allowance when it does not cover a required amount.
type Manager struct {
	token  Token
	policy Policy
	logger *zap.Logger
}

func NewManager(token Token, policy Policy, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{token: token, policy: policy, logger: logger}
}

// Ensure returns once owner's allowance for spender covers required. No transaction is
// sent when it already does; otherwise an approval is sent and its inclusion awaited.
func (m *Manager) Ensure(ctx context.Context, token model.Token, owner, spender common.Address, required *big.Int) error {
	current, err := m.token.Allowance(ctx, token.Address(), owner, spender)
	if err != nil {
		return xerror.Allowance.Wrap(err, "read allowance")
	}
	if current.Cmp(required) >= 0 {
		m.logger.Debug("allowance sufficient",
			zap.String("token", token.Address().Hex()),
			zap.String("current", current.String()),
			zap.String("required", required.String()),
		)
		return nil
	}

	approveAmount := MaxUint256
	if m.policy == PolicyExact {
		approveAmount = required
	}

	pending, err := m.token.Approve(ctx, token.Address(), spender, approveAmount)
	if err != nil {
		return xerror.Allowance.Wrap(err, "submit approval")
	}
	m.logger.Info("approval submitted",
		zap.String("token", token.Address().Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("policy", m.policy.String()),
		zap.String("tx", pending.Hash().Hex()),
	)

	if _, err := pending.Wait(ctx); err != nil {
		return xerror.Allowance.Wrap(err, "confirm approval")
	}
	m.logger.Info("approval confirmed", zap.String("tx", pending.Hash().Hex()))
	return nil
}
