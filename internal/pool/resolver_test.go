package pool

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
	"pushLaunch/internal/xerror"
)

type stubFactory struct {
	pool  common.Address
	err   error
	calls atomic.Int32
}

func (s *stubFactory) GetPool(context.Context, common.Address, common.Address, uint32) (common.Address, error) {
	s.calls.Add(1)
	return s.pool, s.err
}

type stubState struct {
	slot0    dex.Slot0
	token0   common.Address
	token1   common.Address
	slot0Err error
	calls    atomic.Int32
}

func (s *stubState) Slot0(context.Context, common.Address) (dex.Slot0, error) {
	s.calls.Add(1)
	return s.slot0, s.slot0Err
}

func (s *stubState) Token0(context.Context, common.Address) (common.Address, error) {
	s.calls.Add(1)
	return s.token0, nil
}

func (s *stubState) Token1(context.Context, common.Address) (common.Address, error) {
	s.calls.Add(1)
	return s.token1, nil
}

func testTokens(t *testing.T) (model.Token, model.Token) {
	t.Helper()
	a, err := model.NewToken("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "AAA", 18)
	if err != nil {
		t.Fatalf("token a: %v", err)
	}
	b, err := model.NewToken("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "BBB", 6)
	if err != nil {
		t.Fatalf("token b: %v", err)
	}
	return a, b
}

func TestResolveMissingPool(t *testing.T) {
	a, b := testTokens(t)
	factory := &stubFactory{}
	state := &stubState{}

	got, err := NewResolver(factory, state, nil).Resolve(context.Background(), a, b, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Exists || got.Address != (common.Address{}) {
		t.Fatalf("expected missing pool, got %+v", got)
	}
	if got.Token0 != a.Address() || got.Token1 != b.Address() || got.Fee != 3000 {
		t.Fatalf("pair mismatch: %+v", got)
	}
	if got.SqrtPriceX96 != nil || got.Tick != nil || got.DerivedPrice != nil {
		t.Fatalf("optional fields should be absent: %+v", got)
	}
	if n := state.calls.Load(); n != 0 {
		t.Fatalf("expected no state reads, got %d", n)
	}
}

func TestResolveExistingPool(t *testing.T) {
	a, b := testTokens(t)
	poolAddr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	factory := &stubFactory{pool: poolAddr}
	state := &stubState{
		slot0:  dex.Slot0{SqrtPriceX96: new(big.Int).Lsh(q96, 1), Tick: 13863},
		token0: a.Address(),
		token1: b.Address(),
	}

	got, err := NewResolver(factory, state, nil).Resolve(context.Background(), a, b, 500)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Exists || got.Address != poolAddr || got.Fee != 500 {
		t.Fatalf("pool mismatch: %+v", got)
	}
	if got.Tick == nil || *got.Tick != 13863 {
		t.Fatalf("tick mismatch")
	}
	if got.DerivedPrice == nil || *got.DerivedPrice != "4" {
		t.Fatalf("price mismatch: %v", got.DerivedPrice)
	}
	if n := state.calls.Load(); n != 3 {
		t.Fatalf("expected 3 state reads, got %d", n)
	}
}

func TestResolveStateFailureIsNotMissing(t *testing.T) {
	a, b := testTokens(t)
	boom := errors.New("rpc timeout")
	factory := &stubFactory{pool: common.HexToAddress("0x01")}
	state := &stubState{slot0Err: boom}

	_, err := NewResolver(factory, state, nil).Resolve(context.Background(), a, b, 3000)
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause, got %v", err)
	}
	if xerror.KindOf(err) != xerror.Resolution {
		t.Fatalf("expected resolution failure, got %s", xerror.KindOf(err))
	}
}

func TestResolveFactoryFailure(t *testing.T) {
	a, b := testTokens(t)
	factory := &stubFactory{err: errors.New("dial failed")}

	_, err := NewResolver(factory, &stubState{}, nil).Resolve(context.Background(), a, b, 3000)
	if xerror.KindOf(err) != xerror.Resolution {
		t.Fatalf("expected resolution failure, got %v", err)
	}
}
