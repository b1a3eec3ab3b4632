package xerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Resolution.Wrap(cause, "read slot0")

	if err.Error() != "read slot0: dial tcp: connection refused" {
		t.Fatalf("message mismatch: %s", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost")
	}
	if KindOf(err) != Resolution {
		t.Fatalf("kind mismatch: %s", KindOf(err))
	}
}

func TestEmptyMessageIsVerbatim(t *testing.T) {
	cause := errors.New("execution reverted: Too little received")
	err := SwapExecution.Wrap(cause, "")
	if err.Error() != cause.Error() {
		t.Fatalf("expected verbatim message, got %q", err)
	}
}

func TestSentinelMatchesKind(t *testing.T) {
	err := fmt.Errorf("quote: %w", NoLiquidity.New("no pool for pair"))
	if !errors.Is(err, NoLiquidity.Sentinel()) {
		t.Fatalf("expected no-liquidity match")
	}
	if errors.Is(err, Resolution.Sentinel()) {
		t.Fatalf("unexpected resolution match")
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Fatalf("plain error should be unknown")
	}
	if Allowance.Wrap(nil, "x") != nil {
		t.Fatalf("wrap of nil should be nil")
	}
}
