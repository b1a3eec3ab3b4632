package pool

import (
	"math/big"
	"testing"
)

func TestPriceFromSqrtX96(t *testing.T) {
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	cases := []struct {
		sqrt *big.Int
		want string
	}{
		{q96, "1"},
		{new(big.Int).Lsh(q96, 1), "4"},
		{new(big.Int).Rsh(q96, 1), "0.25"},
		{big.NewInt(0), "0"},
		{nil, "0"},
	}
	for _, tc := range cases {
		if got := PriceFromSqrtX96(tc.sqrt); got != tc.want {
			t.Fatalf("price(%v) = %s, want %s", tc.sqrt, got, tc.want)
		}
	}
}

// Tiny and huge prices keep their significant digits.
func TestPriceFromSqrtX96Precision(t *testing.T) {
	tolerance := big.NewRat(1, 100000000)
	q192 := new(big.Int).Lsh(big.NewInt(1), 192)

	for _, shift := range []uint{1, 20, 48, 120, 159} {
		sqrt := new(big.Int).Lsh(big.NewInt(3), shift)
		squared := new(big.Int).Mul(sqrt, sqrt)
		exact := new(big.Rat).SetFrac(squared, q192)

		got, ok := new(big.Rat).SetString(PriceFromSqrtX96(sqrt))
		if !ok {
			t.Fatalf("unparseable price for shift %d", shift)
		}
		diff := new(big.Rat).Sub(got, exact)
		rel := new(big.Rat).Quo(diff.Abs(diff), exact)
		if rel.Cmp(tolerance) > 0 {
			t.Fatalf("shift %d: relative error %s", shift, rel.FloatString(20))
		}
	}
}

func TestAdjustPrice(t *testing.T) {
	got, err := AdjustPrice("0.0000000000004", 18, 6)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != "0.4" {
		t.Fatalf("adjusted price = %s", got)
	}
	if _, err := AdjustPrice("nope", 18, 6); err == nil {
		t.Fatalf("expected parse error")
	}
}
