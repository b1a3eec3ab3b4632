package amount

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint
		want     string
	}{
		{".5", 2, "0.5"},
		{"007.1", 3, "7.1"},
		{"1.23456", 2, "1.23"},
		{"1.999", 0, "1"},
		{"1.", 4, "1"},
		{"000", 6, "0"},
		{"0.000001", 5, "0.00000"},
		{"  42.10  ", 6, "42.10"},
		{"12", 18, "12"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.in, tc.decimals)
		if err != nil {
			t.Fatalf("normalize(%q, %d): unexpected error: %v", tc.in, tc.decimals, err)
		}
		if got != tc.want {
			t.Fatalf("normalize(%q, %d) = %q, want %q", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.2.3", ".", "-1", "1e5", "1,5", "+2"} {
		if _, err := Normalize(in, 2); !errors.Is(err, ErrInvalid) {
			t.Fatalf("normalize(%q): expected ErrInvalid, got %v", in, err)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{".5", "007.1", "1.23456", "0", "10.000", "99999999999999999999.123456789"}
	for _, in := range inputs {
		for _, d := range []uint{0, 1, 2, 6, 18} {
			once, err := Normalize(in, d)
			if err != nil {
				t.Fatalf("normalize(%q, %d): %v", in, d, err)
			}
			twice, err := Normalize(once, d)
			if err != nil {
				t.Fatalf("normalize(%q, %d): %v", once, d, err)
			}
			if once != twice {
				t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
			}
		}
	}
}

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint
		want     string
	}{
		{"1.23456", 6, "1234560"},
		{"0", 0, "0"},
		{"0", 18, "0"},
		{"1.999999", 2, "199"},
		{".5", 18, "500000000000000000"},
		{"123456789012345678901234567890", 18, "123456789012345678901234567890000000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{"0.0000000000000000019", 18, "1"},
	}

	for _, tc := range cases {
		got, err := ToBaseUnits(tc.in, tc.decimals)
		if err != nil {
			t.Fatalf("toBaseUnits(%q, %d): %v", tc.in, tc.decimals, err)
		}
		if got.String() != tc.want {
			t.Fatalf("toBaseUnits(%q, %d) = %s, want %s", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestToBaseUnitsEmptyIsInvalidNotZero(t *testing.T) {
	got, err := ToBaseUnits("", 6)
	if !errors.Is(err, ErrInvalid) || got != nil {
		t.Fatalf("expected invalid, got %v, %v", got, err)
	}
}

// The result is the greatest n with n / 10^d <= the parsed input.
func TestToBaseUnitsNeverRoundsUp(t *testing.T) {
	inputs := []string{"1.23456789", "0.99999", "5", "3.14159265358979", "0.0005"}
	for _, in := range inputs {
		exact, ok := new(big.Rat).SetString(strings.TrimSpace(in))
		if !ok {
			t.Fatalf("rat parse %q", in)
		}
		for d := uint(0); d <= 10; d++ {
			n, err := ToBaseUnits(in, d)
			if err != nil {
				t.Fatalf("toBaseUnits(%q, %d): %v", in, d, err)
			}
			scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil)
			lower := new(big.Rat).SetFrac(n, scale)
			upper := new(big.Rat).SetFrac(new(big.Int).Add(n, big.NewInt(1)), scale)
			if lower.Cmp(exact) > 0 || upper.Cmp(exact) <= 0 {
				t.Fatalf("toBaseUnits(%q, %d) = %s is not the floor", in, d, n)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		value    *big.Int
		decimals uint
		want     string
	}{
		{big.NewInt(2000000), 6, "2.0"},
		{big.NewInt(1234560), 6, "1.23456"},
		{big.NewInt(1), 6, "0.000001"},
		{big.NewInt(0), 18, "0.0"},
		{big.NewInt(7), 0, "7.0"},
		{big.NewInt(-1500), 3, "-1.5"},
		{nil, 6, "0.0"},
	}

	for _, tc := range cases {
		if got := Format(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("format(%v, %d) = %q, want %q", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestToUint256Bounds(t *testing.T) {
	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	got, err := ToUint256(limit.String(), 0)
	if err != nil {
		t.Fatalf("toUint256(max): %v", err)
	}
	if got.Cmp(limit) != 0 {
		t.Fatalf("toUint256(max) = %s", got)
	}

	above := new(big.Int).Add(limit, big.NewInt(1)).String()
	if _, err := ToUint256(above, 0); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow for 2^256, got %v", err)
	}
	// 1.0 at 78 decimals is 10^78, past 2^256
	if _, err := ToUint256("1", 78); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow after scaling, got %v", err)
	}
	if _, err := ToUint256("abc", 6); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestIsZero(t *testing.T) {
	for _, in := range []string{"0", "000", "0.000", ".0", "0."} {
		if !IsZero(in) {
			t.Fatalf("IsZero(%q) = false", in)
		}
	}
	for _, in := range []string{"", "abc", "0.0000001", "1", "0.01"} {
		if IsZero(in) {
			t.Fatalf("IsZero(%q) = true", in)
		}
	}
}
