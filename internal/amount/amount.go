package amount

import (
	"errors"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var (
	// ErrInvalid is returned for input that is not a plain non-negative decimal.
	ErrInvalid = errors.New("invalid decimal amount")
	// ErrOverflow is returned for amounts that do not fit in a uint256 word.
	ErrOverflow = errors.New("amount exceeds uint256")
)

// Normalize converts a user-entered decimal into its canonical form truncated to decimals
// fractional digits. Fractional digits beyond decimals are dropped, never rounded.
func Normalize(input string, decimals uint) (string, error) {
	intPart, fracPart, err := split(input)
	if err != nil {
		return "", err
	}

	if uint(len(fracPart)) > decimals {
		fracPart = fracPart[:decimals]
	}
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// ToBaseUnits scales input by 10^decimals into an exact integer amount.
func ToBaseUnits(input string, decimals uint) (*big.Int, error) {
	normalized, err := Normalize(input, decimals)
	if err != nil {
		return nil, err
	}

	intPart, fracPart, _ := strings.Cut(normalized, ".")
	digits := intPart + fracPart + strings.Repeat("0", int(decimals)-len(fracPart))

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, ErrInvalid
	}
	return value, nil
}

// ToUint256 is ToBaseUnits bounded to 2^256-1, the largest amount a contract call can carry.
func ToUint256(input string, decimals uint) (*big.Int, error) {
	value, err := ToBaseUnits(input, decimals)
	if err != nil {
		return nil, err
	}
	if _, overflow := uint256.FromBig(value); overflow {
		return nil, ErrOverflow
	}
	return value, nil
}

// IsZero reports whether input is a valid decimal whose every digit is zero.
func IsZero(input string) bool {
	intPart, fracPart, err := split(input)
	if err != nil {
		return false
	}
	return intPart == "0" && strings.Trim(fracPart, "0") == ""
}

// split validates the grammar digits* ["." digits*] and returns the integer part with
// leading zeros stripped and the raw fractional digits.
func split(input string) (string, string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", "", ErrInvalid
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if !allDigits(intPart) || !allDigits(fracPart) {
		return "", "", ErrInvalid
	}
	if intPart == "" && fracPart == "" {
		return "", "", ErrInvalid
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	return intPart, fracPart, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
