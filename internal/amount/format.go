package amount

import (
	"math/big"
	"strings"
)

// Format renders a base-unit amount as a decimal with trailing zeros trimmed, keeping at
// least one fractional digit ("2000000" at 6 decimals is "2.0").
func Format(value *big.Int, decimals uint) string {
	if value == nil {
		return "0.0"
	}

	sign := ""
	abs := new(big.Int).Abs(value)
	if value.Sign() < 0 {
		sign = "-"
	}

	digits := abs.String()
	if decimals == 0 {
		return sign + digits + ".0"
	}
	if pad := int(decimals) + 1 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}

	cut := len(digits) - int(decimals)
	frac := strings.TrimRight(digits[cut:], "0")
	if frac == "" {
		frac = "0"
	}
	return sign + digits[:cut] + "." + frac
}
