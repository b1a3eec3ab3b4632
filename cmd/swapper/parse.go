package main

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"pushLaunch/internal/xerror"
)

// parseAddress converts a hex address argument into common.Address.
func parseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, xerror.InvalidInput.Newf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}
