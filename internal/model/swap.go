package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SwapRequest carries user-unit amounts; they are converted to base units before use.
type SwapRequest struct {
	AmountIn        string
	MinAmountOut    string
	TokenIn         Token
	TokenOut        Token
	FeeTier         uint32
	DeadlineMinutes int
}

// SwapOutcome describes a confirmed swap transaction.
type SwapOutcome struct {
	TxHash      common.Hash    `json:"tx_hash"`
	Receipt     *types.Receipt `json:"receipt,omitempty"`
	Deadline    uint64         `json:"deadline"`
	BlockNumber uint64         `json:"block_number"`
}
