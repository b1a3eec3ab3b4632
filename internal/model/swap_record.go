package model

import "fmt"

// SwapRecord is one decoded pool Swap event kept in the swap history cache.
type SwapRecord struct {
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	LogIndex     uint   `json:"log_index"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
}

// Key identifies the record for de-duplication.
func (r SwapRecord) Key() string {
	return fmt.Sprintf("%d:%s:%d", r.BlockNumber, r.TxHash, r.LogIndex)
}
