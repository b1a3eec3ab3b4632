package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"pushLaunch/internal/model"
)

// SwapDecoder decodes Uniswap V3 style pool Swap logs.
type SwapDecoder struct {
	event abi.Event
}

// NewSwapDecoder builds a decoder from the pool ABI.
func NewSwapDecoder() (*SwapDecoder, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return &SwapDecoder{event: poolABI.Events["Swap"]}, nil
}

// Topic0 returns the Swap event signature hash for log filters.
func (d *SwapDecoder) Topic0() common.Hash {
	return d.event.ID
}

// Decode converts a Swap log into a SwapRecord.
func (d *SwapDecoder) Decode(log types.Log) (model.SwapRecord, error) {
	if len(log.Topics) == 0 || log.Topics[0] != d.event.ID {
		return model.SwapRecord{}, fmt.Errorf("not a swap log")
	}

	indexedArgs := indexedArguments(d.event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.SwapRecord{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.SwapRecord{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := d.event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.SwapRecord{}, fmt.Errorf("unpack swap: %w", err)
	}
	if len(values) != 5 {
		return model.SwapRecord{}, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	ints := make([]string, 4)
	for i := range ints {
		v, err := asBigInt(values[i])
		if err != nil {
			return model.SwapRecord{}, err
		}
		ints[i] = v.String()
	}
	tickInt, err := asBigInt(values[4])
	if err != nil {
		return model.SwapRecord{}, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.SwapRecord{}, err
	}

	return model.SwapRecord{
		BlockNumber:  log.BlockNumber,
		TxHash:       log.TxHash.Hex(),
		LogIndex:     log.Index,
		Sender:       indexed.Sender.Hex(),
		Recipient:    indexed.Recipient.Hex(),
		Amount0:      ints[0],
		Amount1:      ints[1],
		SqrtPriceX96: ints[2],
		Liquidity:    ints[3],
		Tick:         tick,
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
