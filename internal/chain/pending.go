package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PendingTx is a broadcast transaction whose inclusion can be awaited.
type PendingTx interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

// ReceiptBackend polls for receipts.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

type pendingTx struct {
	backend ReceiptBackend
	tx      *types.Transaction
}

// NewPendingTx tracks tx through backend.
func NewPendingTx(backend ReceiptBackend, tx *types.Transaction) PendingTx {
	return &pendingTx{backend: backend, tx: tx}
}

func (p *pendingTx) Hash() common.Hash {
	return p.tx.Hash()
}

// Wait blocks until the transaction is mined or ctx ends. A mined transaction with a failed
// status is returned together with an error.
func (p *pendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s reverted in block %s", p.tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}
