package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotConnected is returned when a signing call is made without a session.
var ErrNotConnected = errors.New("wallet not connected")

// Transactor submits a signed, state-changing call.
type Transactor interface {
	Transact(ctx context.Context, to common.Address, data []byte, value *big.Int) (PendingTx, error)
}

// Reconnector is an optional wallet capability. Callers type-assert it on a disconnected
// wallet; a wallet without it cannot recover its session.
type Reconnector interface {
	TryReconnect(ctx context.Context) error
}

// TxBackend is the subset of Client a Wallet signs and broadcasts through.
type TxBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ReceiptBackend
}

// Wallet signs transactions with a local ECDSA key.
type Wallet struct {
	backend TxBackend
	key     *ecdsa.PrivateKey
	account common.Address

	// nonce allocation and broadcast must not interleave
	mu sync.Mutex
}

// NewWallet loads a hex private key. An empty key yields a disconnected wallet.
func NewWallet(backend TxBackend, hexKey string) (*Wallet, error) {
	w := &Wallet{backend: backend}
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return w, nil
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	w.key = key
	w.account = crypto.PubkeyToAddress(key.PublicKey)
	return w, nil
}

// Connected reports whether the wallet can sign.
func (w *Wallet) Connected() bool {
	return w != nil && w.key != nil
}

// Account returns the signing address.
func (w *Wallet) Account(_ context.Context) (common.Address, error) {
	if !w.Connected() {
		return common.Address{}, ErrNotConnected
	}
	return w.account, nil
}

// Transact builds, signs and broadcasts a legacy transaction calling `to` with data.
func (w *Wallet) Transact(ctx context.Context, to common.Address, data []byte, value *big.Int) (PendingTx, error) {
	if !w.Connected() {
		return nil, ErrNotConnected
	}
	if value == nil {
		value = new(big.Int)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	nonce, err := w.backend.PendingNonceAt(ctx, w.account)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	gasLimit, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.account,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	return NewPendingTx(w.backend, signed), nil
}
