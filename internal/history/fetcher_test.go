package history

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pushLaunch/internal/cache"
	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
)

var poolAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")

type fakeSource struct {
	head    uint64
	logs    []types.Log
	err     error
	queries [][2]uint64
}

func (f *fakeSource) LatestBlockNumber(context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeSource) FilterLogs(_ context.Context, from, to uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	f.queries = append(f.queries, [2]uint64{from, to})
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber < from || log.BlockNumber > to {
			continue
		}
		if len(addresses) > 0 && log.Address != addresses[0] {
			continue
		}
		if len(topic0) > 0 && log.Topics[0] != topic0[0] {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func swapLog(t *testing.T, block uint64, index uint, amount0 int64) types.Log {
	t.Helper()
	poolABI, err := dex.V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := poolABI.Events["Swap"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(amount0), big.NewInt(-amount0), big.NewInt(1<<40), big.NewInt(1000), big.NewInt(10))
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}
	addrTopic := common.BytesToHash(common.LeftPadBytes(common.HexToAddress("0x2222222222222222222222222222222222222222").Bytes(), 32))
	return types.Log{
		Address:     poolAddr,
		Topics:      []common.Hash{event.ID, addrTopic, addrTopic},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Index:       index,
	}
}

func newFetcher(t *testing.T, source LogSource, store cache.Store, opts Options) *Fetcher {
	t.Helper()
	f, err := NewFetcher(source, cache.New[model.SwapRecord](store, "swapper", nil), opts, nil)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	return f
}

func TestFetchSyncsInBatches(t *testing.T) {
	source := &fakeSource{head: 25, logs: []types.Log{
		swapLog(t, 24, 0, 5),
		swapLog(t, 12, 3, 2),
		swapLog(t, 12, 1, 1),
	}}
	f := newFetcher(t, source, cache.NewMemoryStore(), Options{StartBlock: 10, BatchSize: 10, TTL: time.Minute})

	got, err := f.Fetch(context.Background(), poolAddr)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 || got[0].Amount0 != "1" || got[1].Amount0 != "2" || got[2].Amount0 != "5" {
		t.Fatalf("ordering mismatch: %+v", got)
	}
	want := [][2]uint64{{10, 19}, {20, 25}}
	if len(source.queries) != len(want) || source.queries[0] != want[0] || source.queries[1] != want[1] {
		t.Fatalf("queries = %v", source.queries)
	}
}

func TestFetchLogsBatchSpan(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	source := &fakeSource{head: 25}
	f, err := NewFetcher(source, cache.New[model.SwapRecord](cache.NewMemoryStore(), "swapper", nil), Options{StartBlock: 10, BatchSize: 10}, zap.New(core))
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	if _, err := f.Refresh(context.Background(), poolAddr); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	batches := logs.FilterMessage("swap history batch complete").All()
	if len(batches) != 2 {
		t.Fatalf("batch logs = %d", len(batches))
	}
	for i, want := range []uint64{10, 6} {
		if got := batches[i].ContextMap()["blocks"]; got != want {
			t.Fatalf("batch %d blocks = %v, want %d", i, got, want)
		}
	}
}

func TestFetchServesFreshCache(t *testing.T) {
	source := &fakeSource{head: 5, logs: []types.Log{swapLog(t, 3, 0, 1)}}
	f := newFetcher(t, source, cache.NewMemoryStore(), Options{TTL: time.Hour})

	if _, err := f.Fetch(context.Background(), poolAddr); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	calls := len(source.queries)
	got, err := f.Fetch(context.Background(), poolAddr)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(source.queries) != calls || len(got) != 1 {
		t.Fatalf("expected cache hit, queries=%d swaps=%d", len(source.queries)-calls, len(got))
	}
}

func TestRefreshResumesFromWatermark(t *testing.T) {
	store := cache.NewMemoryStore()
	source := &fakeSource{head: 5, logs: []types.Log{swapLog(t, 3, 0, 1)}}
	f := newFetcher(t, source, store, Options{BatchSize: 100})
	if _, err := f.Refresh(context.Background(), poolAddr); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	source.head = 9
	source.logs = append(source.logs, swapLog(t, 8, 0, 4))
	source.queries = nil
	got, err := f.Refresh(context.Background(), poolAddr)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(source.queries) != 1 || source.queries[0] != [2]uint64{6, 9} {
		t.Fatalf("queries = %v", source.queries)
	}
	if len(got) != 2 {
		t.Fatalf("expected merged history, got %+v", got)
	}

	entry, ok := cache.New[model.SwapRecord](store, "swapper", nil).Read(context.Background(), CacheKey(poolAddr))
	if !ok || entry.LatestBlock != 9 || len(entry.Items) != 2 {
		t.Fatalf("cache entry mismatch: %+v", entry)
	}
}

func TestFetchUpToDate(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New[model.SwapRecord](store, "swapper", nil)
	c.Write(context.Background(), CacheKey(poolAddr), cache.Entry[model.SwapRecord]{LatestBlock: 9, UpdatedAt: 1})

	source := &fakeSource{head: 9}
	got, err := newFetcher(t, source, store, Options{TTL: time.Second}).Fetch(context.Background(), poolAddr)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(source.queries) != 0 || got == nil || len(got) != 0 {
		t.Fatalf("unexpected sync: queries=%v got=%v", source.queries, got)
	}
}

func TestFetchPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("query returned more than 10000 results")
	f := newFetcher(t, &fakeSource{head: 5, err: boom}, cache.NewMemoryStore(), Options{})
	if _, err := f.Fetch(context.Background(), poolAddr); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestMergeDedupes(t *testing.T) {
	a := model.SwapRecord{BlockNumber: 2, TxHash: "0x1", LogIndex: 0}
	b := model.SwapRecord{BlockNumber: 1, TxHash: "0x2", LogIndex: 4}
	got := Merge([]model.SwapRecord{a}, []model.SwapRecord{b, a})
	if len(got) != 2 || got[0].Key() != b.Key() || got[1].Key() != a.Key() {
		t.Fatalf("merge mismatch: %+v", got)
	}
}
