package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"pushLaunch/internal/cache"
	"pushLaunch/internal/dex"
	"pushLaunch/internal/model"
)

// DefaultBatchSize bounds the block span of one eth_getLogs request.
const DefaultBatchSize uint64 = 2000

// LogSource queries logs and the chain head.
type LogSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// Options tune a Fetcher.
type Options struct {
	// StartBlock is the first block scanned when nothing is cached.
	StartBlock uint64
	BatchSize  uint64
	// TTL is how long a cached history is served without checking for new blocks.
	// A non-positive TTL serves the cache until it is cleared.
	TTL time.Duration
}

// Fetcher maintains an incrementally synced swap history per pool on top of the result cache.
type Fetcher struct {
	source  LogSource
	decoder *dex.SwapDecoder
	cache   *cache.Cache[model.SwapRecord]
	opts    Options
	logger  *zap.Logger
}

func NewFetcher(source LogSource, c *cache.Cache[model.SwapRecord], opts Options, logger *zap.Logger) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("log source is nil")
	}
	if c == nil {
		c = cache.New[model.SwapRecord](nil, "", logger)
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := dex.NewSwapDecoder()
	if err != nil {
		return nil, err
	}
	return &Fetcher{source: source, decoder: decoder, cache: c, opts: opts, logger: logger}, nil
}

// CacheKey is the result cache key holding pool's history.
func CacheKey(pool common.Address) string {
	return "swaps:" + strings.ToLower(pool.Hex())
}

// Fetch returns pool's swaps ordered by block and log index, serving the cache while it is
// fresh and otherwise syncing from the cached watermark to the chain head.
func (f *Fetcher) Fetch(ctx context.Context, pool common.Address) ([]model.SwapRecord, error) {
	entry, ok := f.cache.Read(ctx, CacheKey(pool))
	if ok && !f.cache.IsStale(entry.Updated(), f.opts.TTL) {
		f.logger.Debug("swap history cache hit", zap.String("pool", pool.Hex()), zap.Int("swaps", len(entry.Items)))
		return entry.Items, nil
	}
	return f.sync(ctx, pool, entry, ok)
}

// Refresh syncs pool's history regardless of cache freshness.
func (f *Fetcher) Refresh(ctx context.Context, pool common.Address) ([]model.SwapRecord, error) {
	entry, ok := f.cache.Read(ctx, CacheKey(pool))
	return f.sync(ctx, pool, entry, ok)
}

func (f *Fetcher) sync(ctx context.Context, pool common.Address, entry cache.Entry[model.SwapRecord], cached bool) ([]model.SwapRecord, error) {
	key := CacheKey(pool)
	from := f.opts.StartBlock
	if cached && entry.LatestBlock >= from {
		from = entry.LatestBlock + 1
	}
	if !cached || entry.Items == nil {
		entry.Items = []model.SwapRecord{}
	}

	head, err := f.source.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}
	if from > head {
		f.logger.Info("swap history up to date", zap.String("pool", pool.Hex()), zap.Uint64("head", head))
		entry.UpdatedAt = 0
		f.cache.Write(ctx, key, entry)
		return entry.Items, nil
	}

	ranges, err := SplitRange(from, head, f.opts.BatchSize)
	if err != nil {
		return nil, err
	}

	items := entry.Items
	topic0 := []common.Hash{f.decoder.Topic0()}
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logs, err := f.source.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{pool}, topic0)
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		batch := make([]model.SwapRecord, 0, len(logs))
		for _, log := range logs {
			if log.Removed {
				continue
			}
			record, err := f.decoder.Decode(log)
			if err != nil {
				f.logger.Warn("skip undecodable swap log", zap.String("tx", log.TxHash.Hex()), zap.Uint("log_index", log.Index), zap.Error(err))
				continue
			}
			batch = append(batch, record)
		}
		items = Merge(items, batch)

		f.cache.Write(ctx, key, cache.Entry[model.SwapRecord]{Items: items, LatestBlock: blockRange.To})
		f.logger.Info("swap history batch complete",
			zap.String("pool", pool.Hex()),
			zap.Int("swaps", len(batch)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Uint64("blocks", blockRange.Len()),
		)
	}

	return items, nil
}

// Merge combines cached and fetched records, dropping duplicates and ordering by block then
// log index.
func Merge(existing, fetched []model.SwapRecord) []model.SwapRecord {
	seen := make(map[string]struct{}, len(existing)+len(fetched))
	out := make([]model.SwapRecord, 0, len(existing)+len(fetched))
	for _, group := range [][]model.SwapRecord{existing, fetched} {
		for _, record := range group {
			id := record.Key()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].LogIndex < out[j].LogIndex
	})
	return out
}
