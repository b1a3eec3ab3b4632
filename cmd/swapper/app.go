package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pushLaunch/internal/cache"
	"pushLaunch/internal/chain"
	"pushLaunch/internal/config"
	"pushLaunch/internal/dex"
	"pushLaunch/internal/history"
	"pushLaunch/internal/model"
)

// app holds what every command builds from config.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *chain.Client
	tokens *dex.TokenMetaCache

	closers []func()
}

// newApp loads config and builds the logger. The returned context is cancelled on SIGINT
// or SIGTERM. Commands that talk to the chain call dial next.
func newApp(cmd *cobra.Command) (context.Context, *app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{cfg: cfg, logger: logger, tokens: dex.NewTokenMetaCache()}
	a.closers = append(a.closers, stop)
	return ctx, a, nil
}

// dial validates the full config and connects the RPC client.
func (a *app) dial(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	client, err := chain.NewClient(ctx, a.cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.client = client
	a.closers = append(a.closers, client.Close)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// contracts binds the periphery to the client. tx may be nil for read-only commands.
func (a *app) contracts(tx chain.Transactor) *dex.Contracts {
	return dex.NewContracts(a.client, tx, dex.Addresses{
		Factory: a.cfg.FactoryAddress(),
		Quoter:  a.cfg.QuoterAddress(),
		Router:  a.cfg.RouterAddress(),
	})
}

// token loads decimals and symbol for a token address.
func (a *app) token(ctx context.Context, contracts *dex.Contracts, input string) (model.Token, error) {
	addr, err := parseAddress(input)
	if err != nil {
		return model.Token{}, err
	}
	meta, err := contracts.CachedTokenMeta(ctx, a.tokens, addr)
	if err != nil {
		return model.Token{}, fmt.Errorf("load token %s: %w", addr.Hex(), err)
	}
	return meta.Token()
}

// cacheStore opens the configured result cache backend.
func (a *app) cacheStore(ctx context.Context) (cache.Store, error) {
	if err := a.cfg.ValidateCache(); err != nil {
		return nil, err
	}
	switch a.cfg.CacheBackend {
	case config.CacheNone:
		return cache.NopStore{}, nil
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheFile:
		return cache.NewFileStore(a.cfg.CacheDir)
	case config.CacheRedis:
		store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		return store, nil
	case config.CachePostgres:
		store, err := cache.NewPostgresStore(ctx, a.cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.CacheBackend)
	}
}

// cacheKey maps a pool address to its history key and passes other keys through.
func cacheKey(input string) string {
	if addr, err := parseAddress(input); err == nil {
		return history.CacheKey(addr)
	}
	return input
}

