package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pushLaunch/internal/allowance"
	"pushLaunch/internal/cache"
	"pushLaunch/internal/chain"
	"pushLaunch/internal/history"
	"pushLaunch/internal/model"
	"pushLaunch/internal/pool"
	"pushLaunch/internal/quote"
	"pushLaunch/internal/swap"
)

func runPool(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.dial(ctx); err != nil {
		return err
	}

	contracts := a.contracts(nil)
	tokenA, err := a.token(ctx, contracts, args[0])
	if err != nil {
		return err
	}
	tokenB, err := a.token(ctx, contracts, args[1])
	if err != nil {
		return err
	}

	resolved, err := pool.NewResolver(contracts, contracts, a.logger).Resolve(ctx, tokenA, tokenB, a.cfg.FeeTier)
	if err != nil {
		return err
	}

	out := struct {
		model.Pool
		// AdjustedPrice is token1 per token0 in user units.
		AdjustedPrice string `json:"adjusted_price,omitempty"`
	}{Pool: resolved}
	if resolved.Exists && resolved.DerivedPrice != nil {
		token0, token1 := tokenA, tokenB
		if resolved.Token0 == tokenB.Address() {
			token0, token1 = tokenB, tokenA
		}
		adjusted, err := pool.AdjustPrice(*resolved.DerivedPrice, token0.Decimals(), token1.Decimals())
		if err != nil {
			return err
		}
		out.AdjustedPrice = adjusted
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.dial(ctx); err != nil {
		return err
	}

	contracts := a.contracts(nil)
	tokenIn, err := a.token(ctx, contracts, args[0])
	if err != nil {
		return err
	}
	tokenOut, err := a.token(ctx, contracts, args[1])
	if err != nil {
		return err
	}

	engine := quote.NewEngine(pool.NewResolver(contracts, contracts, a.logger), contracts, a.cfg.FeeTier, a.logger)
	latest := quote.NewLatest(engine)
	req := quote.Request{AmountIn: args[2], TokenIn: tokenIn, TokenOut: tokenOut}
	if every, _ := cmd.Flags().GetDuration("watch"); every > 0 {
		return watchQuotes(ctx, cmd.OutOrStdout(), a.logger, latest, req, every)
	}
	q, err := latest.Quote(ctx, req)
	if err != nil {
		return err
	}
	if q == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no quote: amount is empty or zero")
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), q)
}

func runSwap(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.dial(ctx); err != nil {
		return err
	}

	wallet, err := chain.NewWallet(a.client, a.cfg.PrivateKey)
	if err != nil {
		return err
	}
	policy, err := allowance.ParsePolicy(a.cfg.ApprovalPolicy)
	if err != nil {
		return err
	}

	contracts := a.contracts(wallet)
	tokenIn, err := a.token(ctx, contracts, args[0])
	if err != nil {
		return err
	}
	tokenOut, err := a.token(ctx, contracts, args[1])
	if err != nil {
		return err
	}

	orchestrator := swap.NewOrchestrator(
		wallet,
		allowance.NewManager(contracts, policy, a.logger),
		contracts,
		swap.WithLogger(a.logger),
		swap.WithDefaultFeeTier(a.cfg.FeeTier),
		swap.WithConfirmTimeout(a.cfg.ConfirmTimeout),
		swap.WithObserver(func(s swap.Status) {
			a.logger.Info("swap state", zap.String("state", s.State.String()), zap.Bool("loading", s.Loading))
		}),
	)

	outcome, err := orchestrator.Execute(ctx, model.SwapRequest{
		AmountIn:        args[2],
		MinAmountOut:    args[3],
		TokenIn:         tokenIn,
		TokenOut:        tokenOut,
		FeeTier:         a.cfg.FeeTier,
		DeadlineMinutes: a.cfg.DeadlineMinutes,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), outcome)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	poolAddr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	if err := a.dial(ctx); err != nil {
		return err
	}
	store, err := a.cacheStore(ctx)
	if err != nil {
		return err
	}

	fetcher, err := history.NewFetcher(
		a.client,
		cache.New[model.SwapRecord](store, a.cfg.CacheNamespace, a.logger),
		history.Options{
			StartBlock: a.cfg.HistoryStartBlock,
			BatchSize:  a.cfg.HistoryBatchSize,
			TTL:        a.cfg.CacheTTL,
		},
		a.logger,
	)
	if err != nil {
		return err
	}

	refresh, _ := cmd.Flags().GetBool("refresh")
	var swaps []model.SwapRecord
	if refresh {
		swaps, err = fetcher.Refresh(ctx, poolAddr)
	} else {
		swaps, err = fetcher.Fetch(ctx, poolAddr)
	}
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := history.ExportJSONL(out, swaps); err != nil {
			return err
		}
		a.logger.Info("swap history exported", zap.String("out", out), zap.Int("swaps", len(swaps)))
		return nil
	}
	return history.WriteJSONL(cmd.OutOrStdout(), swaps)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx, a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.cacheStore(ctx)
	if err != nil {
		return err
	}
	key := cacheKey(args[0])
	cache.New[json.RawMessage](store, a.cfg.CacheNamespace, a.logger).Clear(ctx, key)
	a.logger.Info("cache cleared", zap.String("key", key), zap.String("backend", a.cfg.CacheBackend))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
