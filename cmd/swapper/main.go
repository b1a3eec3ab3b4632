package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pushLaunch/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "swapper",
		Short:        "Uniswap V3 style swap quoting and execution",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "RPC URL")
	flags.String("factory", config.DefaultFactory, "V3 factory address")
	flags.String("quoter", config.DefaultQuoter, "QuoterV2 address")
	flags.String("router", config.DefaultRouter, "swap router address")
	flags.Uint32("fee-tier", 3000, "pool fee in hundredths of a bip")
	flags.String("cache-backend", config.CacheFile, "result cache backend (none, memory, file, redis, postgres)")
	flags.String("cache-dir", "./data/cache", "file cache directory")
	flags.String("cache-namespace", "swapper", "result cache key namespace")
	flags.Duration("cache-ttl", 5*time.Minute, "result cache freshness, 0 disables expiry")
	flags.String("redis-addr", "localhost:6379", "redis address")
	flags.String("redis-password", "", "redis password")
	flags.Int("redis-db", 0, "redis database")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPoolCmd(),
		newQuoteCmd(),
		newSwapCmd(),
		newHistoryCmd(),
		newCacheCmd(),
	)
	return root
}

func newPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool <tokenA> <tokenB>",
		Short: "Resolve the pool for a pair and fee tier",
		Args:  cobra.ExactArgs(2),
		RunE:  runPool,
	}
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <tokenIn> <tokenOut> <amountIn>",
		Short: "Simulate an exact-input swap",
		Args:  cobra.ExactArgs(3),
		RunE:  runQuote,
	}
	cmd.Flags().Duration("watch", 0, "re-quote at this interval until interrupted")
	return cmd
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <tokenIn> <tokenOut> <amountIn> <minAmountOut>",
		Short: "Approve if needed, submit an exact-input swap and wait for it",
		Args:  cobra.ExactArgs(4),
		RunE:  runSwap,
	}
	cmd.Flags().String("private-key", "", "hex private key of the signing account")
	cmd.Flags().Int("deadline-minutes", 20, "minutes until the swap expires")
	cmd.Flags().String("approval-policy", "max", "approval amount when allowance is short (max, exact)")
	cmd.Flags().Duration("confirm-timeout", 3*time.Minute, "maximum wait for inclusion")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <pool>",
		Short: "Sync and print a pool's swap history",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	cmd.Flags().Uint64("history-start-block", 0, "first block scanned when nothing is cached")
	cmd.Flags().Uint64("history-batch-size", 2000, "blocks per log query")
	cmd.Flags().Bool("refresh", false, "sync even if the cached history is fresh")
	cmd.Flags().String("out", "", "write the history to a JSONL file instead of stdout")
	return cmd
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear <key>",
		Short: "Remove a cached result; a pool address clears its swap history",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheClear,
	})
	return cacheCmd
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
