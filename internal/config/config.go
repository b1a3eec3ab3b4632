package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pushLaunch/internal/xerror"
)

// Cache backends accepted by cache-backend.
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheFile     = "file"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Uniswap V3 periphery deployments shared by mainnet and most L2s.
const (
	DefaultFactory = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	DefaultQuoter  = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
	DefaultRouter  = "0xE592427A0AEce92De3Edee1F18E0157C05861564"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL  string
	Factory string
	Quoter  string
	Router  string

	FeeTier         uint32
	DeadlineMinutes int
	ApprovalPolicy  string
	ConfirmTimeout  time.Duration
	PrivateKey      string

	CacheBackend   string
	CacheDir       string
	CacheNamespace string
	CacheTTL       time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	PGDSN          string

	HistoryStartBlock uint64
	HistoryBatchSize  uint64

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("factory", DefaultFactory)
	v.SetDefault("quoter", DefaultQuoter)
	v.SetDefault("router", DefaultRouter)
	v.SetDefault("fee-tier", 3000)
	v.SetDefault("deadline-minutes", 20)
	v.SetDefault("approval-policy", "max")
	v.SetDefault("confirm-timeout", 3*time.Minute)
	v.SetDefault("cache-backend", CacheFile)
	v.SetDefault("cache-dir", "./data/cache")
	v.SetDefault("cache-namespace", "swapper")
	v.SetDefault("cache-ttl", 5*time.Minute)
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("history-batch-size", uint64(2000))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		Factory:           v.GetString("factory"),
		Quoter:            v.GetString("quoter"),
		Router:            v.GetString("router"),
		FeeTier:           v.GetUint32("fee-tier"),
		DeadlineMinutes:   v.GetInt("deadline-minutes"),
		ApprovalPolicy:    strings.ToLower(strings.TrimSpace(v.GetString("approval-policy"))),
		ConfirmTimeout:    v.GetDuration("confirm-timeout"),
		PrivateKey:        v.GetString("private-key"),
		CacheBackend:      strings.ToLower(strings.TrimSpace(v.GetString("cache-backend"))),
		CacheDir:          v.GetString("cache-dir"),
		CacheNamespace:    v.GetString("cache-namespace"),
		CacheTTL:          v.GetDuration("cache-ttl"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisPassword:     v.GetString("redis-password"),
		RedisDB:           v.GetInt("redis-db"),
		PGDSN:             v.GetString("pg-dsn"),
		HistoryStartBlock: v.GetUint64("history-start-block"),
		HistoryBatchSize:  v.GetUint64("history-batch-size"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the values every command needs before any network I/O.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return xerror.InvalidInput.New("rpc is required")
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"factory", c.Factory},
		{"quoter", c.Quoter},
		{"router", c.Router},
	} {
		if !common.IsHexAddress(field.value) {
			return xerror.InvalidInput.Newf("%s must be a hex address, got %q", field.name, field.value)
		}
	}
	if c.DeadlineMinutes <= 0 {
		return xerror.InvalidInput.Newf("deadline-minutes must be positive, got %d", c.DeadlineMinutes)
	}
	switch c.ApprovalPolicy {
	case "max", "exact":
	default:
		return xerror.InvalidInput.Newf("approval-policy must be max or exact, got %q", c.ApprovalPolicy)
	}
	return c.ValidateCache()
}

// ValidateCache checks the result cache settings alone.
func (c Config) ValidateCache() error {
	switch c.CacheBackend {
	case CacheNone, CacheMemory, CacheFile:
	case CacheRedis:
		if c.RedisAddr == "" {
			return xerror.InvalidInput.New("redis-addr is required for the redis cache")
		}
	case CachePostgres:
		if c.PGDSN == "" {
			return xerror.InvalidInput.New("pg-dsn is required for the postgres cache")
		}
	default:
		return xerror.InvalidInput.Newf("unknown cache-backend %q", c.CacheBackend)
	}
	return nil
}

// FactoryAddress and the other address accessors assume Validate passed.
func (c Config) FactoryAddress() common.Address { return common.HexToAddress(c.Factory) }
func (c Config) QuoterAddress() common.Address  { return common.HexToAddress(c.Quoter) }
func (c Config) RouterAddress() common.Address  { return common.HexToAddress(c.Router) }
