package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benz9527/xtree/lib/verify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix, e.g. XTREE_STRATEGY.
const envPrefix = "XTREE"

// envKeySeparator replaces the nested key separator, e.g. log.level
// is read from XTREE_LOG_LEVEL.
const envKeySeparator = "_"

var errInvalidConfig = errors.New("[xtree] invalid config")

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	File    string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type VerifyConfig struct {
	Rounds  int    `mapstructure:"rounds"`
	Keys    int    `mapstructure:"keys"`
	Space   int    `mapstructure:"space"`
	Workers int    `mapstructure:"workers"`
	Seed    uint64 `mapstructure:"seed"`
}

type Config struct {
	Strategy string        `mapstructure:"strategy"`
	Log      LogConfig     `mapstructure:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Verify   VerifyConfig  `mapstructure:"verify"`
}

func (cfg *Config) Validate() error {
	switch verify.Strategy(cfg.Strategy) {
	case verify.StrategyAVL, verify.StrategyRBTree:
	default:
		return fmt.Errorf("%w: unknown strategy %q, expected avl or rbtree", errInvalidConfig, cfg.Strategy)
	}
	switch strings.ToLower(cfg.Log.Encoder) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log encoder %q, expected json or text", errInvalidConfig, cfg.Log.Encoder)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Interval <= 0 {
		return fmt.Errorf("%w: metrics interval %s", errInvalidConfig, cfg.Metrics.Interval)
	}
	return nil
}

func (cfg *Config) verifyConfig() verify.Config {
	return verify.Config{
		Strategy:     verify.Strategy(cfg.Strategy),
		Rounds:       cfg.Verify.Rounds,
		KeysPerRound: cfg.Verify.Keys,
		KeySpace:     cfg.Verify.Space,
		Workers:      cfg.Verify.Workers,
		Seed:         cfg.Verify.Seed,
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("strategy", string(verify.StrategyRBTree))
	viperCfg.SetDefault("log.level", "info")
	viperCfg.SetDefault("log.encoder", "text")
	viperCfg.SetDefault("log.file", "")
	viperCfg.SetDefault("metrics.enabled", false)
	viperCfg.SetDefault("metrics.interval", 10*time.Second)
	viperCfg.SetDefault("metrics.timeout", 5*time.Second)
	viperCfg.SetDefault("verify.rounds", 16)
	viperCfg.SetDefault("verify.keys", 1024)
	viperCfg.SetDefault("verify.space", 0)
	viperCfg.SetDefault("verify.workers", 4)
	viperCfg.SetDefault("verify.seed", 0)
}

// loadConfig merges the defaults, the XTREE_ env vars and the bound
// flags, flags first.
func loadConfig(viperCfg *viper.Viper, flags map[string]*pflag.Flag) (*Config, error) {
	applyDefaults(viperCfg)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := viperCfg.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
