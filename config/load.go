package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"market-resilience/infrastructure/logger"
	"market-resilience/infrastructure/monitor"
	"market-resilience/resilience"
)

// BinanceFuturesWSEndpoint 默认行情源
const BinanceFuturesWSEndpoint = "wss://fstream.binance.com"

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env       string                     `yaml:"env"`
	Log       logger.Config              `yaml:"log"`
	Metrics   MetricsConfig              `yaml:"metrics"`
	Feed      FeedConfig                 `yaml:"feed"`
	Indicator IndicatorConfig            `yaml:"indicator"`
	Symbols   map[string]IndicatorConfig `yaml:"symbols"` // 按交易对覆盖 indicator 参数
}

type MetricsConfig struct {
	Addr           string `yaml:"addr"`
	monitor.Config `yaml:",inline"`
}

type FeedConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Symbols  []string `yaml:"symbols"`
	Depth    int      `yaml:"depth"`    // binance partial depth: 5/10/20
	Interval string   `yaml:"interval"` // 100ms/250ms/500ms
}

// IndicatorConfig 的每个字段都是可选的；未设置时沿用上一层（默认值或全局配置）。
type IndicatorConfig struct {
	Timeout                   *time.Duration `yaml:"timeout"`
	SpreadWindowSize          *int           `yaml:"spreadWindowSize"`
	LevelsToConsume           *int           `yaml:"levelsToConsume"`
	SpreadIncreaseThreshold   *float64       `yaml:"spreadIncreaseThreshold"`
	StrongResilienceThreshold *float64       `yaml:"strongResilienceThreshold"`
	WeakResilienceThreshold   *float64       `yaml:"weakResilienceThreshold"`
	TimeWeight                *float64       `yaml:"timeWeight"`
	DepthWeight               *float64       `yaml:"depthWeight"`
	SpreadWeight              *float64       `yaml:"spreadWeight"`
	SameSideBias              *float64       `yaml:"sameSideBias"`
	OppositeSideBias          *float64       `yaml:"oppositeSideBias"`
}

// Apply overlays the set fields onto base.
func (c IndicatorConfig) Apply(base resilience.Config) resilience.Config {
	if c.Timeout != nil {
		base.Timeout = *c.Timeout
	}
	if c.SpreadWindowSize != nil {
		base.SpreadWindowSize = *c.SpreadWindowSize
	}
	if c.LevelsToConsume != nil {
		base.LevelsToConsume = *c.LevelsToConsume
	}
	if c.SpreadIncreaseThreshold != nil {
		base.SpreadIncreaseThreshold = *c.SpreadIncreaseThreshold
	}
	if c.StrongResilienceThreshold != nil {
		base.StrongResilienceThreshold = *c.StrongResilienceThreshold
	}
	if c.WeakResilienceThreshold != nil {
		base.WeakResilienceThreshold = *c.WeakResilienceThreshold
	}
	if c.TimeWeight != nil {
		base.TimeWeight = *c.TimeWeight
	}
	if c.DepthWeight != nil {
		base.DepthWeight = *c.DepthWeight
	}
	if c.SpreadWeight != nil {
		base.SpreadWeight = *c.SpreadWeight
	}
	if c.SameSideBias != nil {
		base.SameSideBias = *c.SameSideBias
	}
	if c.OppositeSideBias != nil {
		base.OppositeSideBias = *c.OppositeSideBias
	}
	return base
}

// NormalizeSymbol 统一交易对写法（去空白、大写），配置与行情使用同一个 key。
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IndicatorFor resolves defaults <- global indicator section <- symbol override.
// Symbol lookup is case-insensitive.
func (cfg AppConfig) IndicatorFor(symbol string) resilience.Config {
	out := cfg.Indicator.Apply(resilience.DefaultConfig())
	if sc, ok := cfg.Symbols[NormalizeSymbol(symbol)]; ok {
		out = sc.Apply(out)
	}
	return out
}

// Default returns a config that passes Validate with no file at all.
func Default() AppConfig {
	cfg := AppConfig{Env: "dev"}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = logger.DefaultConfig().Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = logger.DefaultConfig().Format
	}
	if len(cfg.Log.Outputs) == 0 {
		cfg.Log.Outputs = logger.DefaultConfig().Outputs
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = monitor.DefaultConfig().Namespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = monitor.DefaultConfig().Subsystem
	}
	if cfg.Feed.Endpoint == "" {
		cfg.Feed.Endpoint = BinanceFuturesWSEndpoint
	}
	if cfg.Feed.Depth == 0 {
		cfg.Feed.Depth = 20
	}
	if cfg.Feed.Interval == "" {
		cfg.Feed.Interval = "100ms"
	}
}

// normalizeSymbolKeys 将 symbols 覆盖表的 key 统一为大写；大小写不同的重复 key 视为错误。
func normalizeSymbolKeys(cfg *AppConfig) error {
	if len(cfg.Symbols) == 0 {
		return nil
	}
	out := make(map[string]IndicatorConfig, len(cfg.Symbols))
	for raw, sc := range cfg.Symbols {
		key := NormalizeSymbol(raw)
		if key == "" {
			return ErrInvalid("symbols contains an empty key")
		}
		if _, dup := out[key]; dup {
			return ErrInvalid(fmt.Sprintf("symbols.%s is declared more than once", key))
		}
		out[key] = sc
	}
	cfg.Symbols = out
	return nil
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := normalizeSymbolKeys(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// envOverrides 读取 RESILIENCE_* 环境变量。
type envOverrides struct {
	Env          string   `envconfig:"ENV"`
	LogLevel     string   `envconfig:"LOG_LEVEL"`
	MetricsAddr  string   `envconfig:"METRICS_ADDR"`
	FeedEndpoint string   `envconfig:"FEED_ENDPOINT"`
	FeedSymbols  []string `envconfig:"FEED_SYMBOLS"`
}

// LoadWithEnvOverrides loads config then overrides deployment fields from
// RESILIENCE_* env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	var env envOverrides
	if err := envconfig.Process("RESILIENCE", &env); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	if env.Env != "" {
		cfg.Env = env.Env
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.MetricsAddr != "" {
		cfg.Metrics.Addr = env.MetricsAddr
	}
	if env.FeedEndpoint != "" {
		cfg.Feed.Endpoint = env.FeedEndpoint
	}
	if len(env.FeedSymbols) > 0 {
		cfg.Feed.Symbols = env.FeedSymbols
	}
	return cfg, Validate(cfg)
}
