// Package config defines the top-level configuration for the sniper bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// duration wraps time.Duration for TOML decoding of strings like "18s".
type duration struct {
	time.Duration
}

// UnmarshalText implements TOML string decoding.
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SNIPEBOT_* environment
// variables.
type Config struct {
	Telegram  TelegramConfig  `toml:"telegram"`
	Wallet    WalletConfig    `toml:"wallet"`
	Market    MarketConfig    `toml:"market"`
	Risk      RiskConfig      `toml:"risk"`
	Feeds     FeedsConfig     `toml:"feeds"`
	Rapid     RapidConfig     `toml:"rapid"`
	Momentum  MomentumConfig  `toml:"momentum"`
	Consensus ConsensusConfig `toml:"consensus"`
	Evaluator EvaluatorConfig `toml:"evaluator"`
	Redis     RedisConfig     `toml:"redis"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	LogLevel  string          `toml:"log_level"`
}

// TelegramConfig holds the execution-bot chat transport credentials. The bot
// token and chat ID identify where /buy and /sell commands are delivered.
type TelegramConfig struct {
	BotToken    string `toml:"bot_token"`
	ExecChatID  string `toml:"exec_chat_id"`
	BotUsername string `toml:"bot_username"`
}

// WalletConfig identifies the trading wallet and the balance-oracle RPC.
type WalletConfig struct {
	Address      string `toml:"address"`
	HeliusAPIKey string `toml:"helius_api_key"`
	HeliusRPCURL string `toml:"helius_rpc_url"`
}

// MarketConfig holds the market-data provider endpoint.
type MarketConfig struct {
	DexscreenerURL string   `toml:"dexscreener_url"`
	Timeout        duration `toml:"timeout"`
}

// RiskConfig holds the rug-gate parameters.
type RiskConfig struct {
	RugcheckURL     string   `toml:"rugcheck_url"`
	Timeout         duration `toml:"timeout"`
	MaxHolderPct    float64  `toml:"max_holder_pct"`    // gate ceiling, percent
	RuggedDevWindow duration `toml:"rugged_dev_window"` // consensus recently-rugged screen
}

// FeedsConfig holds the discovery-feed endpoints and credentials. Moralis and
// Bitquery feeds are enabled only when their API keys are set.
type FeedsConfig struct {
	PumpFunWSURL     string   `toml:"pumpfun_ws_url"`
	MoralisURL       string   `toml:"moralis_url"`
	MoralisAPIKey    string   `toml:"moralis_api_key"`
	MoralisInterval  duration `toml:"moralis_interval"`
	BitqueryURL      string   `toml:"bitquery_url"`
	BitqueryAPIKey   string   `toml:"bitquery_api_key"`
	BitqueryInterval duration `toml:"bitquery_interval"`
	QueueSize        int      `toml:"queue_size"`
}

// RapidConfig parameterizes the ultra-early sniper strategy.
type RapidConfig struct {
	BuyAmount    float64  `toml:"buy_amount"`
	MinLiquidity float64  `toml:"min_liquidity"`
	TakeProfitX  float64  `toml:"take_profit_x"`
	StopLossX    float64  `toml:"stop_loss_x"`
	MinRises     int      `toml:"min_rises"`
	SampleDelay  duration `toml:"sample_delay"`
	Trail        float64  `toml:"trail"`
}

// MomentumConfig parameterizes the liquidity-momentum scalper.
type MomentumConfig struct {
	BuyAmount         float64  `toml:"buy_amount"`
	MinLiquidity      float64  `toml:"min_liquidity"`
	TakeProfitX       float64  `toml:"take_profit_x"`
	StopLossX         float64  `toml:"stop_loss_x"`
	Trail             float64  `toml:"trail"`
	MaxPoolAge        duration `toml:"max_pool_age"`
	LimitDiscount     float64  `toml:"limit_discount"`     // limit order placed this fraction under market
	LiquidityCollapse float64  `toml:"liquidity_collapse"` // exit when liquidity falls below this fraction of entry reference
}

// ConsensusConfig parameterizes the community-consensus swing strategy.
type ConsensusConfig struct {
	BuyAmount        float64  `toml:"buy_amount"`
	MinSignals       int      `toml:"min_signals"`
	HolderThreshold  int      `toml:"holder_threshold"`
	MaxConcentration float64  `toml:"max_concentration"` // fraction, 0..1
	TakeProfitX      float64  `toml:"take_profit_x"`
	StopLossX        float64  `toml:"stop_loss_x"`
	Trail            float64  `toml:"trail"`
	HoldDuration     duration `toml:"hold_duration"`
}

// EvaluatorConfig controls the exit-evaluator sweep.
type EvaluatorConfig struct {
	Interval      duration `toml:"interval"`
	FallbackPrice float64  `toml:"fallback_price"` // entry price used when the oracle has no quote at buy time
}

// RedisConfig holds the optional price-cache / snapshot-publish connection.
type RedisConfig struct {
	Enabled  bool     `toml:"enabled"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	PriceTTL duration `toml:"price_ttl"`
}

// PostgresConfig holds the optional trade-history store connection.
type PostgresConfig struct {
	Enabled  bool   `toml:"enabled"`
	DSN      string `toml:"dsn"`
	MaxConns int    `toml:"max_conns"`
}

// ServerConfig holds the reporting surface parameters.
type ServerConfig struct {
	Enabled          bool     `toml:"enabled"`
	Port             int      `toml:"port"`
	SnapshotInterval duration `toml:"snapshot_interval"`
}

// NotifyConfig holds operator alert channels, distinct from the execution
// chat.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration, tuned to the live bot's
// production parameters.
func Defaults() Config {
	return Config{
		Telegram: TelegramConfig{
			BotUsername: "@toxi_solana_bot",
		},
		Market: MarketConfig{
			DexscreenerURL: "https://api.dexscreener.com",
			Timeout:        duration{6 * time.Second},
		},
		Risk: RiskConfig{
			RugcheckURL:     "https://rugcheck.xyz",
			Timeout:         duration{6 * time.Second},
			MaxHolderPct:    25,
			RuggedDevWindow: duration{24 * time.Hour},
		},
		Feeds: FeedsConfig{
			PumpFunWSURL:     "wss://pumpportal.fun/api/data",
			MoralisURL:       "https://solana-gateway.moralis.io/account/mainnet/trending",
			MoralisInterval:  duration{2 * time.Minute},
			BitqueryURL:      "https://streaming.bitquery.io/graphql",
			BitqueryInterval: duration{3 * time.Minute},
			QueueSize:        256,
		},
		Rapid: RapidConfig{
			BuyAmount:    0.07,
			MinLiquidity: 8,
			TakeProfitX:  2.0,
			StopLossX:    0.7,
			MinRises:     2,
			SampleDelay:  duration{2 * time.Second},
			Trail:        0.3,
		},
		Momentum: MomentumConfig{
			BuyAmount:         0.10,
			MinLiquidity:      8,
			TakeProfitX:       2.0,
			StopLossX:         0.7,
			Trail:             0.2,
			MaxPoolAge:        duration{20 * time.Minute},
			LimitDiscount:     0.03,
			LiquidityCollapse: 0.6,
		},
		Consensus: ConsensusConfig{
			BuyAmount:        0.04,
			MinSignals:       2,
			HolderThreshold:  250,
			MaxConcentration: 0.10,
			TakeProfitX:      2.0,
			StopLossX:        0.6,
			Trail:            0.4,
			HoldDuration:     duration{48 * time.Hour},
		},
		Evaluator: EvaluatorConfig{
			Interval:      duration{18 * time.Second},
			FallbackPrice: 0.01,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PriceTTL: duration{10 * time.Second},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Server: ServerConfig{
			Enabled:          true,
			Port:             8080,
			SnapshotInterval: duration{2 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"entry", "exit", "blacklist"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for invalid or missing values and returns a combined
// error describing every problem found. The process refuses to start on a
// non-nil result.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Execution transport is a hard requirement: without it no order can be
	// placed.
	if c.Telegram.BotToken == "" {
		errs = append(errs, "telegram: bot_token must not be empty")
	}
	if c.Telegram.ExecChatID == "" {
		errs = append(errs, "telegram: exec_chat_id must not be empty")
	}

	if c.Market.DexscreenerURL == "" {
		errs = append(errs, "market: dexscreener_url must not be empty")
	}
	if c.Risk.RugcheckURL == "" {
		errs = append(errs, "risk: rugcheck_url must not be empty")
	}
	if c.Risk.MaxHolderPct <= 0 || c.Risk.MaxHolderPct > 100 {
		errs = append(errs, fmt.Sprintf("risk: max_holder_pct must be in (0, 100], got %g", c.Risk.MaxHolderPct))
	}

	if c.Feeds.QueueSize < 1 {
		errs = append(errs, "feeds: queue_size must be >= 1")
	}

	for _, s := range []struct {
		name     string
		amount   float64
		tpx, slx float64
		trail    float64
	}{
		{"rapid", c.Rapid.BuyAmount, c.Rapid.TakeProfitX, c.Rapid.StopLossX, c.Rapid.Trail},
		{"momentum", c.Momentum.BuyAmount, c.Momentum.TakeProfitX, c.Momentum.StopLossX, c.Momentum.Trail},
		{"consensus", c.Consensus.BuyAmount, c.Consensus.TakeProfitX, c.Consensus.StopLossX, c.Consensus.Trail},
	} {
		if s.amount <= 0 {
			errs = append(errs, s.name+": buy_amount must be > 0")
		}
		if s.tpx <= 1 {
			errs = append(errs, s.name+": take_profit_x must be > 1")
		}
		if s.slx <= 0 || s.slx >= 1 {
			errs = append(errs, s.name+": stop_loss_x must be in (0, 1)")
		}
		if s.trail <= 0 || s.trail >= 1 {
			errs = append(errs, s.name+": trail must be in (0, 1)")
		}
	}

	if c.Consensus.MinSignals < 1 {
		errs = append(errs, "consensus: min_signals must be >= 1")
	}
	if c.Consensus.MaxConcentration <= 0 || c.Consensus.MaxConcentration > 1 {
		errs = append(errs, "consensus: max_concentration must be in (0, 1]")
	}
	if c.Momentum.LiquidityCollapse <= 0 || c.Momentum.LiquidityCollapse >= 1 {
		errs = append(errs, "momentum: liquidity_collapse must be in (0, 1)")
	}

	if c.Evaluator.Interval.Duration <= 0 {
		errs = append(errs, "evaluator: interval must be positive")
	}

	if c.Postgres.Enabled && strings.TrimSpace(c.Postgres.DSN) == "" {
		errs = append(errs, "postgres: dsn must be set when enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must be set when enabled")
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
