package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SNIPEBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing file is not an
// error: the bot can run entirely from defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SNIPEBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Telegram (execution transport) ──
	setStr(&cfg.Telegram.BotToken, "SNIPEBOT_TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Telegram.ExecChatID, "SNIPEBOT_TELEGRAM_EXEC_CHAT_ID")
	setStr(&cfg.Telegram.BotUsername, "SNIPEBOT_TELEGRAM_BOT_USERNAME")

	// ── Wallet ──
	setStr(&cfg.Wallet.Address, "SNIPEBOT_WALLET_ADDRESS")
	setStr(&cfg.Wallet.HeliusAPIKey, "SNIPEBOT_HELIUS_API_KEY")
	setStr(&cfg.Wallet.HeliusRPCURL, "SNIPEBOT_HELIUS_RPC_URL")

	// ── Market / risk ──
	setStr(&cfg.Market.DexscreenerURL, "SNIPEBOT_DEXSCREENER_URL")
	setStr(&cfg.Risk.RugcheckURL, "SNIPEBOT_RUGCHECK_URL")
	setFloat64(&cfg.Risk.MaxHolderPct, "SNIPEBOT_RISK_MAX_HOLDER_PCT")

	// ── Feeds ──
	setStr(&cfg.Feeds.PumpFunWSURL, "SNIPEBOT_FEEDS_PUMPFUN_WS_URL")
	setStr(&cfg.Feeds.MoralisAPIKey, "SNIPEBOT_MORALIS_API_KEY")
	setStr(&cfg.Feeds.BitqueryAPIKey, "SNIPEBOT_BITQUERY_API_KEY")
	setInt(&cfg.Feeds.QueueSize, "SNIPEBOT_FEEDS_QUEUE_SIZE")

	// ── Strategies ──
	setFloat64(&cfg.Rapid.BuyAmount, "SNIPEBOT_RAPID_BUY_AMOUNT")
	setFloat64(&cfg.Momentum.BuyAmount, "SNIPEBOT_MOMENTUM_BUY_AMOUNT")
	setFloat64(&cfg.Consensus.BuyAmount, "SNIPEBOT_CONSENSUS_BUY_AMOUNT")
	setInt(&cfg.Consensus.MinSignals, "SNIPEBOT_CONSENSUS_MIN_SIGNALS")

	// ── Evaluator ──
	setDuration(&cfg.Evaluator.Interval, "SNIPEBOT_EVALUATOR_INTERVAL")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SNIPEBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SNIPEBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SNIPEBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SNIPEBOT_REDIS_DB")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SNIPEBOT_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SNIPEBOT_POSTGRES_DSN")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SNIPEBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SNIPEBOT_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT") // platform-injected port wins last

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SNIPEBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SNIPEBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SNIPEBOT_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SNIPEBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
