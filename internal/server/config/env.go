package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Variable names
// follow the deployment's conventional upper-snake names; unset variables
// leave the current value in place.
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.StoreBackend, "STORE_BACKEND")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SQLitePath, "SQLITE_PATH")
	setString(&config.SessionBackend, "SESSION_BACKEND")
	setString(&config.RedisURL, "REDIS_URL")
	setDuration(&config.SessionTTL, "SESSION_TTL")
	setString(&config.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&config.GroupChatID, "TELEGRAM_GROUP_ID")
	setString(&config.BotDomain, "BOT_DOMAIN")
	setString(&config.LinkTokenSecret, "LINK_TOKEN_SECRET")
	setDuration(&config.LinkTokenValidity, "LINK_TOKEN_VALIDITY")
	setDuration(&config.FreshnessWindow, "PROOF_FRESHNESS_WINDOW")
	setString(&config.SolanaRPCURL, "SOLANA_RPC_URL")
	setString(&config.TokenMintAddress, "TOKEN_MINT_ADDRESS")
}
