package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/flagx"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; its fields are copied into the runtime Config.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	StoreBackend      string         `json:"store_backend"`
	DatabaseDSN       string         `json:"database_dsn"`
	SQLitePath        string         `json:"sqlite_path"`
	SessionBackend    string         `json:"session_backend"`
	RedisURL          string         `json:"redis_url"`
	SessionTTL        timex.Duration `json:"session_ttl"`
	BotToken          string         `json:"bot_token"`
	GroupChatID       string         `json:"group_chat_id"`
	BotDomain         string         `json:"bot_domain"`
	LinkTokenSecret   string         `json:"link_token_secret"`
	LinkTokenValidity timex.Duration `json:"link_token_validity"`
	FreshnessWindow   timex.Duration `json:"proof_freshness_window"`
	SolanaRPCURL      string         `json:"solana_rpc_url"`
	TokenMintAddress  string         `json:"token_mint_address"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a requested config that cannot be applied must not
// start the server with silently different settings.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = time.Duration(v.Duration)
		}
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.StoreBackend, c.StoreBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisURL, c.RedisURL)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setString(&config.BotToken, c.BotToken)
	setString(&config.GroupChatID, c.GroupChatID)
	setString(&config.BotDomain, c.BotDomain)
	setString(&config.LinkTokenSecret, c.LinkTokenSecret)
	setDuration(&config.LinkTokenValidity, c.LinkTokenValidity)
	setDuration(&config.FreshnessWindow, c.FreshnessWindow)
	setString(&config.SolanaRPCURL, c.SolanaRPCURL)
	setString(&config.TokenMintAddress, c.TokenMintAddress)
}
