package config

import (
	"flag"
	"os"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-b string   storage backend ("postgres" or "sqlite")
//	-d string   PostgreSQL DSN
//	-f string   SQLite database path
//	-r string   redis URL for the session store
//	-s string   link token HMAC secret key
//	-u string   public base URL for wallet-link pages
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components (the JSON
// config flags -c/-config are handled separately).
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-f", "-r", "-s", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.StoreBackend, "b", config.StoreBackend, "storage backend (postgres or sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite database path")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.LinkTokenSecret, "s", config.LinkTokenSecret, "link token secret key")
	fs.StringVar(&config.BotDomain, "u", config.BotDomain, "public base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
