package config

import (
	"flag"
	"io"

	"github.com/vincentino1/account-service/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string     environment ("development" | "production")
//	-a string     HTTP bind address (e.g. ":3001")
//	-g string     gRPC bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token lifetime (e.g. "1h", "15m")
//	-b int        bcrypt cost (4..15)
//	-r string     Redis URL for the revocation cache
//	-p duration   revocation purge interval (0 disables)
//	-l string     log format ("zap" | "slog")
//
// Only these flags are considered; anything else in args is ignored so the
// same command line can carry -c/-config or subcommands.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-m", "-a", "-g", "-d", "-s", "-t", "-b", "-r", "-p", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Env, "m", config.Env, "environment")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token lifetime")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.DurationVar(&config.PurgeInterval, "p", config.PurgeInterval, "revocation purge interval")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")

	return fs.Parse(args)
}
