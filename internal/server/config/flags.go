package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
)

// serverFlags lists the flags parseFlags owns; anything else on the command
// line is ignored.
var serverFlags = []string{"-a", "-m", "-d", "-s", "-t", "-w", "-b", "-n", "-f", "-l"}

// parseFlags applies command-line flags on top of config.
//
//	-a string    HTTP API bind address
//	-m string    metrics/health bind address (empty disables)
//	-d string    PostgreSQL DSN
//	-s string    JWT HMAC secret key
//	-t duration  access token validity (e.g. 30m)
//	-w duration  graceful shutdown timeout
//	-b int       bcrypt cost
//	-n int       concurrent password hashes (0 = number of CPUs)
//	-f string    log format: json or text
//	-l string    log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for metrics and health checks")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity duration")
	fs.DurationVar(&config.ShutdownTimeout, "w", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.HashConcurrency, "n", config.HashConcurrency, "concurrent password hashes")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
