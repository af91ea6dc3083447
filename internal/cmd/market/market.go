// Package market provides the market service command.
package market

import (
	"context"
	"flag"

	platformcmd "github.com/keyfold/keyfold/internal/platform/cmd"
	server "github.com/keyfold/keyfold/internal/services/market/app"
)

// Config holds market command configuration.
type Config struct {
	Port int `env:"KEYFOLD_MARKET_PORT" envDefault:"8080"`
}

// ParseConfig loads environment defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The market HTTP server port")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the market server with telemetry configured.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMarket, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
