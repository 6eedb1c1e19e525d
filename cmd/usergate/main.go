package main

import (
	"fmt"
	"os"

	"usergate/internal/adapter/memory"
	"usergate/internal/adapter/postgres"
	"usergate/internal/config"
	"usergate/internal/domain"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv()

	root := &cobra.Command{
		Use:          "usergate",
		Short:        "Sign-in front door with locale-aware page guarding",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			return cfg.Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string (empty keeps data in memory)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	root.AddCommand(newServeCmd(&cfg), newCreateUserCmd(&cfg))
	return root
}

// stores holds the repositories chosen by the configuration.
type stores struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	close    func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		db := memory.New()
		return &stores{users: db, sessions: db.NewSessionRepo(), close: func() error { return nil }}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &stores{users: db, sessions: postgres.NewSessionRepo(db), close: db.Close}, nil
}
