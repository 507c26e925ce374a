package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ahorrat/weekly-planner/internal/pkg/config"
	"github.com/ahorrat/weekly-planner/pkg/logger"
)

const serviceName = "weekly-planner"

var envFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "planner",
		Short:        "Weekly planner API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads the dotenv file, the configuration and the logger.
// A missing dotenv file is not an error; variables may come from the
// environment alone.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerolog.Nop(), fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
	return cfg, log, nil
}
