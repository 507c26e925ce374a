package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the remote tables and indexes",
		Long: `Prepare the remote store selected by REMOTE_DRIVER.

postgres - creates usuarios, roles, objetivos and actividades
mongo    - creates the unique email index and the owner indexes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			rem, err := openRemote(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = rem.close(ctx) }()

			if err := rem.prepare(ctx); err != nil {
				return err
			}
			log.Info().Str("driver", rem.name).Msg("remote store ready")
			return nil
		},
	}
}
