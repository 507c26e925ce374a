package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ahorrat/weekly-planner/pkg/logger"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}

func TestBootstrap_ReadsDotenv(t *testing.T) {
	logger.Reset()
	t.Cleanup(logger.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("REMOTE_DRIVER=postgres\nPORT=9191\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("REMOTE_DRIVER", "")
	os.Unsetenv("REMOTE_DRIVER")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	envFile = path
	t.Cleanup(func() { envFile = ".env" })

	cfg, _, err := bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if cfg.RemoteDriver != "postgres" || cfg.Port != "9191" {
		t.Fatalf("dotenv values not applied: %+v", cfg)
	}
}

func TestBootstrap_MissingDotenvIsFine(t *testing.T) {
	logger.Reset()
	t.Cleanup(logger.Reset)

	envFile = filepath.Join(t.TempDir(), "absent.env")
	t.Cleanup(func() { envFile = ".env" })

	if _, _, err := bootstrap(context.Background()); err != nil {
		t.Fatalf("missing dotenv must not fail: %v", err)
	}
}
