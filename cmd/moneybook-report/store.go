package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"

	"moneybook/internal/backend"
	"moneybook/internal/cli"
	"moneybook/internal/config"
	"moneybook/internal/log"
	"moneybook/internal/report"
	"moneybook/internal/view"
)

// openStore loads the configuration and opens the configured backend.
// Reports only read, so logging goes to stderr at warn level.
func openStore(ctx context.Context) (*backend.BackendResult, *config.Config, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(log.Config{
		Level:     slog.LevelWarn,
		Component: log.ComponentReport,
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
	})
	result, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return result, cfg, nil
}

func newBuilder(cfg *config.Config) *report.Builder {
	return report.NewBuilder(view.NewRenderer(cfg.Location()))
}

func printMarkdown(w io.Writer, md string) error {
	if *raw {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
