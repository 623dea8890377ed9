package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	internalapp "github.com/kanade-dev/extrepo/internal/app"
	"github.com/kanade-dev/extrepo/internal/config"
)

const (
	formatJSON  = "json"
	formatTable = "table"

	localShutdownTimeout = 5 * time.Second
)

// loadConfig reads the --config file when given, the defaults otherwise,
// and applies EXTREPO_* environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	opts := []config.Option{config.WithViper(config.NewEnvViper())}
	if configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openLocal wires the application components without serving HTTP.
// The returned function releases the store.
func openLocal(ctx context.Context, cmd *cobra.Command) (*internalapp.AppComponents, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	a, err := internalapp.NewExtRepoApp(ctx, internalapp.WithConfig(cfg))
	if err != nil {
		return nil, nil, nil, err
	}

	closeFn := func() {
		if err := a.Stop(localShutdownTimeout); err != nil {
			slog.Warn("Failed to release resources", "error", err)
		}
	}
	return a.Components(), cfg, closeFn, nil
}

func getFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case formatJSON, formatTable:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use %s or %s)", format, formatTable, formatJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints rows as aligned, tab separated columns
func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow := func(cols []string) {
		for i, c := range cols {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, c)
		}
		_, _ = fmt.Fprintln(tw)
	}
	writeRow(header)
	for _, r := range rows {
		writeRow(r)
	}
	return tw.Flush()
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", formatTable, "Output format (table or json)")
}
