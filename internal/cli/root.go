// Package cli wires the medannot commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/config"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/persist"
)

// cfg is loaded before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "medannot",
	Short: "Annotate medical images with boxes, polygons and freehand regions",
	Long: `medannot is an annotation editor for medical images. Shapes are kept in
native image pixels and stored per image, either in a local directory or
on a medannot server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.Path(), "path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("backend", "", "medannot server URL; overrides the local store")

	rootCmd.AddCommand(editCmd, serveCmd, renderCmd, exportCmd, showCmd, listCmd, checkCmd, importCmd, discoverCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Backend.URL = backend
	}
	level := cfg.LogLevel
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(level),
	})))
	return nil
}

// openRepository returns the server client when a backend is configured
// and the local file store otherwise.
func openRepository() (persist.Repository, error) {
	if cfg.Backend.URL != "" {
		logging.Logger().Debug("using remote store", "url", cfg.Backend.URL)
		return persist.NewHTTPClient(cfg.Backend.URL, nil), nil
	}
	store, err := persist.NewFileStore(cfg.Storage.Directory)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func editorOptions() []editor.Option {
	return []editor.Option{
		editor.WithColor(cfg.Editor.DefaultColor),
		editor.WithHistoryCapacity(cfg.Editor.HistoryCapacity),
	}
}
