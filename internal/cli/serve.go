package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/api"
	"github.com/sprite-ai/medannot/internal/discovery"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/persist"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that stores annotations and hosts live editing
sessions.

Endpoints:
  GET    /health                          Health check
  GET    /api/images                      List annotated images
  GET    /api/images/{id}/annotations     Load an image's annotations
  PUT    /api/images/{id}/annotations     Replace an image's annotations
  DELETE /api/images/{id}/annotations     Remove an image's annotations
  POST   /api/render                      Render annotations to PNG
  GET    /api/ws                          WebSocket editing session`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "address to listen on (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from config)")
	serveCmd.Flags().StringP("dir", "d", "", "annotation directory (default from config)")
	serveCmd.Flags().Bool("advertise", false, "announce the server over mDNS")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Storage.Directory = dir
	}
	if cmd.Flags().Changed("advertise") {
		cfg.Server.Advertise, _ = cmd.Flags().GetBool("advertise")
	}

	// The server is the store of record; it never proxies to another backend.
	store, err := persist.NewFileStore(cfg.Storage.Directory)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	srv := api.New(cfg.ListenAddr(), store, editorOptions()...)

	if cfg.Server.Advertise {
		adv, err := discovery.Advertise(cfg.Server.Port, "version="+version)
		if err != nil {
			logging.Logger().Warn("mDNS advertising disabled", "err", err)
		} else {
			defer adv.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on http://%s\n", store.Dir(), cfg.ListenAddr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
