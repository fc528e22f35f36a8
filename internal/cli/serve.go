package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"resdb-tools/internal/config"
	"resdb-tools/internal/logging"
	"resdb-tools/internal/metrics"
	"resdb-tools/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record store over the records HTTP API",
		Long: strings.TrimSpace(`
Serve the configured record store (sqlite or postgres) over HTTP so other
machines can use it with --backend http.

Reads are open; writes require the X-Resdb-User header to match the record owner.
`),
		Example: strings.TrimSpace(`
resdb serve --addr 127.0.0.1:7420 --metrics-addr 127.0.0.1:9420
RESDB_REMOTE_URL=http://127.0.0.1:7420 resdb --backend http records ls
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Backend == config.BackendHTTP {
				return writeErr(cmd, errors.New("serve: the http backend cannot be re-served (use sqlite or postgres)"))
			}
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend, err := openBackend(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer backend.Close()

			log := logging.L().Named("serve")
			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv := &http.Server{
				Handler:           store.NewHandler(backend, log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			servers := []*http.Server{srv}
			metricsURL := ""
			var metricsLn net.Listener
			if m := strings.TrimSpace(metricsAddr); m != "" {
				metricsLn, err = net.Listen("tcp", m)
				if err != nil {
					_ = ln.Close()
					return writeErr(cmd, err)
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				servers = append(servers, &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second})
				metricsURL = "http://" + metricsLn.Addr().String() + "/metrics"
			}

			url := "http://" + ln.Addr().String()
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":       ln.Addr().String(),
					"url":        url,
					"backend":    app.cfg.Backend,
					"metricsUrl": metricsURL,
					"startedAt":  time.Now().UTC().Format(time.RFC3339Nano),
				},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "resdb records API running at %s (backend=%s)\n", url, app.cfg.Backend)

			errCh := make(chan error, len(servers))
			go func() { errCh <- srv.Serve(ln) }()
			if metricsLn != nil {
				go func() { errCh <- servers[1].Serve(metricsLn) }()
			}

			select {
			case <-ctx.Done():
				log.Info("shutting down")
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", zap.Error(err))
					shutdown(servers)
					return writeErr(cmd, err)
				}
			}
			shutdown(servers)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7420", "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Bind address for the Prometheus /metrics endpoint (disabled when empty)")
	return cmd
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range servers {
		_ = s.Shutdown(ctx)
	}
}
