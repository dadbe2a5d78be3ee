package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/netdocs/internal/preview"
	"github.com/conduit-lang/netdocs/internal/store"
)

var (
	serveHost string
	servePort int
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview built documentation locally",
		Long: `Start a local HTTP server over the pages written by 'netdocs scrape'.

Pages are read from the configured output, so the same driver flags apply.

Examples:
  netdocs serve
  netdocs serve --port 8080
  netdocs serve --driver redis`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to serve on")
	addOutputFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	infoColor := color.New(color.FgCyan)
	successColor := color.New(color.FgGreen, color.Bold)
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Serve.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Serve.Port = servePort
	}
	applyOutputFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}

	logger, err := newLogger(verbose, logFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreConfig(), corpusFs)
	if err != nil {
		return err
	}
	defer st.Close()

	server := &http.Server{
		Addr:              cfg.ServeAddr(),
		Handler:           preview.NewRouter(st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	successColor.Fprintf(out, "✓ Documentation server running at http://%s\n", cfg.ServeAddr())
	infoColor.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("preview server shutdown", zap.Error(err))
		return err
	}
	return nil
}
