package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pankajredekar/lemonmenu/internal/presenter"
	"github.com/pankajredekar/lemonmenu/internal/server"
	menusync "github.com/pankajredekar/lemonmenu/internal/sync"
	"github.com/pankajredekar/lemonmenu/internal/utils"
	"github.com/spf13/cobra"
)

const (
	defaultGracefulTimeout = 15 * time.Second
	serverRequestTimeout   = 10 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the menu over HTTP",
	Long: `Serves GET /menu?sort=name&search=<phrase> from the local cache.

The server starts immediately with whatever the cache holds. If the cache is
empty the menu is downloaded in the background and served once it arrives.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Address to listen on (overrides listen_address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		utils.PrintError("%v", err)
		return err
	}
	defer a.Close()

	address := a.cfg.ListenAddress
	if serveAddress != "" {
		address = serveAddress
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, task, err := startMenuService(ctx, a)
	if err != nil {
		return err
	}
	// Runs before a.Close so the sync never writes to a closed database
	defer waitForTask(a.logger, task, defaultGracefulTimeout)

	srv := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server listening", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}
	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	a.logger.Info("Server shutdown complete")
	return nil
}

// startMenuService feeds a presenter from the store, starts the background
// sync and returns the router serving the derived menu. The server can start
// right away; the menu appears once the sync task has stored it.
func startMenuService(ctx context.Context, a *app) (http.Handler, *menusync.Task, error) {
	p := presenter.New()
	snapshots, err := a.store.ObserveAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	p.Attach(snapshots)

	task := a.coordinator.Start(ctx)
	a.logger.Info("Started menu sync task", "task", task.ID)

	router := server.NewServer(p,
		server.WithLogger(a.logger),
		server.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
		),
	)
	return router, task, nil
}

// waitForTask blocks until task finishes or timeout passes. It reports
// whether the task finished.
func waitForTask(logger *slog.Logger, task *menusync.Task, timeout time.Duration) bool {
	select {
	case <-task.Done():
		return true
	case <-time.After(timeout):
		logger.Warn("Menu sync task still running", "task", task.ID, "timeout", timeout)
		return false
	}
}
