package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/storage-catalog/pkg/catalog/config"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens
// before the process exits.
func run() int {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "err", err)
	}

	serverConfig, err := config.Load()
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		return 1
	}

	ctx := context.Background()
	svc, closeRepo, err := serverConfig.BuildService(ctx)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		return 1
	}
	defer closeRepo()

	server := NewHTTPServer(svc, serverConfig)
	handler, err := server.Routes()
	if err != nil {
		slog.Error("Failed to set up routes", "err", err)
		return 1
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: handler,
	}

	slog.Info("Storage catalog starting",
		"port", serverConfig.Port,
		"env", serverConfig.Environment,
		"repository", serverConfig.RepositoryType)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if err := serve(httpServer, quit); err != nil {
		slog.Error("Server error", "err", err)
		return 1
	}

	slog.Info("Server exiting")
	return 0
}

// serve runs httpServer until a signal arrives on quit or the listener
// fails, then shuts it down gracefully.
func serve(httpServer *http.Server, quit <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
