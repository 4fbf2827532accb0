// Package main serves the in-memory API stub on the local development
// address so the client has an endpoint to talk to without the real
// backend.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/princerobleodom/blogg/internal/stub"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = ":8001"
	}

	s := stub.New()
	s.SeedDemo()

	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("stub server starting", "addr", addr, "admin", stub.AdminEmail)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("stub server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("stub server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("stub server stopped gracefully")
}
