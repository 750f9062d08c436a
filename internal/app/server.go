package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start serves HTTP in the background. The returned channel is closed once
// SIGINT or SIGTERM arrives; consumers see their context cancelled then.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()
		slog.Info("shutdown signal received")

		a.cancel()
		close(done)
	}()

	return done
}

// ShutdownTimeout bounds Stop; app.shutdown_timeout_seconds overrides the
// ten second default.
func (a *App) ShutdownTimeout() time.Duration {
	if sec := a.config.GetInt("app.shutdown_timeout_seconds"); sec > 0 {
		return time.Duration(sec) * time.Second
	}

	return 10 * time.Second
}

// Stop drains HTTP first so no new codes are issued, then waits for the
// consumers and finally releases resources in closer order.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	a.cancel()

	slog.InfoContext(ctx, "waiting for background consumers")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
