package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

const pingTimeout = 5 * time.Second

// waitFor retries ping with a capped fibonacci backoff until it succeeds,
// the attempts in app.startup.max_retries run out or the app is stopped.
func (a *App) waitFor(name string, ping func(context.Context) error) error {
	maxRetries := a.config.GetInt("app.startup.max_retries")
	if maxRetries <= 0 {
		maxRetries = 5
	}

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(uint64(maxRetries), b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			slog.WarnContext(ctx, "dependency not ready", "name", name, "error", err)
			return retry.RetryableError(err)
		}

		return nil
	})
}

type healthResponse struct {
	Store    string `json:"store"`
	Database string `json:"database,omitempty"`
}

func (healthResponse) Message() string {
	return "service is healthy"
}

// health pings the OTP store, and the database when one is configured.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Store: "ok"}
	if err := a.store.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "name", "store", "error", err)
		return nil, goerror.NewBusiness("store unavailable", goerror.CodeUnavailable)
	}

	if a.dbConn != nil {
		resp.Database = "ok"
		if err := a.dbConn.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", "name", "database", "error", err)
			return nil, goerror.NewBusiness("database unavailable", goerror.CodeUnavailable)
		}
	}

	return resp, nil
}
