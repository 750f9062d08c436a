package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/notification"
	"github.com/shandysiswandi/otpgate/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			Store:       a.store,
			Digester:    a.hmac,
			Enforcer:    a.casbin,
			Router:      a.router,
			Config:      a.config,
			Validator:   a.validator,
			Instrument:  a.ins,
			Renderer:    a.renderer,
			UID:         a.uid,
			Mail:        a.mail,
			SNS:         a.sns,
			Messaging:   a.messaging,
			RateLimiter: a.rateLimiter,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if a.dbConn == nil || a.messaging == nil || a.mail == nil {
			slog.Error("module notification requires database, messaging and mail")
			os.Exit(1)
		}

		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
			Renderer:    a.renderer,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
