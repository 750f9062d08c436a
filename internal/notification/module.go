package notification

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/notification/inbound"
	"github.com/shandysiswandi/otpgate/internal/notification/outbound/db"
	"github.com/shandysiswandi/otpgate/internal/notification/outbound/mailer"
	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	DBConn      db.Conn                    `validate:"required"`
	Messaging   messaging.Consumer         `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Renderer    *render.Renderer           `validate:"required"`
	Idempotency *idempotency.StateTracker  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	if dep.Config.GetBool("modules.notification.auto_migrate") {
		if err := dbNotif.EnsureSchema(dep.Ctx); err != nil {
			return fmt.Errorf("notification schema: %w", err)
		}
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      dbNotif,
		RepoMail:    mailer.New(dep.Mail, dep.Instrument),
		Renderer:    dep.Renderer,
		Idempotency: dep.Idempotency,
		DedupeTTL:   dep.Config.GetSecond("modules.notification.dedupe_ttl_seconds"),
		Validator:   dep.Validator,
		UID:         dep.UID,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
