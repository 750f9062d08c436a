package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

const defaultDedupeTTL = 24 * time.Hour

type repoDB interface {
	CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) error
	UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) error
}

type repoMail interface {
	Send(ctx context.Context, to, subject string, body render.Output) error
}

type renderer interface {
	Render(templateID string, data map[string]any) (render.Output, error)
}

type deduper interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...idempotency.Option) error
}

type Usecase struct {
	repoDB    repoDB
	repoMail  repoMail
	renderer  renderer
	dedupe    deduper
	dedupeTTL time.Duration
	validator validator.Validator
	uid       uid.NumberID
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoMail    repoMail
	Renderer    renderer
	Idempotency deduper
	// DedupeTTL is how long a delivered event id is remembered.
	DedupeTTL  time.Duration
	Validator  validator.Validator
	UID        uid.NumberID
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	ttl := dep.DedupeTTL
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}

	return &Usecase{
		repoDB:    dep.RepoDB,
		repoMail:  dep.RepoMail,
		renderer:  dep.Renderer,
		dedupe:    dep.Idempotency,
		dedupeTTL: ttl,
		validator: dep.Validator,
		uid:       dep.UID,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
