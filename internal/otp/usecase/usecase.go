package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type repoStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type repoNotifier interface {
	Send(ctx context.Context, n entity.Notification) error
}

type Usecase struct {
	store     repoStore
	notifier  repoNotifier
	digester  hash.Digester
	validator validator.Validator
	policy    entity.Policy
	enforcer  *casbin.Enforcer
	ins       instrument.Instrumentation
	outcomes  metric.Int64Counter
	newCode   func() (string, error)
}

type Dependency struct {
	Store      repoStore
	Notifier   repoNotifier
	Digester   hash.Digester
	Validator  validator.Validator
	Policy     entity.Policy
	Enforcer   *casbin.Enforcer
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	outcomes, err := ins.Meter("otp.usecase").Int64Counter("otp.gate.outcomes",
		metric.WithDescription("Outcomes of admission, tracking, issuance and verification"))
	if err != nil {
		slog.Error("failed to create otp outcome counter", "error", err)
	}

	return &Usecase{
		store:     dep.Store,
		notifier:  dep.Notifier,
		digester:  dep.Digester,
		validator: dep.Validator,
		policy:    dep.Policy.WithDefaults(),
		enforcer:  dep.Enforcer,
		ins:       ins,
		outcomes:  outcomes,
		newCode:   randomCode,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) record(ctx context.Context, outcome string) {
	if s.outcomes != nil {
		s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("otp.outcome", outcome))
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if s.enforcer == nil {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	ok, err := s.enforcer.Enforce(clm.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce permission", "subject", clm.Subject, "role", clm.Role, "obj", obj, "act", act, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "permission denied", "subject", clm.Subject, "role", clm.Role, "obj", obj, "act", act)
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
