package otp

import (
	"fmt"

	"github.com/casbin/casbin/v3"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/inbound"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/notifier"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/kvstore"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/sns"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

// Dependency wires the OTP module. Mail, Messaging and SNS are optional;
// only the backend named by modules.otp.notifier_driver has to be set.
type Dependency struct {
	Store      kvstore.Store              `validate:"required"`
	Digester   hash.Digester              `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Renderer   *render.Renderer           `validate:"required"`
	UID        uid.NumberID               `validate:"required"`

	Mail        mail.Mail
	Messaging   messaging.Publisher
	SNS         *sns.Publisher
	RateLimiter *router.RateLimiter
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	opts := notifier.Options{
		Renderer:   dep.Renderer,
		UID:        dep.UID,
		Instrument: dep.Instrument,
	}
	// typed nils must not leak into the interface fields
	if dep.Mail != nil {
		opts.Mail = dep.Mail
	}
	if dep.Messaging != nil {
		opts.Messaging = dep.Messaging
	}
	if dep.SNS != nil {
		opts.SNS = dep.SNS
	}

	sender, err := notifier.New(dep.Config.GetString("modules.otp.notifier_driver"), opts)
	if err != nil {
		return fmt.Errorf("otp notifier: %w", err)
	}

	uc := usecase.New(usecase.Dependency{
		Store:      dep.Store,
		Notifier:   sender,
		Digester:   dep.Digester,
		Validator:  dep.Validator,
		Policy:     PolicyFromConfig(dep.Config),
		Enforcer:   dep.Enforcer,
		Instrument: dep.Instrument,
	})

	var limit router.Middleware
	if dep.RateLimiter != nil {
		limit = dep.RateLimiter.Limit
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, limit)

	return nil
}

// PolicyFromConfig reads modules.otp.*; unset keys keep their defaults.
func PolicyFromConfig(cfg config.Config) entity.Policy {
	p := entity.Policy{
		LockTTL:       cfg.GetSecond("modules.otp.lock_ttl_seconds"),
		SpamLockTTL:   cfg.GetSecond("modules.otp.spam_lock_ttl_seconds"),
		CooldownTTL:   cfg.GetSecond("modules.otp.cooldown_ttl_seconds"),
		RequestWindow: cfg.GetSecond("modules.otp.request_window_seconds"),
		RequestLimit:  cfg.GetInt64("modules.otp.request_limit"),
		CodeTTL:       cfg.GetSecond("modules.otp.code_ttl_seconds"),
		MaxFailures:   cfg.GetInt64("modules.otp.max_failures"),

		RollbackOnSendFailure: true,
	}
	if cfg.GetString("modules.otp.rollback_on_send_failure") != "" {
		p.RollbackOnSendFailure = cfg.GetBool("modules.otp.rollback_on_send_failure")
	}

	return p.WithDefaults()
}
