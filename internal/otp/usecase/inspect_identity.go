package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/kvstore"
)

type (
	InspectIdentityInput struct {
		Email string `validate:"required,email"`
	}

	KeyStatus struct {
		Present bool
		TTL     time.Duration
	}

	InspectIdentityOutput struct {
		Email        string
		State        entity.State
		Attempts     int64
		RequestCount int64
		Keys         map[string]KeyStatus
	}
)

// InspectIdentity reports the derived lifecycle state and every key's
// remaining lifetime. The code digest is never returned.
func (s *Usecase) InspectIdentity(ctx context.Context, in InspectIdentityInput) (*InspectIdentityOutput, error) {
	ctx, span := s.startSpan(ctx, "InspectIdentity")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, "otp.identity", "read")
	if err != nil {
		return nil, err
	}

	in.Email = entity.NormalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	keys := entity.KeysFor(in.Email)
	named := []struct {
		name string
		key  string
	}{
		{name: "lock", key: keys.Lock},
		{name: "spam_lock", key: keys.SpamLock},
		{name: "cooldown", key: keys.Cooldown},
		{name: "request_count", key: keys.RequestCount},
		{name: "otp_value", key: keys.Code},
		{name: "attempts", key: keys.Attempts},
	}

	out := &InspectIdentityOutput{Email: in.Email, Keys: make(map[string]KeyStatus, len(named))}
	for _, k := range named {
		n, err := s.store.Exists(ctx, k.key)
		if err != nil {
			slog.ErrorContext(ctx, "failed to check otp key", "email", in.Email, "key", k.name, "error", err)
			return nil, goerror.NewServer(err)
		}

		ttl, err := s.store.TTL(ctx, k.key)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read otp key ttl", "email", in.Email, "key", k.name, "error", err)
			return nil, goerror.NewServer(err)
		}

		out.Keys[k.name] = KeyStatus{Present: n > 0, TTL: ttl}
	}

	if out.Attempts, err = s.readCounter(ctx, keys.Attempts); err != nil {
		return nil, err
	}
	if out.RequestCount, err = s.readCounter(ctx, keys.RequestCount); err != nil {
		return nil, err
	}

	out.State = entity.Derive(out.Keys["lock"].Present, out.Keys["otp_value"].Present, out.Attempts).State

	slog.InfoContext(ctx, "otp identity inspected", "email", in.Email, "by", clm.Subject, "state", out.State.String())

	return out, nil
}

func (s *Usecase) readCounter(ctx context.Context, key string) (int64, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to read otp counter", "key", key, "error", err)
		return 0, goerror.NewServer(err)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "otp counter is not an integer", "key", key, "value", raw, "error", err)
		return 0, goerror.NewServer(err)
	}

	return n, nil
}
