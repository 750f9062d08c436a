package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	AdmitOtpRequest(ctx context.Context, in usecase.AdmitOtpRequestInput) (entity.Admission, error)

	RequestCode(ctx context.Context, in usecase.RequestCodeInput) error
	ConfirmCode(ctx context.Context, in usecase.ConfirmCodeInput) (*usecase.ConfirmCodeOutput, error)

	InspectIdentity(ctx context.Context, in usecase.InspectIdentityInput) (*usecase.InspectIdentityOutput, error)
	ResetIdentity(ctx context.Context, in usecase.ResetIdentityInput) error
}

// RegisterHTTPEndpoint mounts the OTP routes. limit guards the endpoints
// that can be called anonymously and may be nil.
func RegisterHTTPEndpoint(r *router.Router, uc uc, limit router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp/request", end.RequestCode, limit)
	r.POST("/api/v1/otp/verify", end.ConfirmCode, limit)
	r.GET("/api/v1/otp/admission", end.Admission)

	// operators
	r.GET("/api/v1/otp/identities/:email", end.InspectIdentity)
	r.DELETE("/api/v1/otp/identities/:email", end.ResetIdentity)
}
