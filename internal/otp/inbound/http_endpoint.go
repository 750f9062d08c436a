package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP request, verification and operator handlers.
type HTTPEndpoint struct {
	uc uc
}

// RequestCode issues a code to the given email.
// @Summary Request a one-time code
// @Description Admits the request, counts it against the window limit and sends a 6 digit code.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body RequestCodeRequest true "Request payload"
// @Success 202 {object} router.successResponse{data=RequestCodeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Locked, spam-locked or cooling down"
// @Failure 503 {object} router.errorResponse "Code could not be sent"
// @Router /api/v1/otp/request [post]
func (h *HTTPEndpoint) RequestCode(r *router.Request) (any, error) {
	var req RequestCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestCode(r.Context(), usecase.RequestCodeInput{
		Email:   req.Email,
		Name:    req.Name,
		Purpose: req.Purpose,
	}); err != nil {
		return nil, err
	}

	return RequestCodeResponse{}, nil
}

// ConfirmCode verifies a submitted code.
// @Summary Verify a one-time code
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body ConfirmCodeRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=ConfirmCodeResponse} "Code verified"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Incorrect, expired or malformed code"
// @Failure 429 {object} router.errorResponse "Locked"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) ConfirmCode(r *router.Request) (any, error) {
	var req ConfirmCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ConfirmCode(r.Context(), usecase.ConfirmCodeInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return ConfirmCodeResponse{Email: resp.Email, Verified: true}, nil
}

// Admission reports whether a code could be requested right now.
// @Summary Check admission
// @Tags OTP
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} router.successResponse{data=AdmissionResponse}
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/otp/admission [get]
func (h *HTTPEndpoint) Admission(r *router.Request) (any, error) {
	adm, err := h.uc.AdmitOtpRequest(r.Context(), usecase.AdmitOtpRequestInput{Email: r.GetQuery("email")})
	if err != nil {
		return nil, err
	}

	return AdmissionResponse{
		Admitted: adm.Admitted,
		Block:    string(adm.Block),
		Reason:   adm.Reason,
	}, nil
}

// InspectIdentity returns the OTP state of an identity.
// @Summary Inspect identity
// @Tags OTP, Operator
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} router.successResponse{data=InspectIdentityResponse}
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Router /api/v1/otp/identities/{email} [get]
func (h *HTTPEndpoint) InspectIdentity(r *router.Request) (any, error) {
	out, err := h.uc.InspectIdentity(r.Context(), usecase.InspectIdentityInput{Email: r.GetParam("email")})
	if err != nil {
		return nil, err
	}

	keys := make(map[string]KeyStatusResponse, len(out.Keys))
	for name, ks := range out.Keys {
		keys[name] = KeyStatusResponse{Present: ks.Present, TTLSeconds: int64(ks.TTL.Seconds())}
	}

	return InspectIdentityResponse{
		Email:        out.Email,
		State:        out.State.String(),
		Attempts:     out.Attempts,
		RequestCount: out.RequestCount,
		Keys:         keys,
	}, nil
}

// ResetIdentity clears every OTP key of an identity.
// @Summary Reset identity
// @Tags OTP, Operator
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 204 "Identity reset"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Router /api/v1/otp/identities/{email} [delete]
func (h *HTTPEndpoint) ResetIdentity(r *router.Request) (any, error) {
	if err := h.uc.ResetIdentity(r.Context(), usecase.ResetIdentityInput{Email: r.GetParam("email")}); err != nil {
		return nil, err
	}

	return ResetIdentityResponse{}, nil
}
