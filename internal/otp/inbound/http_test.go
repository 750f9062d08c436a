package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type mockUC struct {
	mock.Mock
}

func (m *mockUC) AdmitOtpRequest(ctx context.Context, in usecase.AdmitOtpRequestInput) (entity.Admission, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(entity.Admission), args.Error(1)
}

func (m *mockUC) RequestCode(ctx context.Context, in usecase.RequestCodeInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockUC) ConfirmCode(ctx context.Context, in usecase.ConfirmCodeInput) (*usecase.ConfirmCodeOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.ConfirmCodeOutput)
	return out, args.Error(1)
}

func (m *mockUC) InspectIdentity(ctx context.Context, in usecase.InspectIdentityInput) (*usecase.InspectIdentityOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.InspectIdentityOutput)
	return out, args.Error(1)
}

func (m *mockUC) ResetIdentity(ctx context.Context, in usecase.ResetIdentityInput) error {
	return m.Called(ctx, in).Error(0)
}

type operatorVerifier struct{}

func (operatorVerifier) Verify(token string) (jwt.Claims, error) {
	if token != "ops-token" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{Email: "ops@example.com", Role: "admin"}, nil
}

type fixedUUID struct{}

func (fixedUUID) Generate() string { return "cid" }

const publicYAML = `
router:
  public_endpoints:
    - "POST /api/v1/otp/request"
    - "POST /api/v1/otp/verify"
    - "GET /api/v1/otp/admission"
`

func newServer(t *testing.T, uc uc, limit router.Middleware) *router.Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(publicYAML))
	require.NoError(t, err)

	ro := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       fixedUUID{},
		JWT:        operatorVerifier{},
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(ro, uc, limit)

	return ro
}

func serve(ro http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHTTPEndpoint_RequestCode(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		mockFn     func(uc *mockUC)
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "sent",
			payload:    `{"email":"a@example.com","name":"Ann","purpose":"activation"}`,
			wantStatus: http.StatusAccepted,
			wantMsg:    "code sent",
			mockFn: func(uc *mockUC) {
				uc.On("RequestCode", mock.Anything, usecase.RequestCodeInput{
					Email: "a@example.com", Name: "Ann", Purpose: "activation",
				}).Return(nil)
			},
		},
		{
			name:       "cooldown",
			payload:    `{"email":"a@example.com","purpose":"activation"}`,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "retry after 1 minute",
			mockFn: func(uc *mockUC) {
				uc.On("RequestCode", mock.Anything, mock.Anything).
					Return(goerror.NewBusiness("retry after 1 minute", goerror.CodeTooManyRequest))
			},
		},
		{
			name:       "unknown field",
			payload:    `{"email":"a@example.com","otp":"1"}`,
			wantStatus: http.StatusBadRequest,
			mockFn:     func(*mockUC) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			uc := new(mockUC)
			tt.mockFn(uc)
			ro := newServer(t, uc, nil)

			// Act
			rec := serve(ro, http.MethodPost, "/api/v1/otp/request", tt.payload, "")

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body(t, rec)["message"])
			}
			uc.AssertExpectations(t)
		})
	}
}

func TestHTTPEndpoint_ConfirmCode(t *testing.T) {
	// Arrange
	uc := new(mockUC)
	uc.On("ConfirmCode", mock.Anything, usecase.ConfirmCodeInput{Email: "a@example.com", Code: "123456"}).
		Return(&usecase.ConfirmCodeOutput{Email: "a@example.com"}, nil)
	ro := newServer(t, uc, nil)

	// Act
	rec := serve(ro, http.MethodPost, "/api/v1/otp/verify", `{"email":"a@example.com","code":"123456"}`, "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	out := body(t, rec)
	assert.Equal(t, "code verified", out["message"])
	assert.Equal(t, map[string]any{"email": "a@example.com", "verified": true}, out["data"])
}

func TestHTTPEndpoint_Admission(t *testing.T) {
	// Arrange
	uc := new(mockUC)
	uc.On("AdmitOtpRequest", mock.Anything, usecase.AdmitOtpRequestInput{Email: "a@example.com"}).
		Return(entity.Admission{Block: entity.BlockLock, Reason: "locked, retry after 30 minutes"}, nil)
	ro := newServer(t, uc, nil)

	// Act
	rec := serve(ro, http.MethodGet, "/api/v1/otp/admission?email=a@example.com", "", "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	data := body(t, rec)["data"].(map[string]any)
	assert.Equal(t, false, data["admitted"])
	assert.Equal(t, "lock", data["block"])
}

func TestHTTPEndpoint_Operator(t *testing.T) {
	t.Run("inspect requires token", func(t *testing.T) {
		// Arrange
		ro := newServer(t, new(mockUC), nil)

		// Act
		rec := serve(ro, http.MethodGet, "/api/v1/otp/identities/a@example.com", "", "")

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inspect", func(t *testing.T) {
		// Arrange
		uc := new(mockUC)
		uc.On("InspectIdentity", mock.Anything, usecase.InspectIdentityInput{Email: "a@example.com"}).
			Return(&usecase.InspectIdentityOutput{
				Email:    "a@example.com",
				State:    entity.StateFailing,
				Attempts: 2,
				Keys: map[string]usecase.KeyStatus{
					"otp_value": {Present: true, TTL: 90 * time.Second},
				},
			}, nil)
		ro := newServer(t, uc, nil)

		// Act
		rec := serve(ro, http.MethodGet, "/api/v1/otp/identities/a@example.com", "", "ops-token")

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		data := body(t, rec)["data"].(map[string]any)
		assert.Equal(t, entity.StateFailing.String(), data["state"])
		assert.EqualValues(t, 2, data["attempts"])
		keys := data["keys"].(map[string]any)
		assert.EqualValues(t, 90, keys["otp_value"].(map[string]any)["ttl_seconds"])
	})

	t.Run("reset", func(t *testing.T) {
		// Arrange
		uc := new(mockUC)
		uc.On("ResetIdentity", mock.Anything, usecase.ResetIdentityInput{Email: "a@example.com"}).Return(nil)
		ro := newServer(t, uc, nil)

		// Act
		rec := serve(ro, http.MethodDelete, "/api/v1/otp/identities/a@example.com", "", "ops-token")

		// Assert
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		uc.AssertExpectations(t)
	})
}

func TestHTTPEndpoint_RateLimited(t *testing.T) {
	// Arrange
	uc := new(mockUC)
	uc.On("RequestCode", mock.Anything, mock.Anything).Return(nil).Once()
	rl := router.NewRateLimiter(1, 1, time.Minute)
	t.Cleanup(func() { _ = rl.Close() })
	ro := newServer(t, uc, rl.Limit)
	payload := `{"email":"a@example.com","purpose":"activation"}`

	// Act
	first := serve(ro, http.MethodPost, "/api/v1/otp/request", payload, "")
	second := serve(ro, http.MethodPost, "/api/v1/otp/request", payload, "")

	// Assert
	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	uc.AssertExpectations(t)
}
