package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/render"
)

type mockRepoDB struct {
	mock.Mock
}

func (m *mockRepoDB) CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) error {
	return m.Called(ctx, dl).Error(0)
}

func (m *mockRepoDB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) error {
	return m.Called(ctx, u).Error(0)
}

type mockRepoMail struct {
	mock.Mock
}

func (m *mockRepoMail) Send(ctx context.Context, to, subject string, body render.Output) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type fixedID int64

func (f fixedID) Generate() int64 { return int64(f) }

type fixture struct {
	uc   *Usecase
	db   *mockRepoDB
	mail *mockRepoMail
	mr   *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	r, err := render.New(map[string]any{"company_name": "otpgate"})
	require.NoError(t, err)

	f := fixture{db: new(mockRepoDB), mail: new(mockRepoMail), mr: mr}
	f.uc = New(Dependency{
		RepoDB:      f.db,
		RepoMail:    f.mail,
		Renderer:    r,
		Idempotency: idempotency.New(rdb, "idempotency:"),
		Validator:   v,
		UID:         fixedID(7),
		Instrument:  instrument.NewNoop(),
	})

	return f
}

func issued() ConsumeOtpIssuedInput {
	return ConsumeOtpIssuedInput{
		EventID:    1001,
		Email:      "a@example.com",
		Name:       "Ann",
		TemplateID: "user-activation-email",
		Subject:    "Verify your email",
		Data:       map[string]any{"otp": "482913", "expires_in_minutes": 5},
	}
}

var queuedLog = entity.CreateDeliveryLog{
	ID:         7,
	EventID:    1001,
	Email:      "a@example.com",
	TemplateID: "user-activation-email",
	Channel:    entity.ChannelEmail,
	Status:     entity.DeliveryStatusQueued,
}

func hasCode(body render.Output) bool {
	return strings.Contains(body.HTML, "482913") && strings.Contains(body.Text, "482913")
}

func TestUsecase_ConsumeOtpIssued_Delivered(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.db.On("CreateDeliveryLog", mock.Anything, queuedLog).Return(nil).Once()
	f.mail.On("Send", mock.Anything, "a@example.com", "Verify your email", mock.MatchedBy(hasCode)).Return(nil).Once()
	f.db.On("UpdateDeliveryLogStatus", mock.Anything, entity.UpdateDeliveryLog{ID: 7, Status: entity.DeliveryStatusSent}).
		Return(nil).Once()

	// Act
	first := f.uc.ConsumeOtpIssued(context.Background(), issued())
	redelivered := f.uc.ConsumeOtpIssued(context.Background(), issued())

	// Assert
	assert.NoError(t, first)
	assert.NoError(t, redelivered)
	assert.True(t, f.mr.Exists("idempotency:otp_issued:1001"))
	f.db.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestUsecase_ConsumeOtpIssued_MailFails(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.db.On("CreateDeliveryLog", mock.Anything, queuedLog).Return(nil)
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("550 mailbox unavailable"))
	f.db.On("UpdateDeliveryLogStatus", mock.Anything, entity.UpdateDeliveryLog{
		ID:               7,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: map[string]any{"error": "550 mailbox unavailable"},
	}).Return(nil)

	// Act
	err := f.uc.ConsumeOtpIssued(context.Background(), issued())

	// Assert
	assert.NoError(t, err)
	f.db.AssertExpectations(t)
}

func TestUsecase_ConsumeOtpIssued_StoreFailureRedelivers(t *testing.T) {
	// Arrange
	f := newFixture(t)
	errDB := errors.New("connection refused")
	f.db.On("CreateDeliveryLog", mock.Anything, queuedLog).Return(errDB).Once()
	f.db.On("CreateDeliveryLog", mock.Anything, queuedLog).Return(nil).Once()
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.db.On("UpdateDeliveryLogStatus", mock.Anything, mock.Anything).Return(nil).Once()

	// Act
	first := f.uc.ConsumeOtpIssued(context.Background(), issued())
	retry := f.uc.ConsumeOtpIssued(context.Background(), issued())

	// Assert
	assert.ErrorIs(t, first, errDB)
	assert.NoError(t, retry)
	f.db.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestUsecase_ConsumeOtpIssued_Dropped(t *testing.T) {
	tests := []struct {
		name   string
		in     func() ConsumeOtpIssuedInput
		mockFn func(f fixture)
	}{
		{
			name: "invalid event",
			in: func() ConsumeOtpIssuedInput {
				in := issued()
				in.EventID = 0
				return in
			},
			mockFn: func(fixture) {},
		},
		{
			name: "unknown template",
			in: func() ConsumeOtpIssuedInput {
				in := issued()
				in.TemplateID = "sms-login"
				return in
			},
			mockFn: func(fixture) {},
		},
		{
			name: "log row exists",
			in:   issued,
			mockFn: func(f fixture) {
				f.db.On("CreateDeliveryLog", mock.Anything, queuedLog).Return(goerror.ErrConflict)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			tt.mockFn(f)

			// Act
			err := f.uc.ConsumeOtpIssued(context.Background(), tt.in())

			// Assert
			assert.NoError(t, err)
			f.db.AssertExpectations(t)
			f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
