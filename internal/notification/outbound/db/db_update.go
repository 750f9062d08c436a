package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const queryUpdateDeliveryLogStatus = `
UPDATE notification_delivery_logs
SET status = $1, provider_response = $2, updated_at = NOW()
WHERE id = $3`

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	resp := u.ProviderResponse
	if resp == nil {
		resp = map[string]any{}
	}

	tag, err := s.conn.Exec(ctx, queryUpdateDeliveryLogStatus, int16(u.Status), resp, u.ID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
