package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/notification/entity"
)

const queryCreateDeliveryLog = `
INSERT INTO notification_delivery_logs (id, event_id, email, template_id, channel, status)
VALUES ($1, $2, $3, $4, $5, $6)`

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateDeliveryLog,
		dl.ID,
		dl.EventID,
		dl.Email,
		dl.TemplateID,
		int16(dl.Channel),
		int16(dl.Status),
	)
	return s.mapError(err)
}
