package db

import "context"

const schemaDeliveryLog = `
CREATE TABLE IF NOT EXISTS notification_delivery_logs (
	id                BIGINT PRIMARY KEY,
	event_id          BIGINT NOT NULL UNIQUE,
	email             VARCHAR(320) NOT NULL,
	template_id       VARCHAR(100) NOT NULL,
	channel           SMALLINT NOT NULL,
	status            SMALLINT NOT NULL,
	provider_response JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the delivery log table when it is missing.
func (s *DB) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureSchema")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, schemaDeliveryLog)
	return s.mapError(err)
}
