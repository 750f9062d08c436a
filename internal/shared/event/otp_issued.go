package event

import "time"

const OtpIssuedDestination string = "otp_issued"
const OtpIssuedConsumerNotification string = "otp_issued_notification"

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

// OtpIssuedMessage asks the notification module to deliver a code. Data
// holds the template variables, including the code itself.
type OtpIssuedMessage struct {
	EventID       int64          `json:"event_id,string"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	TemplateID    string         `json:"template_id"`
	Subject       string         `json:"subject"`
	Data          map[string]any `json:"data"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}
