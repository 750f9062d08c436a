package entity

// CreateDeliveryLog is the row written before a code is handed to the mail
// provider. EventID ties it back to the otp_issued event.
type CreateDeliveryLog struct {
	ID         int64
	EventID    int64
	Email      string
	TemplateID string
	Channel    Channel
	Status     DeliveryStatus
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	ProviderResponse map[string]any
}
