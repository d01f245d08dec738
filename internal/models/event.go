package models

import "time"

// Типы событий жизненного цикла подписки. Используются и как routing key.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionRenewed = "subscription.renewed"
	EventSubscriptionRemoved = "subscription.removed"
)

// SubscriptionEvent: сообщение о зафиксированном изменении подписки.
type SubscriptionEvent struct {
	Type           string     `json:"type"`
	UserUID        string     `json:"user_id"`
	SubscriptionID int        `json:"subscription_id"`
	ServiceName    string     `json:"service_name,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
