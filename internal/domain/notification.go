package domain

import "time"

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType classifies an inbox entry for icon/priority rendering.
type NotificationType string

const (
	NotifyFinancial NotificationType = "FINANCIAL"
	NotifyUrgent    NotificationType = "URGENT"
	NotifyPromotion NotificationType = "PROMOTION"
	NotifySystem    NotificationType = "SYSTEM"
)

// Notification is one entry in the driver's inbox.
type Notification struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Date  time.Time        `json:"date"`
	Type  NotificationType `json:"type"`
	Read  bool             `json:"read"`
}
