package domain

import "time"

// ─── Transaction Types ──────────────────────────────────────────────────────

// TransactionStatus marks whether a ledger entry has settled.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "COMPLETED"
	TxPending   TransactionStatus = "PENDING"
)

// TimelineEvent is one rendered step of a delivery's route history.
type TimelineEvent struct {
	Time        string `json:"time"` // "15:04"
	Description string `json:"description"`
	Status      string `json:"status"` // "done" | "pending"
}

// TransactionDetails carries the expandable route summary of a delivery entry.
type TransactionDetails struct {
	Duration string          `json:"duration"`
	Stops    int             `json:"stops"`
	Timeline []TimelineEvent `json:"timeline"`
}

// Transaction is an append-only history entry, created on delivery completion
// and on balance anticipation. Never mutated after creation.
type Transaction struct {
	ID      string              `json:"id"`
	Type    string              `json:"type"`
	Amount  float64             `json:"amount"`
	Time    string              `json:"time"` // "15:04"
	Date    string              `json:"date"`
	WeekID  string              `json:"week_id"`
	Status  TransactionStatus   `json:"status"`
	Details *TransactionDetails `json:"details,omitempty"`
}

// ─── Route Timeline ─────────────────────────────────────────────────────────

// clockTime formats a timestamp the way the history panel displays it.
func clockTime(t time.Time) string { return t.Format("15:04") }

// DeliveryTimeline renders the synthetic route history of a completed
// delivery, walking backward from the completion time in fixed offsets
// (5, 3 and 5 minutes outward from the end). Timestamps are non-decreasing
// from first to last event and the list always terminates with "Fim da rota"
// at the completion time.
func DeliveryTimeline(end time.Time) []TimelineEvent {
	headedToCustomer := end.Add(-5 * time.Minute)
	arrivedAtStore := headedToCustomer.Add(-3 * time.Minute)
	accepted := arrivedAtStore.Add(-5 * time.Minute)

	return []TimelineEvent{
		{Time: clockTime(accepted), Description: "Rota aceita", Status: "done"},
		{Time: clockTime(accepted), Description: "Indo pra coleta", Status: "done"},
		{Time: clockTime(arrivedAtStore), Description: "Chegou na coleta", Status: "done"},
		{Time: clockTime(headedToCustomer), Description: "Saiu da coleta", Status: "done"},
		{Time: clockTime(headedToCustomer), Description: "Em direção ao cliente", Status: "done"},
		{Time: clockTime(end), Description: "Pedido entregue", Status: "done"},
		{Time: clockTime(end), Description: "Fim da rota", Status: "done"},
	}
}
