// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Queue names used by publisher and consumer.
const (
	UserRegisteredQueue   = "user.registered"
	DealStageChangedQueue = "deal.stage_changed"
)

// UserRegisteredEvent is published after a successful registration. It
// carries enough for downstream consumers (analytics, CRM sync) without
// querying the primary database. No credential material is ever included.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// DealStageChangedEvent is published when a deal moves between pipeline
// stages, forming the audit trail of the Kanban board.
type DealStageChangedEvent struct {
	EventID   string `json:"event_id"`
	DealID    uint64 `json:"deal_id"`
	DealName  string `json:"deal_name"`
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
	ChangedBy uint64 `json:"changed_by"`
	ChangedAt string `json:"changed_at"`
}
