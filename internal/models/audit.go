package models

import "time"

// AuditEntry records one mutating operation: who did what to which entity.
type AuditEntry struct {
	EntryID    string    `json:"entry_id"`
	ActorID    string    `json:"actor_id"`
	ActorRole  Role      `json:"actor_role"`
	Action     string    `json:"action"` // e.g. "row.create", "bulletin.lock"
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}
