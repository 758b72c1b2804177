package models

import "time"

// Activity actions recorded against the append-only log.
const (
	ActivityActionCreate      = "CREATE"
	ActivityActionUpdate      = "UPDATE"
	ActivityActionDelete      = "DELETE"
	ActivityActionRecalculate = "RECALCULATE"
	ActivityActionBulkImport  = "BULK_IMPORT"
)

// Entity types referenced by activity entries.
const (
	ActivityEntityStudent = "student"
	ActivityEntityModule  = "module"
	ActivityEntityResult  = "result"
)

// ActivityEntry is a display-only audit record. It is never read back into
// aggregation logic.
type ActivityEntry struct {
	ID          string    `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    string    `db:"entity_id" json:"entity_id"`
	Description string    `db:"description" json:"description"`
	PerformedBy string    `db:"performed_by" json:"performed_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
