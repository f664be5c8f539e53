package domain

import "time"

// Actions recorded on case transitions.
const (
	ActionSubmitted       = "Submitted"
	ActionAssigned        = "Assigned"
	ActionReportCompleted = "Report Completed"
	ActionPDFAttached     = "PDF Attached"
)

// SystemActorName marks history entries with no acting user.
const SystemActorName = "System"

// HistoryEntry is one append-only audit record for a case. ActorName is a
// snapshot taken at write time so the trail survives account removal.
// Entries are never mutated or deleted; display order is newest-first.
type HistoryEntry struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	CaseID    string    `json:"case_id" bson:"case_id"`
	ActorID   string    `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	ActorName string    `json:"actor_name" bson:"actor_name"`
	Action    string    `json:"action" bson:"action"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
