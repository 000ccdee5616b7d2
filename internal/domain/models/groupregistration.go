// internal/domain/models/groupregistration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupRegistration is the permanent record of one committed team
// registration. Documents in group_registrations are append-only and
// immutable once written; the ledger and project counters are derived
// from this log if they ever need rebuilding.
//
// TeamLeader and TeamMembers hold normalized (uppercase, trimmed)
// student IDs. ProjectIndex addresses the project inside the form's
// embedded projects array; ProjectID is stored alongside it so the log
// stays readable even if the form document is inspected separately.
type GroupRegistration struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiptID    string             `bson:"receipt_id" json:"receipt_id"`
	FormID       primitive.ObjectID `bson:"form_id" json:"form_id"`
	ProjectIndex int                `bson:"project_index" json:"project_index"`
	ProjectID    string             `bson:"project_id" json:"project_id"`
	TeamLeader   string             `bson:"team_leader" json:"team_leader"`
	TeamMembers  []string           `bson:"team_members" json:"team_members"`
	Year         int                `bson:"year" json:"year"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registered_at"`
}
