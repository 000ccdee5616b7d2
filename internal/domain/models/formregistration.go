// internal/domain/models/formregistration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectRegistrations maps one project to the committed group
// registrations recorded against it.
type ProjectRegistrations struct {
	ProjectID string               `bson:"project_id" json:"project_id"`
	GroupIDs  []primitive.ObjectID `bson:"group_ids" json:"group_ids"`
}

// FormRegistrationIndex is the derived form -> project -> groups index.
// It is a read optimization only: updates to it are best-effort and it is
// rebuilt from the group_registrations log by the reconciliation job, so
// it may briefly lag the authoritative ledger.
type FormRegistrationIndex struct {
	ID                   primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	FormID               primitive.ObjectID     `bson:"form_id" json:"form_id"`
	ProjectRegistrations []ProjectRegistrations `bson:"project_registrations" json:"project_registrations"`
	CreatedAt            time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time              `bson:"updated_at" json:"updated_at"`
}
