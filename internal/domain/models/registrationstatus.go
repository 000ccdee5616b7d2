// internal/domain/models/registrationstatus.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnregisteredEntry is a student still eligible to register on a form.
type UnregisteredEntry struct {
	StudentID string    `bson:"student_id" json:"student_id"`
	AddedDate time.Time `bson:"added_date" json:"added_date"`
}

// RegisteredEntry is a student who has registered on a form, with the
// project and time denormalized for status listings.
type RegisteredEntry struct {
	StudentID        string             `bson:"student_id" json:"student_id"`
	ProjectID        string             `bson:"project_id" json:"project_id"`
	FormID           primitive.ObjectID `bson:"form_id" json:"form_id"`
	RegistrationDate time.Time          `bson:"registration_date" json:"registration_date"`
}

// RegistrationStatus is the per-form registration ledger: the
// authoritative record of which students have and have not registered.
//
// Invariants:
//   - Exactly one ledger per form (unique index on form_id).
//   - Unregistered and Registered are disjoint; a student moves from
//     Unregistered to Registered exactly once, irreversibly, and only
//     inside a committed registration transaction.
type RegistrationStatus struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FormID       primitive.ObjectID  `bson:"form_id" json:"form_id"`
	Year         int                 `bson:"year" json:"year"`
	Unregistered []UnregisteredEntry `bson:"unregistered" json:"unregistered"`
	Registered   []RegisteredEntry   `bson:"registered" json:"registered"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}
