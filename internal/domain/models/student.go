// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is one record in the student directory.
//
// NOTE:
//   - StudentID is the human-facing identifier (STU001 style), stored
//     uppercase; ID is the Mongo document id.
//   - The registration fields (ProjectID, ProjectTitle, FormID,
//     IsRegistered, RegistrationDate) mirror the registration ledger and
//     are written only by a committed registration transaction. The
//     ledger is the source of truth; these are a read-side convenience.
type Student struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  string             `bson:"student_id" json:"student_id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Year       string             `bson:"year" json:"year"`                 // "1".."4"
	Department string             `bson:"department,omitempty" json:"department,omitempty"`

	ProjectID        string              `bson:"project_id,omitempty" json:"project_id,omitempty"`
	ProjectTitle     string              `bson:"project_title,omitempty" json:"project_title,omitempty"`
	FormID           *primitive.ObjectID `bson:"form_id,omitempty" json:"form_id,omitempty"`
	IsRegistered     bool                `bson:"is_registered" json:"is_registered"`
	RegistrationDate *time.Time          `bson:"registration_date,omitempty" json:"registration_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
