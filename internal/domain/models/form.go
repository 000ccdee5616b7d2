// internal/domain/models/form.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is one registerable project embedded in a form.
//
// RegisteredGroups counts committed team registrations and satisfies
// 0 <= RegisteredGroups <= MaxGroups at all times. It is incremented only
// inside a committed registration transaction and never decremented
// (there is no unregister operation).
//
// Projects are soft-deleted only: committed groups reference them by
// index into the form's Projects slice, so positions must never shift.
type Project struct {
	ProjectID        string `bson:"project_id" json:"project_id"`
	Title            string `bson:"title" json:"title"`
	Description      string `bson:"description,omitempty" json:"description,omitempty"`
	MinMembers       int    `bson:"min_members" json:"min_members"`
	MaxMembers       int    `bson:"max_members" json:"max_members"`
	MaxGroups        int    `bson:"max_groups" json:"max_groups"`
	RegisteredGroups int    `bson:"registered_groups" json:"registered_groups"`
	IsDeleted        bool   `bson:"is_deleted" json:"is_deleted"`
}

// Form is a year-scoped, time-bounded announcement of projects open for
// team registration. IsActive gates whether registration is accepted;
// the deactivation sweep flips it once EndDate has passed.
type Form struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"name_ci"`
	Year       int                `bson:"year" json:"year"`
	ReleasedBy string             `bson:"released_by,omitempty" json:"released_by,omitempty"`
	Projects   []Project          `bson:"projects" json:"projects"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	StartDate  time.Time          `bson:"start_date" json:"start_date"`
	EndDate    time.Time          `bson:"end_date" json:"end_date"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
