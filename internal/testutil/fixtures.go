package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts a student with the given ID, name, and year.
func (f *Fixtures) CreateStudent(ctx context.Context, studentID, fullName, year string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	st := models.Student{
		ID:         primitive.NewObjectID(),
		StudentID:  studentID,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Year:       year,
		Department: "Computer Science",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return st
}

// CreateStudents inserts n students STU001..STU00n for the given year and
// returns their IDs in order.
func (f *Fixtures) CreateStudents(ctx context.Context, n int, year string) []string {
	f.t.Helper()

	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("STU%03d", i)
		f.CreateStudent(ctx, id, fmt.Sprintf("Student %03d", i), year)
		ids = append(ids, id)
	}
	return ids
}

// CreateForm inserts an active form open for the next 24 hours with the
// given projects.
func (f *Fixtures) CreateForm(ctx context.Context, name string, year int, projects []models.Project) models.Form {
	f.t.Helper()

	now := time.Now().UTC()
	form := models.Form{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Year:       year,
		ReleasedBy: "Test Coordinator",
		Projects:   projects,
		IsActive:   true,
		StartDate:  now.Add(-time.Hour),
		EndDate:    now.Add(24 * time.Hour),
		CreatedAt:  now,
	}

	if _, err := f.db.Collection("project_forms").InsertOne(ctx, form); err != nil {
		f.t.Fatalf("failed to create test form: %v", err)
	}
	return form
}

// Project builds a project definition for CreateForm.
func (f *Fixtures) Project(projectID, title string, minMembers, maxMembers, maxGroups int) models.Project {
	return models.Project{
		ProjectID:  projectID,
		Title:      title,
		MinMembers: minMembers,
		MaxMembers: maxMembers,
		MaxGroups:  maxGroups,
	}
}

// CreateLedger seeds the registration ledger for a form with the given
// students unregistered.
func (f *Fixtures) CreateLedger(ctx context.Context, formID primitive.ObjectID, year int, studentIDs []string) models.RegistrationStatus {
	f.t.Helper()

	now := time.Now().UTC()
	unregistered := make([]models.UnregisteredEntry, 0, len(studentIDs))
	for _, id := range studentIDs {
		unregistered = append(unregistered, models.UnregisteredEntry{StudentID: id, AddedDate: now})
	}

	status := models.RegistrationStatus{
		ID:           primitive.NewObjectID(),
		FormID:       formID,
		Year:         year,
		Unregistered: unregistered,
		Registered:   []models.RegisteredEntry{},
		CreatedAt:    now,
	}

	if _, err := f.db.Collection("registration_status").InsertOne(ctx, status); err != nil {
		f.t.Fatalf("failed to create test ledger: %v", err)
	}
	return status
}
