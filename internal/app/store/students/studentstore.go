// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateStudentID = errors.New("a student with this ID already exists")
	ErrInvalidStudentID   = errors.New("student ID must be STU followed by three digits")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// Create inserts a new student. The student ID is normalized to
// uppercase and validated against the STU### format before insert.
func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	st.StudentID = normalize.StudentID(st.StudentID)
	if !normalize.IsValidStudentID(st.StudentID) {
		return models.Student{}, ErrInvalidStudentID
	}

	now := time.Now().UTC()
	st.ID = primitive.NewObjectID()
	st.FullNameCI = text.Fold(st.FullName)
	st.IsRegistered = false
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, st)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateStudentID
		}
		return models.Student{}, err
	}
	return st, nil
}

// GetByStudentID looks up one student by normalized student ID.
func (s *Store) GetByStudentID(ctx context.Context, studentID string) (models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"student_id": normalize.StudentID(studentID)}).Decode(&st)
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// ListByYear returns every student of the given year, ordered by ID.
func (s *Store) ListByYear(ctx context.Context, year string) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "student_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"year": year}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Student
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MissingIDs returns which of the given normalized student IDs have no
// directory record, preserving input order.
func (s *Store) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"student_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"student_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	found := make(map[string]bool, len(ids))
	for cur.Next(ctx) {
		var doc struct {
			StudentID string `bson:"student_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		found[doc.StudentID] = true
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ApplyRegistration writes the denormalized registration mirror onto
// every student in ids. It runs inside the registration transaction when
// ctx is a session context; the ledger remains the source of truth.
func (s *Store) ApplyRegistration(ctx context.Context, ids []string, projectID, projectTitle string, formID primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"student_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"project_id":        projectID,
			"project_title":     projectTitle,
			"form_id":           formID,
			"is_registered":     true,
			"registration_date": at,
			"updated_at":        time.Now().UTC(),
		}})
	return err
}
