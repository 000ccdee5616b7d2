// internal/app/store/regstatus/statusstore.go
package regstatusstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrLedgerExists signals a second initialize call for a form that
	// already has a ledger. Initialization never merges.
	ErrLedgerExists = errors.New("registration ledger already exists for this form")

	// ErrConflict signals that the guarded ledger move matched nothing:
	// at least one student left the unregistered set between validation
	// and commit.
	ErrConflict = errors.New("registration ledger changed during commit")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registration_status")}
}

// Init seeds the ledger for a form: every given student unregistered,
// nobody registered. The unique index on form_id makes a second call
// fail with ErrLedgerExists rather than duplicating or merging entries.
func (s *Store) Init(ctx context.Context, formID primitive.ObjectID, year int, studentIDs []string) (models.RegistrationStatus, error) {
	now := time.Now().UTC()

	unregistered := make([]models.UnregisteredEntry, 0, len(studentIDs))
	for _, id := range studentIDs {
		unregistered = append(unregistered, models.UnregisteredEntry{
			StudentID: id,
			AddedDate: now,
		})
	}

	status := models.RegistrationStatus{
		ID:           primitive.NewObjectID(),
		FormID:       formID,
		Year:         year,
		Unregistered: unregistered,
		Registered:   []models.RegisteredEntry{},
		CreatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, status); err != nil {
		if wafflemongo.IsDup(err) {
			return models.RegistrationStatus{}, ErrLedgerExists
		}
		return models.RegistrationStatus{}, err
	}
	return status, nil
}

func (s *Store) GetByFormID(ctx context.Context, formID primitive.ObjectID) (models.RegistrationStatus, error) {
	var st models.RegistrationStatus
	if err := s.c.FindOne(ctx, bson.M{"form_id": formID}).Decode(&st); err != nil {
		return models.RegistrationStatus{}, err
	}
	return st, nil
}

// MoveToRegistered moves the given students from the unregistered set to
// the registered set in a single guarded update. The filter requires
// every ID to still be unregistered, so a concurrent registration that
// claimed any of them makes this call match nothing and return
// ErrConflict — the disjoint-set invariant can never be violated.
func (s *Store) MoveToRegistered(ctx context.Context, formID primitive.ObjectID, ids []string, projectID string, at time.Time) error {
	entries := make([]models.RegisteredEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, models.RegisteredEntry{
			StudentID:        id,
			ProjectID:        projectID,
			FormID:           formID,
			RegistrationDate: at,
		})
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"form_id":                 formID,
			"unregistered.student_id": bson.M{"$all": ids},
		},
		bson.M{
			"$pull": bson.M{"unregistered": bson.M{"student_id": bson.M{"$in": ids}}},
			"$push": bson.M{"registered": bson.M{"$each": entries}},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes the ledger for a form (used when the form itself is
// deleted). Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"form_id": formID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
