// internal/app/store/formindex/indexstore.go
package formindexstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store maintains the derived form -> project -> group-IDs index.
// Everything here is a read optimization: writes are best-effort and the
// reconciliation job can rebuild any document from the registration log.
type Store struct {
	c      *mongo.Collection
	groups *mongo.Collection
}

var ErrIndexExists = errors.New("form registration index already exists for this form")

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("form_registrations"),
		groups: db.Collection("group_registrations"),
	}
}

// InitForForm creates the index document with an empty group list per
// project.
func (s *Store) InitForForm(ctx context.Context, formID primitive.ObjectID, projectIDs []string) error {
	now := time.Now().UTC()

	regs := make([]models.ProjectRegistrations, 0, len(projectIDs))
	for _, pid := range projectIDs {
		regs = append(regs, models.ProjectRegistrations{
			ProjectID: pid,
			GroupIDs:  []primitive.ObjectID{},
		})
	}

	doc := models.FormRegistrationIndex{
		ID:                   primitive.NewObjectID(),
		FormID:               formID,
		ProjectRegistrations: regs,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrIndexExists
		}
		return err
	}
	return nil
}

// AddGroup records a committed group under its project. $addToSet keeps
// the operation idempotent, so a retried best-effort update cannot
// duplicate an entry.
func (s *Store) AddGroup(ctx context.Context, formID primitive.ObjectID, projectID string, groupID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"form_id": formID, "project_registrations.project_id": projectID},
		bson.M{
			"$addToSet": bson.M{"project_registrations.$.group_ids": groupID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) GetByFormID(ctx context.Context, formID primitive.ObjectID) (models.FormRegistrationIndex, error) {
	var doc models.FormRegistrationIndex
	if err := s.c.FindOne(ctx, bson.M{"form_id": formID}).Decode(&doc); err != nil {
		return models.FormRegistrationIndex{}, err
	}
	return doc, nil
}

// Rebuild regenerates one form's index document from the authoritative
// group_registrations log. Idempotent; used by the reconciliation job
// when a best-effort AddGroup was lost.
func (s *Store) Rebuild(ctx context.Context, formID primitive.ObjectID, projectIDs []string) error {
	cur, err := s.groups.Find(ctx, bson.M{"form_id": formID})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	byProject := make(map[string][]primitive.ObjectID, len(projectIDs))
	for _, pid := range projectIDs {
		byProject[pid] = []primitive.ObjectID{}
	}
	for cur.Next(ctx) {
		var g models.GroupRegistration
		if err := cur.Decode(&g); err != nil {
			return err
		}
		byProject[g.ProjectID] = append(byProject[g.ProjectID], g.ID)
	}
	if err := cur.Err(); err != nil {
		return err
	}

	regs := make([]models.ProjectRegistrations, 0, len(projectIDs))
	for _, pid := range projectIDs {
		regs = append(regs, models.ProjectRegistrations{ProjectID: pid, GroupIDs: byProject[pid]})
	}

	now := time.Now().UTC()
	_, err = s.c.UpdateOne(ctx,
		bson.M{"form_id": formID},
		bson.M{
			"$set": bson.M{
				"project_registrations": regs,
				"updated_at":            now,
			},
			"$setOnInsert": bson.M{
				"form_id":    formID,
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true))
	return err
}

// Delete removes the index document for a form.
func (s *Store) Delete(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"form_id": formID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
