// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the append-only log of committed team registrations.
// Documents are never updated or deleted by the application.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_registrations")}
}

// Append writes one committed team registration and returns it with its
// generated IDs and timestamp filled in. Caller has already normalized
// and validated the member IDs.
func (s *Store) Append(ctx context.Context, g models.GroupRegistration) (models.GroupRegistration, error) {
	g.ID = primitive.NewObjectID()
	g.ReceiptID = uuid.NewString()
	if g.RegisteredAt.IsZero() {
		g.RegisteredAt = time.Now().UTC()
	}
	if g.TeamMembers == nil {
		g.TeamMembers = []string{}
	}

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.GroupRegistration{}, err
	}
	return g, nil
}

// ListByForm returns a form's committed registrations, newest first.
func (s *Store) ListByForm(ctx context.Context, formID primitive.ObjectID) ([]models.GroupRegistration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"form_id": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupRegistration
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
