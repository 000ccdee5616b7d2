// internal/app/store/forms/formstore.go
package formstore

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	ErrDuplicateFormName = errors.New("a form with this name already exists")
	ErrNoProjects        = errors.New("a form requires at least one project")
	ErrNoSlot            = errors.New("no slots available for this project")
	ErrProjectNotFound   = errors.New("project not found in form")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_forms")}
}

// Create inserts a new form. Projects always start with zero registered
// groups regardless of what the caller supplied.
func (s *Store) Create(ctx context.Context, f models.Form) (models.Form, error) {
	if len(f.Projects) == 0 {
		return models.Form{}, ErrNoProjects
	}
	for i := range f.Projects {
		f.Projects[i].RegisteredGroups = 0
		f.Projects[i].IsDeleted = false
	}

	f.ID = primitive.NewObjectID()
	f.NameCI = text.Fold(f.Name)
	f.CreatedAt = time.Now().UTC()

	_, err := s.c.InsertOne(ctx, f)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Form{}, ErrDuplicateFormName
		}
		return models.Form{}, err
	}
	return f, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Form, error) {
	var f models.Form
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return models.Form{}, err
	}
	return f, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Year       int
	ActiveOnly bool
}

// List returns forms newest first, optionally filtered by year and
// active status.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Form, error) {
	q := bson.M{}
	if filter.Year != 0 {
		q["year"] = filter.Year
	}
	if filter.ActiveOnly {
		q["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Form
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetActive flips the form's active flag and returns the updated form.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (models.Form, error) {
	var f models.Form
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&f)
	if err != nil {
		return models.Form{}, err
	}
	return f, nil
}

// SoftDeleteProject marks the project with projectID as deleted without
// moving any array positions; committed groups reference projects by
// index, so entries are never removed.
func (s *Store) SoftDeleteProject(ctx context.Context, formID primitive.ObjectID, projectID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": formID, "projects.project_id": projectID},
		bson.M{"$set": bson.M{"projects.$.is_deleted": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes a form. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IncrementRegisteredGroups bumps the registered-group counter for the
// project at index idx by exactly one, guarded so the counter can never
// pass max_groups: the filter only matches while a slot is free, so a
// losing racer observes ErrNoSlot instead of overselling.
func (s *Store) IncrementRegisteredGroups(ctx context.Context, formID primitive.ObjectID, idx int) error {
	counter := fmt.Sprintf("projects.%d.registered_groups", idx)
	guard := fmt.Sprintf("$projects.%d.max_groups", idx)

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": formID,
			"$expr": bson.M{"$lt": bson.A{
				"$" + counter,
				guard,
			}},
		},
		bson.M{"$inc": bson.M{counter: 1}})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrNoSlot
	}
	return nil
}

// DeactivateExpired flips is_active off for every active form whose end
// date has passed. Idempotent; returns the number of forms deactivated.
func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"is_active": true, "end_date": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
