package groupstore_test

import (
	"testing"
	"time"

	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupStore(t *testing.T) *groupstore.Store {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return groupstore.New(db)
}

func TestAppend(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := s.Append(ctx, models.GroupRegistration{
		FormID:      primitive.NewObjectID(),
		ProjectID:   "P01",
		TeamLeader:  "STU001",
		TeamMembers: []string{"STU002"},
		Year:        3,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if g.ID.IsZero() {
		t.Error("expected generated document ID")
	}
	if g.ReceiptID == "" {
		t.Error("expected generated receipt ID")
	}
	if g.RegisteredAt.IsZero() {
		t.Error("expected registration timestamp")
	}
}

func TestListByForm_NewestFirst(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	formID := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)
	for i, leader := range []string{"STU001", "STU003", "STU005"} {
		_, err := s.Append(ctx, models.GroupRegistration{
			FormID:       formID,
			ProjectID:    "P01",
			TeamLeader:   leader,
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	// A registration for another form must not appear.
	if _, err := s.Append(ctx, models.GroupRegistration{
		FormID: primitive.NewObjectID(), ProjectID: "P01", TeamLeader: "STU009",
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := s.ListByForm(ctx, formID)
	if err != nil {
		t.Fatalf("ListByForm failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d groups, want 3", len(got))
	}
	if got[0].TeamLeader != "STU005" || got[2].TeamLeader != "STU001" {
		t.Errorf("wrong order: %v, %v, %v", got[0].TeamLeader, got[1].TeamLeader, got[2].TeamLeader)
	}
}
