package formstore_test

import (
	"errors"
	"testing"
	"time"

	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
)

func setupStore(t *testing.T) *formstore.Store {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return formstore.New(db)
}

func sampleForm(name string, maxGroups int) models.Form {
	now := time.Now().UTC()
	return models.Form{
		Name: name,
		Year: 3,
		Projects: []models.Project{
			{ProjectID: "P01", Title: "Compiler", MinMembers: 2, MaxMembers: 4, MaxGroups: maxGroups},
		},
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	}
}

func TestCreate_RequiresProjects(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := sampleForm("Capstone", 2)
	f.Projects = nil
	_, err := s.Create(ctx, f)
	if !errors.Is(err, formstore.ErrNoProjects) {
		t.Errorf("got %v, want ErrNoProjects", err)
	}
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.Create(ctx, sampleForm("Capstone 2026", 2)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := s.Create(ctx, sampleForm("CAPSTONE 2026", 2))
	if !errors.Is(err, formstore.ErrDuplicateFormName) {
		t.Errorf("got %v, want ErrDuplicateFormName", err)
	}
}

func TestCreate_ZeroesCounters(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := sampleForm("Capstone", 2)
	f.Projects[0].RegisteredGroups = 99
	f.Projects[0].IsDeleted = true

	created, err := s.Create(ctx, f)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Projects[0].RegisteredGroups != 0 || created.Projects[0].IsDeleted {
		t.Errorf("counters not reset: %+v", created.Projects[0])
	}
}

func TestIncrementRegisteredGroups_StopsAtMax(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form, err := s.Create(ctx, sampleForm("Capstone", 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.IncrementRegisteredGroups(ctx, form.ID, 0); err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
	}

	err = s.IncrementRegisteredGroups(ctx, form.ID, 0)
	if !errors.Is(err, formstore.ErrNoSlot) {
		t.Errorf("third increment: got %v, want ErrNoSlot", err)
	}

	got, err := s.GetByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Projects[0].RegisteredGroups != 2 {
		t.Errorf("registered_groups: got %d, want 2", got.Projects[0].RegisteredGroups)
	}
}

func TestSoftDeleteProject(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form, err := s.Create(ctx, sampleForm("Capstone", 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.SoftDeleteProject(ctx, form.ID, "P01"); err != nil {
		t.Fatalf("SoftDeleteProject failed: %v", err)
	}
	got, err := s.GetByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Projects[0].IsDeleted {
		t.Error("project not marked deleted")
	}
	if len(got.Projects) != 1 {
		t.Error("soft delete must not remove array entries")
	}

	err = s.SoftDeleteProject(ctx, form.ID, "P99")
	if !errors.Is(err, formstore.ErrProjectNotFound) {
		t.Errorf("got %v, want ErrProjectNotFound", err)
	}
}

func TestDeactivateExpired(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expired := sampleForm("Old Form", 2)
	expired.EndDate = time.Now().UTC().Add(-time.Hour)
	if _, err := s.Create(ctx, expired); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Create(ctx, sampleForm("Current Form", 2)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := s.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeactivateExpired failed: %v", err)
	}
	if count != 1 {
		t.Errorf("deactivated: got %d, want 1", count)
	}

	// Idempotent: a second sweep finds nothing.
	count, err = s.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("second DeactivateExpired failed: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep deactivated %d, want 0", count)
	}
}

func TestList_Filters(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f1 := sampleForm("Year Three", 2)
	if _, err := s.Create(ctx, f1); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f2 := sampleForm("Year Two", 2)
	f2.Year = 2
	f2.IsActive = false
	if _, err := s.Create(ctx, f2); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := s.List(ctx, formstore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all: got %d forms, want 2", len(all))
	}

	active, err := s.List(ctx, formstore.ListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Year Three" {
		t.Errorf("active: got %v", active)
	}

	year2, err := s.List(ctx, formstore.ListFilter{Year: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(year2) != 1 || year2[0].Name != "Year Two" {
		t.Errorf("year filter: got %v", year2)
	}
}
