package registration_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/registration"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setupManager(t *testing.T) (*registration.Manager, *testutil.Fixtures, *mongo.Database) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	m := registration.NewManager(db.Client(), db, zap.NewNop())
	return m, testutil.NewFixtures(t, db), db
}

func TestInitializeLedger(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ids := fx.CreateStudents(ctx, 5, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})

	status, err := m.InitializeLedger(ctx, form.ID)
	if err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	if len(status.Unregistered) != len(ids) {
		t.Errorf("unregistered count: got %d, want %d", len(status.Unregistered), len(ids))
	}
	if len(status.Registered) != 0 {
		t.Errorf("registered count: got %d, want 0", len(status.Registered))
	}
}

func TestInitializeLedger_Twice(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})

	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("first InitializeLedger failed: %v", err)
	}
	_, err := m.InitializeLedger(ctx, form.ID)
	if !errors.Is(err, registration.ErrLedgerExists) {
		t.Errorf("second InitializeLedger: got %v, want ErrLedgerExists", err)
	}
}

func TestInitializeLedger_UnknownForm(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := m.InitializeLedger(ctx, primitive.NewObjectID())
	if !errors.Is(err, registration.ErrFormNotFound) {
		t.Errorf("got %v, want ErrFormNotFound", err)
	}
}

func registerInput(form models.Form, leader string, members ...string) registration.RegisterGroupInput {
	return registration.RegisterGroupInput{
		FormID:       form.ID,
		ProjectIndex: 0,
		ProjectID:    form.Projects[0].ProjectID,
		TeamLeader:   leader,
		TeamMembers:  members,
	}
}

func TestRegisterGroup(t *testing.T) {
	m, fx, db := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 4, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}

	group, err := m.RegisterGroup(ctx, registerInput(form, "stu001", "STU002", "stu003"))
	if err != nil {
		t.Fatalf("RegisterGroup failed: %v", err)
	}
	if group.ReceiptID == "" {
		t.Error("expected a receipt ID")
	}
	if group.TeamLeader != "STU001" {
		t.Errorf("team leader: got %q, want STU001 (normalized)", group.TeamLeader)
	}
	if len(group.TeamMembers) != 2 {
		t.Errorf("team members: got %d, want 2", len(group.TeamMembers))
	}

	// Ledger moved the three students over.
	var status models.RegistrationStatus
	if err := db.Collection("registration_status").
		FindOne(ctx, map[string]any{"form_id": form.ID}).Decode(&status); err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(status.Registered) != 3 {
		t.Errorf("registered count: got %d, want 3", len(status.Registered))
	}
	if len(status.Unregistered) != 1 {
		t.Errorf("unregistered count: got %d, want 1", len(status.Unregistered))
	}

	// Counter bumped on the form.
	var got models.Form
	if err := db.Collection("project_forms").
		FindOne(ctx, map[string]any{"_id": form.ID}).Decode(&got); err != nil {
		t.Fatalf("load form: %v", err)
	}
	if got.Projects[0].RegisteredGroups != 1 {
		t.Errorf("registered_groups: got %d, want 1", got.Projects[0].RegisteredGroups)
	}
}

func TestRegisterGroup_ValidationOrder(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 6, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 3, 1),
		fx.Project("P02", "Database", 2, 3, 1),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	if _, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002")); err != nil {
		t.Fatalf("seed registration failed: %v", err)
	}

	t.Run("invalid ID format", func(t *testing.T) {
		_, err := m.RegisterGroup(ctx, registerInput(form, "STU1", "STU005"))
		var ie *registration.InvalidStudentIDError
		if !errors.As(err, &ie) {
			t.Fatalf("got %v, want InvalidStudentIDError", err)
		}
		if len(ie.IDs) != 1 || ie.IDs[0] != "STU1" {
			t.Errorf("offending IDs: got %v, want [STU1]", ie.IDs)
		}
	})

	t.Run("already registered", func(t *testing.T) {
		in := registerInput(form, "STU001", "STU005")
		in.ProjectIndex = 1
		in.ProjectID = "P02"
		_, err := m.RegisterGroup(ctx, in)
		var ie *registration.IneligibleStudentsError
		if !errors.As(err, &ie) {
			t.Fatalf("got %v, want IneligibleStudentsError", err)
		}
		if len(ie.IDs) != 1 || ie.IDs[0] != "STU001" {
			t.Errorf("offending IDs: got %v, want [STU001]", ie.IDs)
		}
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		_, err := m.RegisterGroup(ctx, registerInput(form, "STU004", "STU005"))
		if !errors.Is(err, registration.ErrCapacityExceeded) {
			t.Errorf("got %v, want ErrCapacityExceeded", err)
		}
	})

	t.Run("team too large", func(t *testing.T) {
		in := registerInput(form, "STU004", "STU005", "STU006", "STU007")
		in.ProjectIndex = 1
		in.ProjectID = "P02"
		_, err := m.RegisterGroup(ctx, in)
		var te *registration.TeamSizeError
		if !errors.As(err, &te) {
			t.Fatalf("got %v, want TeamSizeError", err)
		}
		if te.Size != 4 || te.Max != 3 {
			t.Errorf("TeamSizeError: got %+v", te)
		}
	})

	t.Run("unknown project index", func(t *testing.T) {
		in := registerInput(form, "STU004", "STU005")
		in.ProjectIndex = 9
		in.ProjectID = ""
		_, err := m.RegisterGroup(ctx, in)
		if !errors.Is(err, registration.ErrProjectNotFound) {
			t.Errorf("got %v, want ErrProjectNotFound", err)
		}
	})

	t.Run("project id mismatch", func(t *testing.T) {
		in := registerInput(form, "STU004", "STU005")
		in.ProjectIndex = 1
		in.ProjectID = "P01"
		_, err := m.RegisterGroup(ctx, in)
		if !errors.Is(err, registration.ErrProjectMismatch) {
			t.Errorf("got %v, want ErrProjectMismatch", err)
		}
	})
}

func TestRegisterGroup_MissingLedger(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})

	_, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002"))
	if !errors.Is(err, registration.ErrLedgerMissing) {
		t.Errorf("got %v, want ErrLedgerMissing", err)
	}
}

func TestRegisterGroup_InactiveForm(t *testing.T) {
	m, fx, db := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	if _, err := db.Collection("project_forms").UpdateOne(ctx,
		map[string]any{"_id": form.ID},
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate form: %v", err)
	}

	_, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002"))
	if !errors.Is(err, registration.ErrFormUnavailable) {
		t.Errorf("got %v, want ErrFormUnavailable", err)
	}
}

// An active form takes registrations even when its start date is still
// in the future; only is_active and the end date gate.
func TestRegisterGroup_FutureStartDate(t *testing.T) {
	m, fx, db := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	if _, err := db.Collection("project_forms").UpdateOne(ctx,
		map[string]any{"_id": form.ID},
		map[string]any{"$set": map[string]any{"start_date": time.Now().UTC().Add(time.Hour)}}); err != nil {
		t.Fatalf("push start date forward: %v", err)
	}

	if _, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002")); err != nil {
		t.Errorf("RegisterGroup before start date failed: %v", err)
	}
}

func TestRegisterGroup_ExpiredForm(t *testing.T) {
	m, fx, db := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	if _, err := db.Collection("project_forms").UpdateOne(ctx,
		map[string]any{"_id": form.ID},
		map[string]any{"$set": map[string]any{"end_date": time.Now().UTC().Add(-time.Minute)}}); err != nil {
		t.Fatalf("expire form: %v", err)
	}

	_, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002"))
	if !errors.Is(err, registration.ErrFormUnavailable) {
		t.Errorf("got %v, want ErrFormUnavailable", err)
	}
}

// Team size bounds are inclusive: exactly min and exactly max pass,
// below min fails the same way above max does.
func TestRegisterGroup_TeamSizeBounds(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 6, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 3, 3),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}

	t.Run("below minimum", func(t *testing.T) {
		_, err := m.RegisterGroup(ctx, registerInput(form, "STU006"))
		var te *registration.TeamSizeError
		if !errors.As(err, &te) {
			t.Fatalf("got %v, want TeamSizeError", err)
		}
		if te.Size != 1 || te.Min != 2 {
			t.Errorf("TeamSizeError: got %+v", te)
		}
	})

	t.Run("exactly minimum", func(t *testing.T) {
		if _, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002")); err != nil {
			t.Errorf("team of min size rejected: %v", err)
		}
	})

	t.Run("exactly maximum", func(t *testing.T) {
		if _, err := m.RegisterGroup(ctx, registerInput(form, "STU003", "STU004", "STU005")); err != nil {
			t.Errorf("team of max size rejected: %v", err)
		}
	})
}

func TestRegisterGroup_UnknownStudents(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 2, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	fx.CreateLedger(ctx, form.ID, 3, []string{"STU001", "STU002", "STU099"})

	_, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002", "STU099"))
	var ue *registration.UnknownStudentsError
	if !errors.As(err, &ue) {
		t.Fatalf("got %v, want UnknownStudentsError", err)
	}
	if len(ue.IDs) != 1 || ue.IDs[0] != "STU099" {
		t.Errorf("offending IDs: got %v, want [STU099]", ue.IDs)
	}
}

func TestRegisterGroup_DuplicateMembers(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 3, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 4, 2),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}

	_, err := m.RegisterGroup(ctx, registerInput(form, "STU001", "STU002", "stu001"))
	var ie *registration.IneligibleStudentsError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want IneligibleStudentsError", err)
	}
	if len(ie.IDs) != 1 || ie.IDs[0] != "STU001" {
		t.Errorf("offending IDs: got %v, want [STU001]", ie.IDs)
	}
}

// Two teams race for a project's last slot: exactly one wins.
func TestRegisterGroup_LastSlotRace(t *testing.T) {
	m, fx, _ := setupManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudents(ctx, 4, "3")
	form := fx.CreateForm(ctx, "Capstone 2026", 3, []models.Project{
		fx.Project("P01", "Compiler", 2, 2, 1),
	})
	if _, err := m.InitializeLedger(ctx, form.ID); err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}

	inputs := []registration.RegisterGroupInput{
		registerInput(form, "STU001", "STU002"),
		registerInput(form, "STU003", "STU004"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in registration.RegisterGroupInput) {
			defer wg.Done()
			_, errs[i] = m.RegisterGroup(ctx, in)
		}(i, in)
	}
	wg.Wait()

	var wins, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, registration.ErrCapacityExceeded):
			capacity++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || capacity != 1 {
		t.Errorf("got %d winners and %d capacity failures, want 1 and 1", wins, capacity)
	}
}
