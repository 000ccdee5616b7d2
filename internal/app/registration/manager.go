// internal/app/registration/manager.go

// Package registration implements the group-registration workflow: the
// validation sequence, the transactional commit, and the ledger
// initialization that precedes any registration on a form.
package registration

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	formindexstore "github.com/dalemusser/projecthub/internal/app/store/formindex"
	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	regstatusstore "github.com/dalemusser/projecthub/internal/app/store/regstatus"
	studentstore "github.com/dalemusser/projecthub/internal/app/store/students"
	"github.com/dalemusser/projecthub/internal/app/system/formlock"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/app/system/txn"
	"github.com/dalemusser/projecthub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrFormNotFound is returned by operations that address a form directly
// (initialize, status) when no such form exists. RegisterGroup folds the
// missing-form case into ErrFormUnavailable instead.
var ErrFormNotFound = errors.New("form not found")

// Manager coordinates registrations. All writes for one form are
// serialized through the per-form lock; on deployments with transaction
// support the commit additionally runs inside a session so a crash
// mid-commit cannot leave the ledger and the counters disagreeing.
type Manager struct {
	client   *mongo.Client
	forms    *formstore.Store
	students *studentstore.Store
	status   *regstatusstore.Store
	groups   *groupstore.Store
	index    *formindexstore.Store
	locks    *formlock.Set
	log      *zap.Logger

	// Sticky flag: once the server reports transactions unsupported we
	// stop trying and rely on the form lock alone.
	txnUnsupported atomic.Bool
}

func NewManager(client *mongo.Client, db *mongo.Database, log *zap.Logger) *Manager {
	return &Manager{
		client:   client,
		forms:    formstore.New(db),
		students: studentstore.New(db),
		status:   regstatusstore.New(db),
		groups:   groupstore.New(db),
		index:    formindexstore.New(db),
		locks:    formlock.New(),
		log:      log,
	}
}

// RegisterGroupInput is a fully parsed registration request. Student IDs
// may arrive in any case; the manager normalizes them.
type RegisterGroupInput struct {
	FormID       primitive.ObjectID
	ProjectIndex int
	ProjectID    string
	TeamLeader   string
	TeamMembers  []string
}

// RegisterGroup runs the full validation sequence and, if every check
// passes, commits the registration. Checks run in a fixed order so a
// request failing several ways always reports the same error:
//
//	form active -> ledger exists -> members unregistered -> project
//	valid -> capacity -> team size -> students on record
//
// The returned GroupRegistration carries the receipt ID the team can
// use to prove the registration later.
func (m *Manager) RegisterGroup(ctx context.Context, in RegisterGroupInput) (models.GroupRegistration, error) {
	leader := normalize.StudentID(in.TeamLeader)
	members := normalize.StudentIDs(in.TeamMembers)

	allIDs := make([]string, 0, 1+len(members))
	allIDs = append(allIDs, leader)
	allIDs = append(allIDs, members...)

	var invalid []string
	for _, id := range allIDs {
		if !normalize.IsValidStudentID(id) {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return models.GroupRegistration{}, &InvalidStudentIDError{IDs: invalid}
	}

	if dups := duplicates(allIDs); len(dups) > 0 {
		return models.GroupRegistration{}, &IneligibleStudentsError{IDs: dups}
	}

	key := in.FormID.Hex()
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	form, err := m.forms.GetByID(ctx, in.FormID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupRegistration{}, ErrFormUnavailable
		}
		return models.GroupRegistration{}, err
	}
	// An active form accepts registrations even before its start date.
	// Only the active flag and the end date gate; end_date covers forms
	// the deactivation sweep has not reached yet.
	now := time.Now().UTC()
	if !form.IsActive || now.After(form.EndDate) {
		return models.GroupRegistration{}, ErrFormUnavailable
	}

	ledger, err := m.status.GetByFormID(ctx, in.FormID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupRegistration{}, ErrLedgerMissing
		}
		return models.GroupRegistration{}, err
	}

	unregistered := make(map[string]bool, len(ledger.Unregistered))
	for _, e := range ledger.Unregistered {
		unregistered[e.StudentID] = true
	}
	var ineligible []string
	for _, id := range allIDs {
		if !unregistered[id] {
			ineligible = append(ineligible, id)
		}
	}
	if len(ineligible) > 0 {
		return models.GroupRegistration{}, &IneligibleStudentsError{IDs: ineligible}
	}

	if in.ProjectIndex < 0 || in.ProjectIndex >= len(form.Projects) {
		return models.GroupRegistration{}, ErrProjectNotFound
	}
	project := form.Projects[in.ProjectIndex]
	if project.IsDeleted {
		return models.GroupRegistration{}, ErrProjectNotFound
	}
	if in.ProjectID != "" && in.ProjectID != project.ProjectID {
		return models.GroupRegistration{}, ErrProjectMismatch
	}

	if project.RegisteredGroups >= project.MaxGroups {
		return models.GroupRegistration{}, ErrCapacityExceeded
	}

	size := len(allIDs)
	if size < project.MinMembers || size > project.MaxMembers {
		return models.GroupRegistration{}, &TeamSizeError{
			Min: project.MinMembers, Max: project.MaxMembers, Size: size,
		}
	}

	missing, err := m.students.MissingIDs(ctx, allIDs)
	if err != nil {
		return models.GroupRegistration{}, err
	}
	if len(missing) > 0 {
		return models.GroupRegistration{}, &UnknownStudentsError{IDs: missing}
	}

	group := models.GroupRegistration{
		FormID:       in.FormID,
		ProjectIndex: in.ProjectIndex,
		ProjectID:    project.ProjectID,
		TeamLeader:   leader,
		TeamMembers:  members,
		Year:         form.Year,
		RegisteredAt: now,
	}

	commit := func(cctx context.Context) error {
		if err := m.forms.IncrementRegisteredGroups(cctx, in.FormID, in.ProjectIndex); err != nil {
			if errors.Is(err, formstore.ErrNoSlot) {
				return ErrCapacityExceeded
			}
			return err
		}
		if err := m.status.MoveToRegistered(cctx, in.FormID, allIDs, project.ProjectID, now); err != nil {
			if errors.Is(err, regstatusstore.ErrConflict) {
				return ErrTransactionConflict
			}
			return err
		}
		g, err := m.groups.Append(cctx, group)
		if err != nil {
			return err
		}
		group = g
		return m.students.ApplyRegistration(cctx, allIDs, project.ProjectID, project.Title, in.FormID, now)
	}

	txnCtx, cancel := context.WithTimeout(ctx, timeouts.Txn())
	defer cancel()

	if err := m.commitWithFallback(txnCtx, commit); err != nil {
		return models.GroupRegistration{}, err
	}

	// Best effort: the index is derived and the reconcile job repairs it.
	if err := m.index.AddGroup(ctx, in.FormID, project.ProjectID, group.ID); err != nil {
		m.log.Warn("form index update failed; reconciliation will repair",
			zap.String("form_id", in.FormID.Hex()),
			zap.String("project_id", project.ProjectID),
			zap.Error(err))
	}

	m.log.Info("group registered",
		zap.String("form_id", in.FormID.Hex()),
		zap.String("project_id", project.ProjectID),
		zap.String("receipt_id", group.ReceiptID),
		zap.Int("team_size", size))
	return group, nil
}

// commitWithFallback runs commit inside a MongoDB transaction when the
// deployment supports them, otherwise plainly under the form lock the
// caller already holds.
func (m *Manager) commitWithFallback(ctx context.Context, commit func(context.Context) error) error {
	if m.txnUnsupported.Load() {
		return commit(ctx)
	}

	err := txn.Run(ctx, m.client, func(sc mongo.SessionContext) error {
		return commit(sc)
	})
	if err == nil {
		return nil
	}
	if txn.IsNotSupported(err) {
		m.txnUnsupported.Store(true)
		m.log.Warn("transactions unsupported by deployment; using lock-only commits")
		return commit(ctx)
	}
	if txn.IsConflict(err) {
		return ErrTransactionConflict
	}
	return err
}

// InitializeLedger creates the registration ledger for a form, seeding
// it with every student of the form's year. A form's ledger can only be
// created once; re-initialization is refused rather than merged.
func (m *Manager) InitializeLedger(ctx context.Context, formID primitive.ObjectID) (models.RegistrationStatus, error) {
	key := formID.Hex()
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	form, err := m.forms.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RegistrationStatus{}, ErrFormNotFound
		}
		return models.RegistrationStatus{}, err
	}

	students, err := m.students.ListByYear(ctx, strconv.Itoa(form.Year))
	if err != nil {
		return models.RegistrationStatus{}, err
	}
	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.StudentID)
	}

	status, err := m.status.Init(ctx, formID, form.Year, ids)
	if err != nil {
		if errors.Is(err, regstatusstore.ErrLedgerExists) {
			return models.RegistrationStatus{}, ErrLedgerExists
		}
		return models.RegistrationStatus{}, err
	}

	projectIDs := make([]string, 0, len(form.Projects))
	for _, p := range form.Projects {
		projectIDs = append(projectIDs, p.ProjectID)
	}
	if err := m.index.InitForForm(ctx, formID, projectIDs); err != nil &&
		!errors.Is(err, formindexstore.ErrIndexExists) {
		m.log.Warn("form index init failed; reconciliation will repair",
			zap.String("form_id", formID.Hex()), zap.Error(err))
	}

	m.log.Info("registration initialized",
		zap.String("form_id", formID.Hex()),
		zap.Int("year", form.Year),
		zap.Int("students", len(ids)))
	return status, nil
}

// ReconcileFormIndexes rebuilds the derived per-form project index from
// the registration log. Run periodically by the background job.
func (m *Manager) ReconcileFormIndexes(ctx context.Context) error {
	forms, err := m.forms.List(ctx, formstore.ListFilter{})
	if err != nil {
		return err
	}
	for _, f := range forms {
		projectIDs := make([]string, 0, len(f.Projects))
		for _, p := range f.Projects {
			projectIDs = append(projectIDs, p.ProjectID)
		}
		if err := m.index.Rebuild(ctx, f.ID, projectIDs); err != nil {
			m.log.Warn("form index rebuild failed",
				zap.String("form_id", f.ID.Hex()), zap.Error(err))
		}
	}
	return nil
}

func duplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
