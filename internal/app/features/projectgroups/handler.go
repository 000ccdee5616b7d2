// internal/app/features/projectgroups/handler.go

// Package projectgroups exposes the registration API: committing a team
// to a project, initializing a form's ledger, and the status and report
// reads built on top of the ledger.
package projectgroups

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/projecthub/internal/app/registration"
	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	regstatusstore "github.com/dalemusser/projecthub/internal/app/store/regstatus"
	studentstore "github.com/dalemusser/projecthub/internal/app/store/students"
	"github.com/dalemusser/projecthub/internal/app/system/httpjson"
	"github.com/dalemusser/projecthub/internal/domain/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Manager  *registration.Manager
	Forms    *formstore.Store
	Status   *regstatusstore.Store
	Groups   *groupstore.Store
	Students *studentstore.Store
	Log      *zap.Logger
}

func NewHandler(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Manager:  registration.NewManager(client, db, logger),
		Forms:    formstore.New(db),
		Status:   regstatusstore.New(db),
		Groups:   groupstore.New(db),
		Students: studentstore.New(db),
		Log:      logger,
	}
}

type registerRequest struct {
	FormID       string   `json:"formId"`
	ProjectIndex int      `json:"projectIndex"`
	ProjectID    string   `json:"projectId"`
	TeamLeader   string   `json:"teamLeader"`
	TeamMembers  []string `json:"teamMembers"`
}

type receiptResponse struct {
	ReceiptID    string   `json:"receiptId"`
	FormID       string   `json:"formId"`
	ProjectIndex int      `json:"projectIndex"`
	ProjectID    string   `json:"projectId"`
	TeamLeader   string   `json:"teamLeader"`
	TeamMembers  []string `json:"teamMembers"`
	Year         int      `json:"year"`
	RegisteredAt string   `json:"registeredAt"`
}

// Register handles POST /project-groups/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	formID, err := primitive.ObjectIDFromHex(req.FormID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid formId")
		return
	}

	group, err := h.Manager.RegisterGroup(r.Context(), registration.RegisterGroupInput{
		FormID:       formID,
		ProjectIndex: req.ProjectIndex,
		ProjectID:    req.ProjectID,
		TeamLeader:   req.TeamLeader,
		TeamMembers:  req.TeamMembers,
	})
	if err != nil {
		h.writeRegistrationError(w, err)
		return
	}

	httpjson.OK(w, http.StatusCreated, "group registered", receiptResponse{
		ReceiptID:    group.ReceiptID,
		FormID:       group.FormID.Hex(),
		ProjectIndex: group.ProjectIndex,
		ProjectID:    group.ProjectID,
		TeamLeader:   group.TeamLeader,
		TeamMembers:  group.TeamMembers,
		Year:         group.Year,
		RegisteredAt: group.RegisteredAt.Format(time.RFC3339),
	})
}

// writeRegistrationError maps the registration error taxonomy onto the
// JSON envelope. Conflict-class failures (capacity, write races) are
// 409; everything the caller can fix in the payload is 400.
func (h *Handler) writeRegistrationError(w http.ResponseWriter, err error) {
	var (
		invalidErr    *registration.InvalidStudentIDError
		ineligibleErr *registration.IneligibleStudentsError
		unknownErr    *registration.UnknownStudentsError
		sizeErr       *registration.TeamSizeError
	)
	switch {
	case errors.As(err, &invalidErr):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(),
			"INVALID_STUDENT_ID", map[string]any{"studentIds": invalidErr.IDs})
	case errors.As(err, &ineligibleErr):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(),
			"INELIGIBLE_STUDENTS", map[string]any{"studentIds": ineligibleErr.IDs})
	case errors.As(err, &unknownErr):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(),
			"UNKNOWN_STUDENTS", map[string]any{"studentIds": unknownErr.IDs})
	case errors.As(err, &sizeErr):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(),
			"TEAM_SIZE_INVALID", map[string]any{
				"min": sizeErr.Min, "max": sizeErr.Max, "size": sizeErr.Size,
			})
	case errors.Is(err, registration.ErrFormUnavailable):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(), "FORM_UNAVAILABLE", nil)
	case errors.Is(err, registration.ErrLedgerMissing):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(), "LEDGER_MISSING", nil)
	case errors.Is(err, registration.ErrProjectNotFound):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(), "PROJECT_NOT_FOUND", nil)
	case errors.Is(err, registration.ErrProjectMismatch):
		httpjson.FailTyped(w, http.StatusBadRequest, err.Error(), "PROJECT_MISMATCH", nil)
	case errors.Is(err, registration.ErrCapacityExceeded):
		httpjson.FailTyped(w, http.StatusConflict, err.Error(), "CAPACITY_EXCEEDED", nil)
	case errors.Is(err, registration.ErrTransactionConflict):
		httpjson.FailTyped(w, http.StatusConflict, err.Error(), "TRANSACTION_CONFLICT", nil)
	default:
		httpjson.ServerError(w, h.Log, "register group", err)
	}
}

type initializeRequest struct {
	FormID string `json:"formId"`
	Year   int    `json:"year"`
}

// InitializeRegistration handles POST /project-groups/initialize-registration.
// It seeds the form's ledger with every student of the form's year. A
// second call for the same form is refused with 409.
func (h *Handler) InitializeRegistration(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	formID, err := primitive.ObjectIDFromHex(req.FormID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid formId")
		return
	}

	status, err := h.Manager.InitializeLedger(r.Context(), formID)
	switch {
	case err == nil:
	case errors.Is(err, registration.ErrFormNotFound):
		httpjson.FailTyped(w, http.StatusNotFound, err.Error(), "FORM_NOT_FOUND", nil)
		return
	case errors.Is(err, registration.ErrLedgerExists):
		httpjson.FailTyped(w, http.StatusConflict, err.Error(), "LEDGER_EXISTS", nil)
		return
	default:
		httpjson.ServerError(w, h.Log, "initialize registration", err)
		return
	}

	if req.Year != 0 && req.Year != status.Year {
		h.Log.Warn("initialize year mismatch ignored",
			zap.Int("payload_year", req.Year), zap.Int("form_year", status.Year))
	}

	httpjson.OK(w, http.StatusCreated, "registration initialized", map[string]any{
		"formId":       status.FormID.Hex(),
		"year":         status.Year,
		"unregistered": len(status.Unregistered),
	})
}

// RegistrationStatus handles GET /project-groups/registration-status/{formID}.
func (h *Handler) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	status, err := h.Status.GetByFormID(r.Context(), formID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.FailTyped(w, http.StatusNotFound,
				"registration has not been initialized for this form", "LEDGER_MISSING", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "load registration status", err)
		return
	}

	httpjson.OK(w, http.StatusOK, "registration status", map[string]any{
		"formId":       status.FormID.Hex(),
		"year":         status.Year,
		"registered":   status.Registered,
		"unregistered": status.Unregistered,
	})
}

// ListGroups handles GET /project-groups/{formID}: committed
// registrations for the form, newest first.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	groups, err := h.Groups.ListByForm(r.Context(), formID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list groups", err)
		return
	}
	if groups == nil {
		groups = []models.GroupRegistration{}
	}

	httpjson.OK(w, http.StatusOK, "registered groups", groups)
}

type studentReportEntry struct {
	StudentID  string `json:"studentId"`
	FullName   string `json:"fullName"`
	Registered bool   `json:"registered"`
	ProjectID  string `json:"projectId,omitempty"`
}

// StudentsByForm handles GET /project-groups/students/{formID}: the form
// plus a per-student registered/unregistered report joined with the
// directory.
func (h *Handler) StudentsByForm(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	form, err := h.Forms.GetByID(r.Context(), formID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.FailTyped(w, http.StatusNotFound, "form not found", "FORM_NOT_FOUND", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "load form", err)
		return
	}

	status, err := h.Status.GetByFormID(r.Context(), formID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.FailTyped(w, http.StatusNotFound,
				"registration has not been initialized for this form", "LEDGER_MISSING", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "load registration status", err)
		return
	}

	students, err := h.Students.ListByYear(r.Context(), strconv.Itoa(form.Year))
	if err != nil {
		httpjson.ServerError(w, h.Log, "list students", err)
		return
	}

	registered := make(map[string]string, len(status.Registered))
	for _, e := range status.Registered {
		registered[e.StudentID] = e.ProjectID
	}

	report := make([]studentReportEntry, 0, len(students))
	for _, st := range students {
		pid, isReg := registered[st.StudentID]
		report = append(report, studentReportEntry{
			StudentID:  st.StudentID,
			FullName:   st.FullName,
			Registered: isReg,
			ProjectID:  pid,
		})
	}

	httpjson.OK(w, http.StatusOK, "students by form", map[string]any{
		"form":     form,
		"students": report,
	})
}
