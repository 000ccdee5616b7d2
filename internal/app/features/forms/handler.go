// internal/app/features/forms/handler.go

// Package forms exposes the admin surface for project forms: creating
// and listing forms, toggling availability, soft-deleting projects, and
// exporting registrations.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	formindexstore "github.com/dalemusser/projecthub/internal/app/store/formindex"
	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	regstatusstore "github.com/dalemusser/projecthub/internal/app/store/regstatus"
	"github.com/dalemusser/projecthub/internal/app/system/csvexport"
	"github.com/dalemusser/projecthub/internal/app/system/httpjson"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Forms    *formstore.Store
	Status   *regstatusstore.Store
	Groups   *groupstore.Store
	Index    *formindexstore.Store
	Log      *zap.Logger
	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Forms:    formstore.New(db),
		Status:   regstatusstore.New(db),
		Groups:   groupstore.New(db),
		Index:    formindexstore.New(db),
		Log:      logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

type projectRequest struct {
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MinMembers  int    `json:"minMembers"`
	MaxMembers  int    `json:"maxMembers"`
	MaxGroups   int    `json:"maxGroups"`
}

type createRequest struct {
	Name       string           `json:"name"`
	Year       int              `json:"year"`
	ReleasedBy string           `json:"releasedBy"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	Projects   []projectRequest `json:"projects"`
}

func (h *Handler) validateCreate(req *createRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Year < 1 || req.Year > 4 {
		return "year must be between 1 and 4"
	}
	if len(req.Projects) == 0 {
		return "at least one project is required"
	}
	if !req.EndDate.After(req.StartDate) {
		return "endDate must be after startDate"
	}
	seen := make(map[string]bool, len(req.Projects))
	for i, p := range req.Projects {
		switch {
		case p.ProjectID == "":
			return fmt.Sprintf("projects[%d]: projectId is required", i)
		case seen[p.ProjectID]:
			return fmt.Sprintf("projects[%d]: duplicate projectId %q", i, p.ProjectID)
		case p.MinMembers < 1 || p.MaxMembers < p.MinMembers:
			return fmt.Sprintf("projects[%d]: invalid member bounds", i)
		case p.MaxGroups < 1:
			return fmt.Sprintf("projects[%d]: maxGroups must be at least 1", i)
		}
		seen[p.ProjectID] = true
	}
	return ""
}

// Create handles POST /project-forms. Admin-supplied text is run through
// the strict sanitizer before storage. The derived registration index is
// seeded here; the ledger is seeded by the explicit initialize call.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := h.validateCreate(&req); msg != "" {
		httpjson.Fail(w, http.StatusBadRequest, msg)
		return
	}

	projects := make([]models.Project, 0, len(req.Projects))
	for _, p := range req.Projects {
		projects = append(projects, models.Project{
			ProjectID:   h.sanitize.Sanitize(p.ProjectID),
			Title:       h.sanitize.Sanitize(p.Title),
			Description: h.sanitize.Sanitize(p.Description),
			MinMembers:  p.MinMembers,
			MaxMembers:  p.MaxMembers,
			MaxGroups:   p.MaxGroups,
		})
	}

	form, err := h.Forms.Create(r.Context(), models.Form{
		Name:       h.sanitize.Sanitize(req.Name),
		Year:       req.Year,
		ReleasedBy: h.sanitize.Sanitize(req.ReleasedBy),
		Projects:   projects,
		IsActive:   true,
		StartDate:  req.StartDate.UTC(),
		EndDate:    req.EndDate.UTC(),
	})
	if err != nil {
		if errors.Is(err, formstore.ErrDuplicateFormName) {
			httpjson.FailTyped(w, http.StatusConflict, err.Error(), "DUPLICATE_FORM_NAME", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "create form", err)
		return
	}

	projectIDs := make([]string, 0, len(form.Projects))
	for _, p := range form.Projects {
		projectIDs = append(projectIDs, p.ProjectID)
	}
	if err := h.Index.InitForForm(r.Context(), form.ID, projectIDs); err != nil {
		h.Log.Warn("form index seed failed; reconciliation will repair",
			zap.String("form_id", form.ID.Hex()), zap.Error(err))
	}

	httpjson.OK(w, http.StatusCreated, "form created", form)
}

// List handles GET /project-forms with optional year and active query
// filters. Soft-deleted projects are hidden from the listing; committed
// groups still reference them by index internally.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter formstore.ListFilter
	if y := normalize.QueryParam(r.URL.Query().Get("year")); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "invalid year filter")
			return
		}
		filter.Year = year
	}
	filter.ActiveOnly = normalize.QueryParam(r.URL.Query().Get("active")) == "true"

	forms, err := h.Forms.List(r.Context(), filter)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list forms", err)
		return
	}

	for i := range forms {
		visible := forms[i].Projects[:0:0]
		for _, p := range forms[i].Projects {
			if !p.IsDeleted {
				visible = append(visible, p)
			}
		}
		forms[i].Projects = visible
	}
	if forms == nil {
		forms = []models.Form{}
	}

	httpjson.OK(w, http.StatusOK, "forms", forms)
}

// Get handles GET /project-forms/{formID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	httpjson.OK(w, http.StatusOK, "form", form)
}

type toggleRequest struct {
	IsActive bool `json:"isActive"`
}

// Toggle handles POST /project-forms/{formID}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	var req toggleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	form, err := h.Forms.SetActive(r.Context(), formID, req.IsActive)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.FailTyped(w, http.StatusNotFound, "form not found", "FORM_NOT_FOUND", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "toggle form", err)
		return
	}

	httpjson.OK(w, http.StatusOK, "form updated", form)
}

// Delete handles DELETE /project-forms/{formID}: removes the form, its
// ledger, and its derived index. The append-only registration log is
// left intact.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	deleted, err := h.Forms.Delete(r.Context(), formID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "delete form", err)
		return
	}
	if deleted == 0 {
		httpjson.FailTyped(w, http.StatusNotFound, "form not found", "FORM_NOT_FOUND", nil)
		return
	}

	if _, err := h.Status.Delete(r.Context(), formID); err != nil {
		h.Log.Warn("delete ledger failed", zap.String("form_id", formID.Hex()), zap.Error(err))
	}
	if _, err := h.Index.Delete(r.Context(), formID); err != nil {
		h.Log.Warn("delete form index failed", zap.String("form_id", formID.Hex()), zap.Error(err))
	}

	httpjson.OK(w, http.StatusOK, "form deleted", nil)
}

// DeleteProject handles DELETE /project-forms/{formID}/projects/{projectID}:
// a soft delete that hides the project from new registrations without
// disturbing project indexes used by committed groups.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	formID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "formID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid form ID")
		return
	}
	projectID := chi.URLParam(r, "projectID")

	if err := h.Forms.SoftDeleteProject(r.Context(), formID, projectID); err != nil {
		if errors.Is(err, formstore.ErrProjectNotFound) {
			httpjson.FailTyped(w, http.StatusNotFound, err.Error(), "PROJECT_NOT_FOUND", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "soft delete project", err)
		return
	}

	httpjson.OK(w, http.StatusOK, "project removed from form", nil)
}

// ExportCSV handles GET /project-forms/{formID}/registrations.csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
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

	groups, err := h.Groups.ListByForm(r.Context(), formID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list registrations", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "registrations-"+formID.Hex()+".csv"))
	if err := csvexport.WriteRegistrations(w, form, groups); err != nil {
		h.Log.Error("write registrations csv", zap.Error(err))
	}
}
