// internal/app/features/students/handler.go

// Package students exposes the student directory: enrollment, listing,
// and lookup by student ID.
package students

import (
	"errors"
	"net/http"

	studentstore "github.com/dalemusser/projecthub/internal/app/store/students"
	"github.com/dalemusser/projecthub/internal/app/system/httpjson"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Students *studentstore.Store
	Log      *zap.Logger
	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Students: studentstore.New(db),
		Log:      logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

type createRequest struct {
	StudentID  string `json:"studentId"`
	FullName   string `json:"fullName"`
	Year       string `json:"year"`
	Department string `json:"department"`
}

// Create handles POST /students.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := normalize.Name(h.sanitize.Sanitize(req.FullName))
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "fullName is required")
		return
	}
	if !normalize.IsValidYear(req.Year) {
		httpjson.Fail(w, http.StatusBadRequest, "year must be 1, 2, 3, or 4")
		return
	}

	student, err := h.Students.Create(r.Context(), models.Student{
		StudentID:  req.StudentID,
		FullName:   name,
		Year:       normalize.Year(req.Year),
		Department: h.sanitize.Sanitize(req.Department),
	})
	if err != nil {
		switch {
		case errors.Is(err, studentstore.ErrInvalidStudentID):
			httpjson.FailTyped(w, http.StatusBadRequest, err.Error(), "INVALID_STUDENT_ID", nil)
		case errors.Is(err, studentstore.ErrDuplicateStudentID):
			httpjson.FailTyped(w, http.StatusConflict, err.Error(), "DUPLICATE_STUDENT_ID", nil)
		default:
			httpjson.ServerError(w, h.Log, "create student", err)
		}
		return
	}

	httpjson.OK(w, http.StatusCreated, "student enrolled", student)
}

// List handles GET /students?year=N.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	year := normalize.QueryParam(r.URL.Query().Get("year"))
	if year == "" {
		httpjson.Fail(w, http.StatusBadRequest, "year query parameter is required")
		return
	}
	if !normalize.IsValidYear(year) {
		httpjson.Fail(w, http.StatusBadRequest, "year must be 1, 2, 3, or 4")
		return
	}

	students, err := h.Students.ListByYear(r.Context(), year)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list students", err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}

	httpjson.OK(w, http.StatusOK, "students", students)
}

// Get handles GET /students/{studentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := normalize.StudentID(chi.URLParam(r, "studentID"))
	if !normalize.IsValidStudentID(id) {
		httpjson.FailTyped(w, http.StatusBadRequest,
			"student ID must be STU followed by three digits", "INVALID_STUDENT_ID", nil)
		return
	}

	student, err := h.Students.GetByStudentID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.FailTyped(w, http.StatusNotFound, "student not found", "STUDENT_NOT_FOUND", nil)
			return
		}
		httpjson.ServerError(w, h.Log, "load student", err)
		return
	}

	httpjson.OK(w, http.StatusOK, "student", student)
}
