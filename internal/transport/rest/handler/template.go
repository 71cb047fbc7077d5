package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/service"
)

// TemplateHandler handles the template-question library's authoring
// endpoints.
type TemplateHandler struct {
	svc *service.TemplateService
}

func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory handles POST /v1/template-categories.
func (h *TemplateHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(r, &req) || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "name is required"})
		return
	}

	cat, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// ListQuestions handles GET /v1/template-categories/{id}/questions.
func (h *TemplateHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]

	questions, err := h.svc.ListByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// CreateQuestion handles POST /v1/template-categories/{id}/questions.
func (h *TemplateHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]

	var src compiler.SourceTemplateQuestion
	if !decodeJSON(r, &src) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}
	src.CategoryID = categoryID

	tq, err := h.svc.CreateQuestion(r.Context(), categoryID, &src)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": tq.ID, "label": tq.Label})
}

// CreateLocalization handles POST /v1/template-questions/{id}/localizations.
func (h *TemplateHandler) CreateLocalization(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["id"]

	var src compiler.SourceTemplateQuestionLocalization
	if !decodeJSON(r, &src) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}

	loc, err := h.svc.CreateQuestionLocalization(r.Context(), templateID, &src)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": loc.ID, "language": loc.Language})
}
