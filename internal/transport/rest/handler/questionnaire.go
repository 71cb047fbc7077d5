package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/service"
)

// QuestionnaireHandler handles questionnaire authoring endpoints.
type QuestionnaireHandler struct {
	svc *service.QuestionnaireService
}

func NewQuestionnaireHandler(svc *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{svc: svc}
}

// Create handles POST /v1/questionnaires.
func (h *QuestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	var src compiler.SourceQuestionnaire
	if !decodeJSON(r, &src) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}

	qn, ql, err := h.svc.Create(r.Context(), &src)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"questionnaireId": qn.ID,
		"localizationId":  ql.ID,
	})
}

// CreateLocalization handles POST /v1/questionnaires/{id}/localizations.
func (h *QuestionnaireHandler) CreateLocalization(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var src compiler.SourceQuestionnaireLocalization
	if !decodeJSON(r, &src) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}

	ql, err := h.svc.CreateLocalization(r.Context(), id, &src)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"localizationId": ql.ID, "language": ql.Language})
}
