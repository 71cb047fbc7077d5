package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/metaspex/interviews/internal/service"
)

// CampaignHandler handles campaign authoring endpoints.
type CampaignHandler struct {
	svc *service.CampaignService
}

func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{svc: svc}
}

// CreateCampaignRequest is the request body for creating a campaign.
type CreateCampaignRequest struct {
	Name            string    `json:"name"`
	QuestionnaireID string    `json:"questionnaire_id"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// Create handles POST /v1/campaigns.
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}

	c, err := h.svc.Create(r.Context(), req.Name, req.QuestionnaireID, req.StartsAt, req.EndsAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"campaignId": c.ID})
}

// Get handles GET /v1/campaigns/{id}.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":               c.ID,
		"name":             c.Name,
		"questionnaire_id": c.QuestionnaireID,
		"starts_at":        c.StartsAt,
		"ends_at":          c.EndsAt,
	})
}

// IssueInterviewerTokenRequest is the request body for minting a
// campaign-scoped interviewer token.
type IssueInterviewerTokenRequest struct {
	InterviewerID string `json:"interviewer_id"`
}

// IssueInterviewerToken handles POST /v1/campaigns/{id}/interviewer-tokens.
func (h *CampaignHandler) IssueInterviewerToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req IssueInterviewerTokenRequest
	if !decodeJSON(r, &req) || req.InterviewerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "interviewer_id is required"})
		return
	}

	token, err := h.svc.IssueInterviewerToken(r.Context(), id, req.InterviewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}
