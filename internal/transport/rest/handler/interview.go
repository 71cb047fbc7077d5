package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/metaspex/interviews/internal/interview"
	"github.com/metaspex/interviews/internal/model"
	"github.com/metaspex/interviews/internal/service"
	"github.com/metaspex/interviews/internal/transport/rest/middleware"
)

// InterviewHandler handles the respondent-facing interview surface:
// Start, Submit, Revise and the current-state read.
type InterviewHandler struct {
	svc *service.InterviewService
}

func NewInterviewHandler(svc *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

// StartRequest carries the optional facts a respondent or field
// interviewer can attach to Start; everything else is derived from the
// request itself.
type StartRequest struct {
	IntervieweeID   string `json:"interviewee_id,omitempty"`
	Geolocation     string `json:"geolocation,omitempty"`
	InterviewerUser string `json:"interviewer_user,omitempty"`
}

// Start handles POST /v1/campaigns/{id}/interviews?language=xx.
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["id"]
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}

	var req StartRequest
	decodeJSON(r, &req) // an absent or empty body is valid; every field is optional.

	meta := interview.StartMeta{
		Timestamp:       time.Now().UnixMilli(),
		IPAddress:       clientIP(r),
		Geolocation:     req.Geolocation,
		IntervieweeID:   req.IntervieweeID,
		InterviewerID:   middleware.GetInterviewerID(r.Context()),
		InterviewerUser: req.InterviewerUser,
	}

	iv, ql, err := h.svc.Start(r.Context(), campaignID, language, meta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(r, iv, ql))
}

// Get handles GET /v1/interviews/{id}.
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	iv, ql, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, iv, ql))
}

// AnswerRequest is the wire shape of a submitted or revised answer,
// tagged by kind the same way compiler.SourceQuestion tags a question's
// body.
type AnswerRequest struct {
	Kind    string          `json:"kind"`
	Text    string          `json:"text,omitempty"`
	Comment string          `json:"comment,omitempty"`
	Choice  *ChoiceRequest  `json:"choice,omitempty"`
	Choices []ChoiceRequest `json:"choices,omitempty"`
}

type ChoiceRequest struct {
	OptionLocalizationID string `json:"option_localization_id"`
	Index                int    `json:"index"`
	Comment              string `json:"comment,omitempty"`
}

func (c ChoiceRequest) toModel() *model.Choice {
	return &model.Choice{OptionLocalizationID: c.OptionLocalizationID, Index: c.Index, Comment: c.Comment}
}

func (req AnswerRequest) toModel() (model.AnswerBody, error) {
	switch model.AnswerBodyKind(req.Kind) {
	case model.AnswerMessage:
		return model.MessageAnswerBody{}, nil
	case model.AnswerInput:
		return model.InputAnswerBody{Text: req.Text, Comment: req.Comment}, nil
	case model.AnswerSelect:
		if req.Choice == nil {
			return nil, model.ErrSelectionIsInvalid
		}
		return model.SelectAnswerBody{Choice: req.Choice.toModel(), Comment: req.Comment}, nil
	case model.AnswerMultipleChoice:
		choices := make([]*model.Choice, len(req.Choices))
		for i, c := range req.Choices {
			choices[i] = c.toModel()
		}
		return model.MultipleChoiceAnswerBody{Choices: choices, Comment: req.Comment}, nil
	default:
		return nil, model.ErrAnswerIsIncorrect
	}
}

// Submit handles POST /v1/interviews/{id}/answers.
func (h *InterviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req AnswerRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}
	body, err := req.toModel()
	if err != nil {
		writeError(w, err)
		return
	}

	meta := interview.AnswerMeta{Timestamp: time.Now().UnixMilli(), IPAddress: clientIP(r)}
	iv, ql, err := h.svc.Submit(r.Context(), id, body, meta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, iv, ql))
}

// Revise handles PUT /v1/interviews/{id}/answers/{pos}.
func (h *InterviewHandler) Revise(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pos, err := strconv.Atoi(mux.Vars(r)["pos"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "pos must be an integer"})
		return
	}

	var req AnswerRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid request body"})
		return
	}
	body, err := req.toModel()
	if err != nil {
		writeError(w, err)
		return
	}

	meta := interview.AnswerMeta{Timestamp: time.Now().UnixMilli(), IPAddress: clientIP(r)}
	iv, ql, err := h.svc.Revise(r.Context(), id, pos, body, meta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, iv, ql))
}

// InterviewView is the JSON shape returned by every interview endpoint:
// lifecycle state plus the localized rendering of the current question.
type InterviewView struct {
	ID            string               `json:"id"`
	CampaignID    string               `json:"campaign_id"`
	Language      string               `json:"language"`
	State         string               `json:"state"`
	AnsweredCount int                  `json:"answered_count"`
	NextQuestion  *service.QuestionView `json:"next_question,omitempty"`
}

func (h *InterviewHandler) view(r *http.Request, iv *model.Interview, ql *model.QuestionnaireLocalization) *InterviewView {
	view := &InterviewView{
		ID:         iv.ID,
		CampaignID: iv.CampaignID,
		Language:   iv.Language,
		State:      string(iv.State),
	}
	for _, e := range iv.History {
		if e.Kind() == model.EntryAnswer {
			view.AnsweredCount++
		}
	}
	if qv, err := h.svc.CurrentQuestionView(r.Context(), iv, ql); err == nil {
		view.NextQuestion = qv
	}
	return view
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
