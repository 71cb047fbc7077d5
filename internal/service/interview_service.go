package service

import (
	"context"
	"time"

	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/interview"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
	"github.com/metaspex/interviews/internal/repository"
)

// InterviewService drives an Interview's lifecycle (Start, Submit,
// Revise), persisting every transition and broadcasting a progress
// frame to the owning campaign's watchers.
type InterviewService struct {
	repo           *repository.InterviewRepository
	campaigns      *repository.CampaignRepository
	questionnaires *repository.QuestionnaireRepository
	templates      *repository.TemplateRepository
	host           expr.Host
	broadcaster    Broadcaster
}

func NewInterviewService(
	repo *repository.InterviewRepository,
	campaigns *repository.CampaignRepository,
	questionnaires *repository.QuestionnaireRepository,
	templates *repository.TemplateRepository,
	host expr.Host,
	broadcaster Broadcaster,
) *InterviewService {
	return &InterviewService{repo: repo, campaigns: campaigns, questionnaires: questionnaires, templates: templates, host: host, broadcaster: broadcaster}
}

// Start begins a new Interview against campaignID in language, returning
// the interview and the localization its first question is rendered
// against.
func (s *InterviewService) Start(ctx context.Context, campaignID, language string, meta interview.StartMeta) (*model.Interview, *model.QuestionnaireLocalization, error) {
	campaign, err := s.campaigns.Load(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	if campaign.NotYetActive(now) {
		return nil, nil, model.ErrCampaignIsNotYetActive
	}
	if campaign.Expired(now) {
		return nil, nil, model.ErrCampaignExpired
	}

	ql, err := s.questionnaires.LoadLocalization(ctx, campaign.Questionnaire, language)
	if err != nil {
		return nil, nil, err
	}

	iv := &model.Interview{CampaignID: campaignID, Campaign: campaign, State: model.Initiated}
	if err := interview.Start(iv, campaign.Questionnaire, ql, meta); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Create(ctx, iv); err != nil {
		return nil, nil, err
	}
	s.broadcast(iv)
	return iv, ql, nil
}

// Submit records body against iv's current next question and advances
// it, returning the reloaded Interview and the localization for its
// (possibly new) next question.
func (s *InterviewService) Submit(ctx context.Context, interviewID string, body model.AnswerBody, meta interview.AnswerMeta) (*model.Interview, *model.QuestionnaireLocalization, error) {
	iv, campaign, err := s.repo.Load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	ql, err := s.questionnaires.LoadLocalization(ctx, campaign.Questionnaire, iv.Language)
	if err != nil {
		return nil, nil, err
	}
	templates := s.templates.Lookup(ctx)

	if _, err := interview.Submit(iv, body, meta, s.host, ql, templates); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Save(ctx, iv); err != nil {
		return nil, nil, err
	}
	s.broadcast(iv)
	return iv, ql, nil
}

// Revise replaces the answer at pos and re-derives everything after it.
func (s *InterviewService) Revise(ctx context.Context, interviewID string, pos int, newBody model.AnswerBody, meta interview.AnswerMeta) (*model.Interview, *model.QuestionnaireLocalization, error) {
	iv, campaign, err := s.repo.Load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	ql, err := s.questionnaires.LoadLocalization(ctx, campaign.Questionnaire, iv.Language)
	if err != nil {
		return nil, nil, err
	}
	templates := s.templates.Lookup(ctx)
	renderer := &localize.Renderer{Host: s.host, Templates: templates}

	if _, err := interview.Revise(iv, pos, newBody, meta, s.host, ql, templates, renderer); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Save(ctx, iv); err != nil {
		return nil, nil, err
	}
	s.broadcast(iv)
	return iv, ql, nil
}

// Get loads an Interview together with the localization its current
// question renders against.
func (s *InterviewService) Get(ctx context.Context, interviewID string) (*model.Interview, *model.QuestionnaireLocalization, error) {
	iv, campaign, err := s.repo.Load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	ql, err := s.questionnaires.LoadLocalization(ctx, campaign.Questionnaire, iv.Language)
	if err != nil {
		return nil, nil, err
	}
	return iv, ql, nil
}

// CurrentQuestionView renders iv's NextQuestion, or nil once completed.
func (s *InterviewService) CurrentQuestionView(ctx context.Context, iv *model.Interview, ql *model.QuestionnaireLocalization) (*QuestionView, error) {
	if iv.NextQuestion == nil {
		return nil, nil
	}
	templates := s.templates.Lookup(ctx)
	stack, err := interview.BuildStackFromHistory(iv.History, s.host, ql, templates, iv.Language)
	if err != nil {
		return nil, err
	}
	return BuildQuestionView(iv.NextQuestion, ql, templates, iv.Language, s.host, stack)
}

func (s *InterviewService) broadcast(iv *model.Interview) {
	if s.broadcaster == nil {
		return
	}
	answered := answeredCount(iv)
	total := len(iv.Campaign.Questionnaire.Questions)
	frame := &ProgressFrame{
		InterviewID:   iv.ID,
		QuestionIndex: answered,
		Completed:     iv.State == model.Completed,
	}
	if total > 0 {
		frame.PercentComplete = float64(answered) / float64(total) * 100
	}
	s.broadcaster.BroadcastProgress(iv.CampaignID, frame)
}

func answeredCount(iv *model.Interview) int {
	n := 0
	for _, e := range iv.History {
		if e.Kind() == model.EntryAnswer {
			n++
		}
	}
	return n
}
