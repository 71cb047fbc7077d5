package service

import (
	"context"
	"time"

	"github.com/metaspex/interviews/internal/auth"
	"github.com/metaspex/interviews/internal/model"
	"github.com/metaspex/interviews/internal/repository"
)

// CampaignService creates and reads Campaigns, and issues the
// campaign-scoped tokens an interviewer authenticates with.
type CampaignService struct {
	repo    *repository.CampaignRepository
	authSvc *auth.Service
}

func NewCampaignService(repo *repository.CampaignRepository, authSvc *auth.Service) *CampaignService {
	return &CampaignService{repo: repo, authSvc: authSvc}
}

func (s *CampaignService) Create(ctx context.Context, name, questionnaireID string, startsAt, endsAt time.Time) (*model.Campaign, error) {
	return s.repo.Create(ctx, name, questionnaireID, startsAt, endsAt)
}

func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	return s.repo.Load(ctx, id)
}

// IssueInterviewerToken mints a token scoped to campaignID, first
// checking the campaign exists.
func (s *CampaignService) IssueInterviewerToken(ctx context.Context, campaignID, interviewerID string) (string, error) {
	if _, err := s.repo.Load(ctx, campaignID); err != nil {
		return "", err
	}
	return s.authSvc.IssueInterviewerToken(campaignID, interviewerID)
}
