package service

import (
	"context"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/model"
	"github.com/metaspex/interviews/internal/repository"
)

// TemplateService exposes the template-question library to transport
// handlers.
type TemplateService struct {
	repo *repository.TemplateRepository
}

func NewTemplateService(repo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

func (s *TemplateService) CreateCategory(ctx context.Context, name string) (*model.TemplateQuestionCategory, error) {
	return s.repo.CreateCategory(ctx, name)
}

func (s *TemplateService) ListByCategory(ctx context.Context, categoryID string) ([]*model.TemplateQuestion, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *TemplateService) CreateQuestion(ctx context.Context, categoryID string, src *compiler.SourceTemplateQuestion) (*model.TemplateQuestion, error) {
	return s.repo.CreateQuestion(ctx, categoryID, src)
}

func (s *TemplateService) Question(ctx context.Context, id string) (*model.TemplateQuestion, error) {
	return s.repo.Question(ctx, id)
}

func (s *TemplateService) CreateQuestionLocalization(ctx context.Context, templateID string, src *compiler.SourceTemplateQuestionLocalization) (*model.TemplateQuestionLocalization, error) {
	tq, err := s.repo.Question(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateQuestionLocalization(ctx, tq, src)
}
