package service

import (
	"context"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/model"
	"github.com/metaspex/interviews/internal/repository"
)

// QuestionnaireService exposes Questionnaire authoring and localization
// to transport handlers.
type QuestionnaireService struct {
	repo *repository.QuestionnaireRepository
}

func NewQuestionnaireService(repo *repository.QuestionnaireRepository) *QuestionnaireService {
	return &QuestionnaireService{repo: repo}
}

func (s *QuestionnaireService) Create(ctx context.Context, src *compiler.SourceQuestionnaire) (*model.Questionnaire, *model.QuestionnaireLocalization, error) {
	return s.repo.Create(ctx, src)
}

func (s *QuestionnaireService) Get(ctx context.Context, id string) (*model.Questionnaire, error) {
	return s.repo.Load(ctx, id)
}

func (s *QuestionnaireService) CreateLocalization(ctx context.Context, questionnaireID string, src *compiler.SourceQuestionnaireLocalization) (*model.QuestionnaireLocalization, error) {
	qn, err := s.repo.Load(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateLocalization(ctx, qn, src)
}

// Localization loads qn's localization for language, recompiling and
// re-running the lazy completeness check.
func (s *QuestionnaireService) Localization(ctx context.Context, qn *model.Questionnaire, language string) (*model.QuestionnaireLocalization, error) {
	return s.repo.LoadLocalization(ctx, qn, language)
}
