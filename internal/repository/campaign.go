package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/metaspex/interviews/internal/cache"
	"github.com/metaspex/interviews/internal/model"
)

// CampaignRepository persists Campaigns. Creating one locks its
// Questionnaire via QuestionnaireRepository.Lock, so a running campaign's
// questionnaire can no longer be edited structurally.
type CampaignRepository struct {
	store          *Store
	questionnaires *QuestionnaireRepository
	cache          cache.CampaignCache
}

func NewCampaignRepository(store *Store, questionnaires *QuestionnaireRepository, c cache.CampaignCache) *CampaignRepository {
	return &CampaignRepository{store: store, questionnaires: questionnaires, cache: c}
}

func (r *CampaignRepository) Create(ctx context.Context, name, questionnaireID string, startsAt, endsAt time.Time) (*model.Campaign, error) {
	qn, err := r.questionnaires.Load(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := r.questionnaires.Lock(ctx, questionnaireID); err != nil {
		return nil, err
	}
	qn.Locked = true

	c := &model.Campaign{ID: uuid.NewString(), Name: name, QuestionnaireID: questionnaireID, Questionnaire: qn, StartsAt: startsAt, EndsAt: endsAt}
	doc := campaignDoc{ID: c.ID, Name: c.Name, QuestionnaireID: c.QuestionnaireID, StartsAt: startsAt, EndsAt: endsAt, CreatedAt: time.Now()}
	if _, err := r.store.Campaigns.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, &cache.CampaignRecord{ID: doc.ID, Name: doc.Name, QuestionnaireID: doc.QuestionnaireID, StartsAt: doc.StartsAt, EndsAt: doc.EndsAt})
	return c, nil
}

// Load returns the Campaign and its (recompiled) Questionnaire,
// consulting the cache for the Campaign's own document before Mongo.
func (r *CampaignRepository) Load(ctx context.Context, id string) (*model.Campaign, error) {
	var doc campaignDoc
	if rec, err := r.cache.Get(ctx, id); err == nil && rec != nil {
		doc = campaignDoc{ID: rec.ID, Name: rec.Name, QuestionnaireID: rec.QuestionnaireID, StartsAt: rec.StartsAt, EndsAt: rec.EndsAt}
	} else {
		if err := r.store.Campaigns.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, model.ErrCampaignDoesNotExist
			}
			return nil, err
		}
		_ = r.cache.Set(ctx, &cache.CampaignRecord{ID: doc.ID, Name: doc.Name, QuestionnaireID: doc.QuestionnaireID, StartsAt: doc.StartsAt, EndsAt: doc.EndsAt})
	}
	qn, err := r.questionnaires.Load(ctx, doc.QuestionnaireID)
	if err != nil {
		return nil, err
	}
	return &model.Campaign{
		ID:              doc.ID,
		Name:            doc.Name,
		QuestionnaireID: doc.QuestionnaireID,
		Questionnaire:   qn,
		StartsAt:        doc.StartsAt,
		EndsAt:          doc.EndsAt,
	}, nil
}
