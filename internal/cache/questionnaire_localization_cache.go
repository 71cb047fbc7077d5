package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metaspex/interviews/internal/compiler"
)

// QuestionnaireLocalizationRecord is the cached form of one
// QuestionnaireLocalization, keyed by its owning questionnaire and
// language.
type QuestionnaireLocalizationRecord struct {
	ID              string                                    `json:"id"`
	QuestionnaireID string                                    `json:"questionnaire_id"`
	Language        string                                    `json:"language"`
	First           bool                                      `json:"first"`
	Source          compiler.SourceQuestionnaireLocalization `json:"source"`
	LastChecked     int                                       `json:"last_checked"`
}

type QuestionnaireLocalizationCache interface {
	Set(ctx context.Context, rec *QuestionnaireLocalizationRecord) error
	Get(ctx context.Context, questionnaireID, language string) (*QuestionnaireLocalizationRecord, error)
	Delete(ctx context.Context, questionnaireID, language string) error
}

type questionnaireLocalizationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuestionnaireLocalizationCache(client *redis.Client) QuestionnaireLocalizationCache {
	return &questionnaireLocalizationCache{client: client, ttl: time.Hour}
}

func (c *questionnaireLocalizationCache) key(questionnaireID, language string) string {
	return fmt.Sprintf("questionnaire:%s:loc:%s", questionnaireID, language)
}

func (c *questionnaireLocalizationCache) Set(ctx context.Context, rec *QuestionnaireLocalizationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.QuestionnaireID, rec.Language), data, c.ttl).Err()
}

func (c *questionnaireLocalizationCache) Get(ctx context.Context, questionnaireID, language string) (*QuestionnaireLocalizationRecord, error) {
	data, err := c.client.Get(ctx, c.key(questionnaireID, language)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec QuestionnaireLocalizationRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *questionnaireLocalizationCache) Delete(ctx context.Context, questionnaireID, language string) error {
	return c.client.Del(ctx, c.key(questionnaireID, language)).Err()
}
