package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metaspex/interviews/internal/compiler"
)

// QuestionnaireRecord is the cached form of a persisted Questionnaire:
// its source plus the bookkeeping fields the repository layer keeps
// alongside it, recompiled fresh every time it is pulled out of Redis.
type QuestionnaireRecord struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Source      compiler.SourceQuestionnaire `json:"source"`
	ChangeCount int                          `json:"change_count"`
	Locked      bool                         `json:"locked"`
}

// QuestionnaireCache handles Redis operations for compiled-from Questionnaire
// records, sparing a Mongo round trip on every read of a questionnaire a
// campaign is actively driving interviews against.
type QuestionnaireCache interface {
	Set(ctx context.Context, rec *QuestionnaireRecord) error
	Get(ctx context.Context, id string) (*QuestionnaireRecord, error)
	Delete(ctx context.Context, id string) error
}

type questionnaireCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuestionnaireCache(client *redis.Client) QuestionnaireCache {
	return &questionnaireCache{client: client, ttl: time.Hour}
}

func (c *questionnaireCache) key(id string) string {
	return fmt.Sprintf("questionnaire:%s", id)
}

func (c *questionnaireCache) Set(ctx context.Context, rec *QuestionnaireRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.ID), data, c.ttl).Err()
}

func (c *questionnaireCache) Get(ctx context.Context, id string) (*QuestionnaireRecord, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec QuestionnaireRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *questionnaireCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
