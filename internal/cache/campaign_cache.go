package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CampaignRecord is the cached form of a Campaign's own document; its
// Questionnaire is cached and recompiled separately through
// QuestionnaireCache, since many campaigns can point at the same
// questionnaire.
type CampaignRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	QuestionnaireID string    `json:"questionnaire_id"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// CampaignCache handles Redis operations for Campaign lookups. A
// campaign's window is fixed at creation time, so its TTL is pinned to
// EndsAt rather than a rolling duration: once a campaign expires there
// is no reason to keep serving it from cache.
type CampaignCache interface {
	Set(ctx context.Context, rec *CampaignRecord) error
	Get(ctx context.Context, id string) (*CampaignRecord, error)
	Delete(ctx context.Context, id string) error
}

type campaignCache struct {
	client *redis.Client
}

func NewCampaignCache(client *redis.Client) CampaignCache {
	return &campaignCache{client: client}
}

func (c *campaignCache) key(id string) string {
	return fmt.Sprintf("campaign:%s", id)
}

func (c *campaignCache) Set(ctx context.Context, rec *CampaignRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.EndsAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return c.client.Set(ctx, c.key(rec.ID), data, ttl).Err()
}

func (c *campaignCache) Get(ctx context.Context, id string) (*CampaignRecord, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec CampaignRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *campaignCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
