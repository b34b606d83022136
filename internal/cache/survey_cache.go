package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyhub/internal/model"
)

const surveyTTL = 5 * time.Minute

// SurveyCache keeps published survey definitions close to the submission hot
// path. Entries are invalidated on every authoring write.
type SurveyCache interface {
	Set(ctx context.Context, survey *model.Survey) error
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	GetBySlug(ctx context.Context, slug string) (*model.Survey, error)
	Invalidate(ctx context.Context, survey *model.Survey) error
}

type surveyCache struct {
	client *redis.Client
}

func NewSurveyCache(client *redis.Client) SurveyCache {
	return &surveyCache{
		client: client,
	}
}

func (c *surveyCache) Set(ctx context.Context, survey *model.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, "survey:id:"+survey.ID, data, surveyTTL).Err(); err != nil {
		return err
	}
	return c.client.Set(ctx, "survey:slug:"+survey.Slug, data, surveyTTL).Err()
}

func (c *surveyCache) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	return c.get(ctx, "survey:id:"+id)
}

func (c *surveyCache) GetBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	return c.get(ctx, "survey:slug:"+slug)
}

func (c *surveyCache) get(ctx context.Context, key string) (*model.Survey, error) {
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var survey model.Survey
	if err := json.Unmarshal([]byte(data), &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *surveyCache) Invalidate(ctx context.Context, survey *model.Survey) error {
	return c.client.Del(ctx, "survey:id:"+survey.ID, "survey:slug:"+survey.Slug).Err()
}
