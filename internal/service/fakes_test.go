package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"surveyhub/internal/model"
)

// In-memory repository fakes. The response fake enforces the same partial
// uniqueness the Mongo index provides, so the coordinator's Conflict path is
// exercised the way production behaves.

type fakeSurveyRepo struct {
	mu      sync.Mutex
	surveys map[string]*model.Survey
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{surveys: make(map[string]*model.Survey)}
}

func (r *fakeSurveyRepo) Create(ctx context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *survey
	r.surveys[survey.ID] = &cp
	return nil
}

func (r *fakeSurveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.surveys[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSurveyRepo) GetBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.surveys {
		if s.Slug == slug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSurveyRepo) GetByOwnerID(ctx context.Context, ownerID string) ([]*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Survey
	for _, s := range r.surveys {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSurveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *survey
	r.surveys[survey.ID] = &cp
	return nil
}

func (r *fakeSurveyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surveys, id)
	return nil
}

func (r *fakeSurveyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	s, err := r.GetBySlug(ctx, slug)
	return s != nil, err
}

func (r *fakeSurveyRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses map[string]*model.SurveyResponse

	// staleHasSubmitted simulates the race where another submit lands between
	// the coordinator's pre-check and its insert: HasSubmitted reports false
	// while the uniqueness check on Insert still fires.
	staleHasSubmitted bool
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: make(map[string]*model.SurveyResponse)}
}

func dupKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (r *fakeResponseRepo) Insert(ctx context.Context, response *model.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if response.Status == model.ResponseStatusSubmitted && response.UserID != "" {
		for _, existing := range r.responses {
			if existing.SurveyID == response.SurveyID &&
				existing.UserID == response.UserID &&
				existing.Status == model.ResponseStatusSubmitted {
				return dupKeyErr()
			}
		}
	}
	cp := *response
	r.responses[response.ID] = &cp
	return nil
}

func (r *fakeResponseRepo) Replace(ctx context.Context, response *model.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *response
	r.responses[response.ID] = &cp
	return nil
}

func (r *fakeResponseRepo) GetByID(ctx context.Context, id string) (*model.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp, ok := r.responses[id]; ok {
		cp := *resp
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeResponseRepo) GetByUUID(ctx context.Context, uuid string) (*model.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.UUID == uuid {
			cp := *resp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) ListBySurvey(ctx context.Context, surveyID string, status model.ResponseStatus) ([]*model.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SurveyResponse
	for _, resp := range r.responses {
		if resp.SurveyID != surveyID {
			continue
		}
		if status != "" && resp.Status != status {
			continue
		}
		cp := *resp
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeResponseRepo) CountBySurvey(ctx context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (r *fakeResponseRepo) HasSubmitted(ctx context.Context, surveyID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleHasSubmitted {
		return false, nil
	}
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID && resp.UserID == userID && resp.Status == model.ResponseStatusSubmitted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResponseRepo) DeleteBySurvey(ctx context.Context, surveyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, resp := range r.responses {
		if resp.SurveyID == surveyID {
			delete(r.responses, id)
		}
	}
	return nil
}

func (r *fakeResponseRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeSurveyCache struct{}

func (fakeSurveyCache) Set(ctx context.Context, survey *model.Survey) error { return nil }
func (fakeSurveyCache) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	return nil, nil
}
func (fakeSurveyCache) GetBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	return nil, nil
}
func (fakeSurveyCache) Invalidate(ctx context.Context, survey *model.Survey) error { return nil }
