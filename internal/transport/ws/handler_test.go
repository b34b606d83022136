package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"surveyhub/internal/model"
	"surveyhub/internal/service"
)

type stubSurveyRepo struct {
	survey *model.Survey
}

func (r *stubSurveyRepo) Create(ctx context.Context, survey *model.Survey) error { return nil }
func (r *stubSurveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	if r.survey != nil && r.survey.ID == id {
		return r.survey, nil
	}
	return nil, nil
}
func (r *stubSurveyRepo) GetBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	return nil, nil
}
func (r *stubSurveyRepo) GetByOwnerID(ctx context.Context, ownerID string) ([]*model.Survey, error) {
	return nil, nil
}
func (r *stubSurveyRepo) Update(ctx context.Context, survey *model.Survey) error { return nil }
func (r *stubSurveyRepo) Delete(ctx context.Context, id string) error            { return nil }
func (r *stubSurveyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}
func (r *stubSurveyRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubSurveyCache struct{}

func (stubSurveyCache) Set(ctx context.Context, survey *model.Survey) error { return nil }
func (stubSurveyCache) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	return nil, nil
}
func (stubSurveyCache) GetBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	return nil, nil
}
func (stubSurveyCache) Invalidate(ctx context.Context, survey *model.Survey) error { return nil }

func feedRequest(t *testing.T, h *Handler, surveyID, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/surveys/{surveyId}/feed", h.Feed)

	url := "/v1/ws/surveys/" + surveyID + "/feed"
	if token != "" {
		url += "?token=" + token
	}
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFeedRequiresOwnership(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	auth := service.NewAuthService("admin", "secret", "jwt-secret")
	login, err := auth.Login("admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	repo := &stubSurveyRepo{survey: &model.Survey{ID: "s1", OwnerID: "someone-else", Title: "Theirs"}}
	surveys := service.NewSurveyService(repo, nil, stubSurveyCache{})
	h := NewHandler(NewHub(log), auth, surveys, log)

	if rec := feedRequest(t, h, "s1", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: code = %d", rec.Code)
	}
	if rec := feedRequest(t, h, "s1", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: code = %d", rec.Code)
	}

	// Valid owner token, but the survey belongs to someone else.
	if rec := feedRequest(t, h, "s1", login.Token); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign survey: code = %d", rec.Code)
	}

	// Owned survey passes the authorization gate; the upgrade itself then
	// fails because the request carries no websocket handshake headers.
	repo.survey.OwnerID = login.OwnerID
	if rec := feedRequest(t, h, "s1", login.Token); rec.Code != http.StatusBadRequest {
		t.Fatalf("owned survey should reach the upgrade, code = %d", rec.Code)
	}
}
