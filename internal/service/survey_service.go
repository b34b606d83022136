package service

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"surveyhub/internal/cache"
	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

const maxSlugAttempts = 100

var reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SurveyService handles survey authoring: create, update, publish, close,
// delete. It validates question definitions and conditional-logic wiring at
// save time so the submission path can trust every stored survey.
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	surveyCache  cache.SurveyCache
}

// NewSurveyService creates a new survey service
func NewSurveyService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, surveyCache cache.SurveyCache) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		surveyCache:  surveyCache,
	}
}

// Create validates the definition, assigns ids and a unique slug, and stores
// the survey in draft status.
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) error {
	normalizeQuestions(survey)
	if errs := validateDefinition(survey); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	survey.ID = uuid.NewString()
	survey.Status = model.SurveyStatusDraft

	slug, err := s.uniqueSlug(ctx, survey.Title)
	if err != nil {
		return err
	}
	survey.Slug = slug

	return s.surveyRepo.Create(ctx, survey)
}

// Update replaces the definition of an existing survey. The slug is kept.
func (s *SurveyService) Update(ctx context.Context, ownerID string, survey *model.Survey) error {
	existing, err := s.ownedSurvey(ctx, ownerID, survey.ID)
	if err != nil {
		return err
	}

	normalizeQuestions(survey)
	if errs := validateDefinition(survey); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	survey.OwnerID = existing.OwnerID
	survey.Slug = existing.Slug
	survey.Status = existing.Status
	survey.CreatedAt = existing.CreatedAt

	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return err
	}
	return s.surveyCache.Invalidate(ctx, existing)
}

// Publish opens a survey for submissions.
func (s *SurveyService) Publish(ctx context.Context, ownerID, surveyID string) (*model.Survey, error) {
	return s.setStatus(ctx, ownerID, surveyID, model.SurveyStatusPublished)
}

// Close stops a survey from accepting further submissions.
func (s *SurveyService) Close(ctx context.Context, ownerID, surveyID string) (*model.Survey, error) {
	return s.setStatus(ctx, ownerID, surveyID, model.SurveyStatusClosed)
}

func (s *SurveyService) setStatus(ctx context.Context, ownerID, surveyID string, status model.SurveyStatus) (*model.Survey, error) {
	survey, err := s.ownedSurvey(ctx, ownerID, surveyID)
	if err != nil {
		return nil, err
	}
	survey.Status = status
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return nil, err
	}
	if err := s.surveyCache.Invalidate(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

// Get returns a survey for its owner.
func (s *SurveyService) Get(ctx context.Context, ownerID, surveyID string) (*model.Survey, error) {
	return s.ownedSurvey(ctx, ownerID, surveyID)
}

// ListByOwner returns all surveys created by an owner.
func (s *SurveyService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Survey, error) {
	return s.surveyRepo.GetByOwnerID(ctx, ownerID)
}

// GetPublicBySlug returns a published survey for respondents. Questions are
// shuffled per request when the survey asks for it.
func (s *SurveyService) GetPublicBySlug(ctx context.Context, slug string) (*model.Survey, error) {
	survey, err := s.surveyCache.GetBySlug(ctx, slug)
	if err != nil || survey == nil {
		survey, err = s.surveyRepo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if survey != nil {
			_ = s.surveyCache.Set(ctx, survey)
		}
	}
	if survey == nil || survey.Status != model.SurveyStatusPublished {
		return nil, &NotFoundError{Resource: "survey", ID: slug}
	}

	if survey.Settings.ShuffleQuestions {
		shuffled := make([]model.Question, len(survey.Questions))
		copy(shuffled, survey.Questions)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		out := *survey
		out.Questions = shuffled
		return &out, nil
	}
	return survey, nil
}

// Delete removes a survey. It refuses while any response exists, drafts
// included.
func (s *SurveyService) Delete(ctx context.Context, ownerID, surveyID string) error {
	survey, err := s.ownedSurvey(ctx, ownerID, surveyID)
	if err != nil {
		return err
	}

	count, err := s.responseRepo.CountBySurvey(ctx, surveyID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ConflictError{Message: fmt.Sprintf("survey has %d responses and cannot be deleted", count)}
	}

	if err := s.surveyRepo.Delete(ctx, surveyID); err != nil {
		return err
	}
	return s.surveyCache.Invalidate(ctx, survey)
}

func (s *SurveyService) ownedSurvey(ctx context.Context, ownerID, surveyID string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil || survey.OwnerID != ownerID {
		return nil, &NotFoundError{Resource: "survey", ID: surveyID}
	}
	return survey, nil
}

// uniqueSlug derives a URL-safe slug from the title and appends a numeric
// suffix until it no longer collides, bounded to avoid unbounded iteration
// under pathological title collisions.
func (s *SurveyService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "survey"
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		exists, err := s.surveyRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &ConflictError{Message: fmt.Sprintf("could not allocate a unique slug for %q", title)}
}

// Slugify lowercases the title and collapses every non-alphanumeric run into
// a single dash.
func Slugify(title string) string {
	slug := reNonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

func normalizeQuestions(survey *model.Survey) {
	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Order == 0 {
			q.Order = i + 1
		}
	}
}

// validateDefinition checks the authored questions, including the
// conditional-logic graph. Logic may only reference questions declared
// earlier in the same survey; that rules out self-references, forward
// references, and cycles in one pass.
func validateDefinition(survey *model.Survey) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(survey.Title) == "" {
		errs = append(errs, FieldError{Message: "survey title is required"})
	}

	seen := make(map[string]bool, len(survey.Questions))
	earlier := make(map[string]bool, len(survey.Questions))

	for _, q := range questionsInOrder(survey) {
		if strings.TrimSpace(q.Label) == "" {
			errs = append(errs, FieldError{QuestionID: q.ID, Message: "question label is required"})
		}
		if seen[q.ID] {
			errs = append(errs, FieldError{QuestionID: q.ID, Label: q.Label, Message: "duplicate question id"})
		}
		seen[q.ID] = true

		if q.Type.HasOptions() && len(q.Options) == 0 {
			errs = append(errs, *fieldErr(q, "must define at least one option"))
		}
		if q.Validation != nil && q.Validation.Pattern != "" {
			if _, err := regexp.Compile(q.Validation.Pattern); err != nil {
				errs = append(errs, *fieldErr(q, "has an invalid pattern"))
			}
		}

		if q.Logic != nil {
			if len(q.Logic.Conditions) == 0 {
				errs = append(errs, *fieldErr(q, "has a logic clause without conditions"))
			}
			switch q.Logic.Action {
			case model.ActionShow, model.ActionHide, model.ActionSkip:
			default:
				errs = append(errs, *fieldErr(q, "has an unknown logic action %q", q.Logic.Action))
			}
			for _, cond := range q.Logic.Conditions {
				if cond.QuestionID == q.ID {
					errs = append(errs, *fieldErr(q, "logic may not reference the question itself"))
				} else if !earlier[cond.QuestionID] {
					errs = append(errs, *fieldErr(q, "logic may only reference an earlier question"))
				}
				switch cond.Operator {
				case model.OpEquals, model.OpNotEquals, model.OpGreaterThan, model.OpLessThan, model.OpContains, model.OpIn:
				default:
					errs = append(errs, *fieldErr(q, "has an unknown logic operator %q", cond.Operator))
				}
			}
		}

		earlier[q.ID] = true
	}

	return errs
}
