package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"surveyhub/internal/cache"
	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

// SubmitInput is the payload of a submit or draft-save call.
type SubmitInput struct {
	Answers  []AnswerInput
	Metadata model.ResponseMetadata
	UserID   string
}

// ResponseDetail is a response joined with the question metadata needed to
// render it.
type ResponseDetail struct {
	Response  *model.SurveyResponse `json:"response"`
	SurveyID  string                `json:"surveyId"`
	Title     string                `json:"title"`
	Questions []QuestionMeta        `json:"questions"`
}

// ResponseService coordinates response creation: it enforces survey-level
// submission policy, runs the validation pipeline, and persists the response
// with its answers in one atomic document write.
type ResponseService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	surveyCache  cache.SurveyCache
	pipeline     *ResponseValidationPipeline
	broadcaster  Broadcaster
}

// NewResponseService creates a new response service
func NewResponseService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, surveyCache cache.SurveyCache, pipeline *ResponseValidationPipeline) *ResponseService {
	return &ResponseService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		surveyCache:  surveyCache,
		pipeline:     pipeline,
	}
}

// SetBroadcaster sets the broadcaster for live submission events
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit validates and persists a final response. Either the full answer set
// commits or nothing is written.
func (s *ResponseService) Submit(ctx context.Context, surveyID string, in SubmitInput) (*model.SurveyResponse, error) {
	survey, err := s.loadSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if survey.Status != model.SurveyStatusPublished {
		return nil, &InvalidStateError{Message: "survey is not open for submissions"}
	}

	now := time.Now()
	if survey.Settings.StartDate != nil && now.Before(*survey.Settings.StartDate) {
		return nil, &OutOfWindowError{Message: "Survey has not started yet"}
	}
	if survey.Settings.EndDate != nil && now.After(*survey.Settings.EndDate) {
		return nil, &OutOfWindowError{Message: "Survey has ended"}
	}

	if survey.Settings.RequireAuth && in.UserID == "" {
		return nil, &InvalidStateError{Message: "survey requires authentication"}
	}

	// Pre-check; the partial unique index on (surveyId, userId) is the real
	// guarantee under concurrent submits.
	if !survey.Settings.AllowMultipleSubmissions && in.UserID != "" {
		submitted, err := s.responseRepo.HasSubmitted(ctx, surveyID, in.UserID)
		if err != nil {
			return nil, err
		}
		if submitted {
			return nil, &ConflictError{Message: "you have already submitted this survey"}
		}
	}

	answers, ferrs := s.pipeline.ValidateResponse(survey, in.Answers)
	if len(ferrs) > 0 {
		return nil, &ValidationError{Errors: ferrs}
	}

	response := &model.SurveyResponse{
		ID:          uuid.NewString(),
		SurveyID:    surveyID,
		UserID:      in.UserID,
		UUID:        uuid.NewString(),
		Status:      model.ResponseStatusSubmitted,
		SubmittedAt: &now,
		Metadata:    in.Metadata,
		Answers:     answers,
	}

	if err := s.responseRepo.Insert(ctx, response); err != nil {
		if repository.IsDup(err) {
			return nil, &ConflictError{Message: "you have already submitted this survey"}
		}
		return nil, err
	}

	persisted, err := s.responseRepo.GetByID(ctx, response.ID)
	if err != nil {
		return nil, err
	}
	if persisted == nil {
		persisted = response
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOwner(surveyID, "response_submitted", map[string]any{
			"responseId":  persisted.ID,
			"uuid":        persisted.UUID,
			"submittedAt": persisted.SubmittedAt,
			"answerCount": len(persisted.Answers),
		})
	}

	return persisted, nil
}

// SaveDraft persists a partial response without validation. When an existing
// draft id is given its answer set is replaced wholesale, not merged.
func (s *ResponseService) SaveDraft(ctx context.Context, surveyID string, in SubmitInput, existingDraftID string) (*model.SurveyResponse, error) {
	survey, err := s.loadSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	answers := draftAnswers(survey, in.Answers)

	if existingDraftID != "" {
		draft, err := s.responseRepo.GetByID(ctx, existingDraftID)
		if err != nil {
			return nil, err
		}
		if draft == nil || draft.SurveyID != surveyID || draft.Status != model.ResponseStatusDraft {
			return nil, &NotFoundError{Resource: "draft", ID: existingDraftID}
		}
		draft.Answers = answers
		draft.Metadata = in.Metadata
		if err := s.responseRepo.Replace(ctx, draft); err != nil {
			return nil, err
		}
		return draft, nil
	}

	draft := &model.SurveyResponse{
		ID:       uuid.NewString(),
		SurveyID: surveyID,
		UserID:   in.UserID,
		UUID:     uuid.NewString(),
		Status:   model.ResponseStatusDraft,
		Metadata: in.Metadata,
		Answers:  answers,
	}
	if err := s.responseRepo.Insert(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// GetByUUID returns one response with its answers and the question metadata
// needed to present them.
func (s *ResponseService) GetByUUID(ctx context.Context, responseUUID string) (*ResponseDetail, error) {
	response, err := s.responseRepo.GetByUUID(ctx, responseUUID)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, &NotFoundError{Resource: "response", ID: responseUUID}
	}

	survey, err := s.loadSurvey(ctx, response.SurveyID)
	if err != nil {
		return nil, err
	}

	return &ResponseDetail{
		Response:  response,
		SurveyID:  survey.ID,
		Title:     survey.Title,
		Questions: questionMetas(survey),
	}, nil
}

// ListBySurvey returns a survey's responses for its owner, optionally
// filtered by status.
func (s *ResponseService) ListBySurvey(ctx context.Context, ownerID, surveyID string, status model.ResponseStatus) ([]*model.SurveyResponse, error) {
	survey, err := s.loadSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if survey.OwnerID != ownerID {
		return nil, &NotFoundError{Resource: "survey", ID: surveyID}
	}
	return s.responseRepo.ListBySurvey(ctx, surveyID, status)
}

func (s *ResponseService) loadSurvey(ctx context.Context, surveyID string) (*model.Survey, error) {
	survey, err := s.surveyCache.GetByID(ctx, surveyID)
	if err != nil || survey == nil {
		survey, err = s.surveyRepo.GetByID(ctx, surveyID)
		if err != nil {
			return nil, err
		}
		if survey != nil {
			_ = s.surveyCache.Set(ctx, survey)
		}
	}
	if survey == nil {
		return nil, &NotFoundError{Resource: "survey", ID: surveyID}
	}
	return survey, nil
}

// draftAnswers normalizes what it can and keeps the rest out; drafts accept
// partial and even ill-typed input, which is validated only on submit.
func draftAnswers(survey *model.Survey, inputs []AnswerInput) []model.Answer {
	answers := make([]model.Answer, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if survey.QuestionByID(in.QuestionID) == nil || seen[in.QuestionID] {
			continue
		}
		seen[in.QuestionID] = true
		value, err := model.FromNative(in.Answer)
		if err != nil {
			value = model.EmptyValue()
		}
		answers = append(answers, model.Answer{QuestionID: in.QuestionID, Value: value, Files: in.Files})
	}
	return answers
}
