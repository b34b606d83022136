package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"surveyhub/internal/model"
)

type recordedEvent struct {
	surveyID string
	event    string
	payload  any
}

type fakeBroadcaster struct {
	events []recordedEvent
}

func (b *fakeBroadcaster) BroadcastToOwner(surveyID, event string, payload any) {
	b.events = append(b.events, recordedEvent{surveyID, event, payload})
}

func submissionFixture(t *testing.T) (*ResponseService, *fakeResponseRepo, *model.Survey) {
	t.Helper()
	surveyRepo := newFakeSurveyRepo()
	responseRepo := newFakeResponseRepo()
	pipeline := NewResponseValidationPipeline(NewLogicEvaluator(), NewAnswerValidator())
	svc := NewResponseService(surveyRepo, responseRepo, fakeSurveyCache{}, pipeline)

	survey := &model.Survey{
		ID:      "s1",
		OwnerID: "o1",
		Title:   "Product Feedback",
		Slug:    "product-feedback",
		Status:  model.SurveyStatusPublished,
		Questions: []model.Question{
			{ID: "q1", Type: model.QuestionTypeText, Label: "Name", Required: true, Order: 1},
			{
				ID: "q2", Type: model.QuestionTypeNumber, Label: "Rating", Required: true, Order: 2,
				Validation: &model.ValidationRules{Min: floatPtr(0), Max: floatPtr(10)},
			},
		},
	}
	if err := surveyRepo.Create(context.Background(), survey); err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return svc, responseRepo, survey
}

func TestSubmitPersistsValidatedAnswers(t *testing.T) {
	svc, repo, survey := submissionFixture(t)
	broadcaster := &fakeBroadcaster{}
	svc.SetBroadcaster(broadcaster)

	resp, err := svc.Submit(context.Background(), survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 7},
		},
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if resp.Status != model.ResponseStatusSubmitted {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.SubmittedAt == nil {
		t.Fatal("submittedAt must be stamped")
	}
	if resp.UUID == "" {
		t.Fatal("response must carry a receipt uuid")
	}
	rating := resp.AnswerFor("q2")
	if rating == nil || rating.Value.Kind != model.KindNumber || rating.Value.Num != 7 {
		t.Fatalf("rating answer not normalized: %+v", rating)
	}

	stored, _ := repo.GetByID(context.Background(), resp.ID)
	if stored == nil || len(stored.Answers) != 2 {
		t.Fatalf("answers not persisted with the response: %+v", stored)
	}

	if len(broadcaster.events) != 1 || broadcaster.events[0].event != "response_submitted" {
		t.Fatalf("owner feed not notified: %+v", broadcaster.events)
	}
}

func TestSubmitCollectsValidationErrorsAndWritesNothing(t *testing.T) {
	svc, repo, survey := submissionFixture(t)

	_, err := svc.Submit(context.Background(), survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q2", Answer: 15},
		},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(verr.Errors) != 2 {
		t.Fatalf("both violations must be reported, got %v", verr.Errors)
	}

	count, _ := repo.CountBySurvey(context.Background(), survey.ID)
	if count != 0 {
		t.Fatalf("rejected submission must not persist anything, found %d", count)
	}
}

func TestSubmitRejectsUnpublishedSurvey(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	surveyRepo := svc.surveyRepo
	survey.Status = model.SurveyStatusDraft
	if err := surveyRepo.Update(context.Background(), survey); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := svc.Submit(context.Background(), survey.ID, SubmitInput{
		Answers: []AnswerInput{{QuestionID: "q1", Answer: "Ada"}, {QuestionID: "q2", Answer: 7}},
	})
	var state *InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}
}

func TestSubmitEnforcesTimeWindow(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()
	input := SubmitInput{Answers: []AnswerInput{
		{QuestionID: "q1", Answer: "Ada"},
		{QuestionID: "q2", Answer: 7},
	}}

	tomorrow := time.Now().Add(24 * time.Hour)
	survey.Settings.StartDate = &tomorrow
	if err := svc.surveyRepo.Update(ctx, survey); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := svc.Submit(ctx, survey.ID, input)
	var window *OutOfWindowError
	if !errors.As(err, &window) {
		t.Fatalf("want OutOfWindowError before start, got %v", err)
	}
	if window.Message != "Survey has not started yet" {
		t.Fatalf("message = %q", window.Message)
	}

	yesterday := time.Now().Add(-24 * time.Hour)
	dayBefore := yesterday.Add(-24 * time.Hour)
	survey.Settings.StartDate = &dayBefore
	survey.Settings.EndDate = &yesterday
	if err := svc.surveyRepo.Update(ctx, survey); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err = svc.Submit(ctx, survey.ID, input)
	if !errors.As(err, &window) {
		t.Fatalf("want OutOfWindowError after end, got %v", err)
	}
	if window.Message != "Survey has ended" {
		t.Fatalf("message = %q", window.Message)
	}
}

func TestSubmitRejectsDuplicateForSameUser(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()
	input := SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 7},
		},
		UserID: "u1",
	}

	if _, err := svc.Submit(ctx, survey.ID, input); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := svc.Submit(ctx, survey.ID, input)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second submit must conflict, got %v", err)
	}

	// Anonymous submissions are not deduplicated.
	anon := input
	anon.UserID = ""
	if _, err := svc.Submit(ctx, survey.ID, anon); err != nil {
		t.Fatalf("anonymous submit: %v", err)
	}
}

func TestSubmitMapsDuplicateKeyToConflict(t *testing.T) {
	svc, repo, survey := submissionFixture(t)
	ctx := context.Background()

	// Simulate a concurrent submit landing between the pre-check and the
	// insert: HasSubmitted still reports false, but the unique index fires.
	repo.staleHasSubmitted = true
	seeded := &model.SurveyResponse{
		ID: "r0", SurveyID: survey.ID, UserID: "u1", UUID: "uu0",
		Status: model.ResponseStatusSubmitted,
	}
	if err := repo.Replace(ctx, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Submit(ctx, survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 7},
		},
		UserID: "u1",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
}

func TestSubmitRequiresAuthWhenConfigured(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()
	survey.Settings.RequireAuth = true
	if err := svc.surveyRepo.Update(ctx, survey); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := svc.Submit(ctx, survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 7},
		},
	})
	var state *InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("anonymous submit must be rejected, got %v", err)
	}
}

func TestSaveDraftReplacesAnswersWholesale(t *testing.T) {
	svc, repo, survey := submissionFixture(t)
	ctx := context.Background()

	first, err := svc.SaveDraft(ctx, survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 4},
		},
	}, "")
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if first.Status != model.ResponseStatusDraft {
		t.Fatalf("status = %q", first.Status)
	}

	// A later save omitting q2 drops it: drafts are replaced, not merged.
	second, err := svc.SaveDraft(ctx, survey.ID, SubmitInput{
		Answers: []AnswerInput{{QuestionID: "q1", Answer: "Grace"}},
	}, first.ID)
	if err != nil {
		t.Fatalf("resave draft: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("draft id must be stable, got %q and %q", first.ID, second.ID)
	}

	stored, _ := repo.GetByID(ctx, first.ID)
	if len(stored.Answers) != 1 || stored.Answers[0].QuestionID != "q1" {
		t.Fatalf("draft not replaced wholesale: %+v", stored.Answers)
	}
	if stored.Answers[0].Value.Str != "Grace" {
		t.Fatalf("answer not updated: %+v", stored.Answers[0])
	}
}

func TestSaveDraftAcceptsInvalidAnswers(t *testing.T) {
	svc, repo, survey := submissionFixture(t)

	// Out-of-range and unknown-question answers are tolerated in drafts.
	draft, err := svc.SaveDraft(context.Background(), survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q2", Answer: 9000},
			{QuestionID: "ghost", Answer: "x"},
		},
	}, "")
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), draft.ID)
	if len(stored.Answers) != 1 || stored.Answers[0].QuestionID != "q2" {
		t.Fatalf("unknown question should be dropped, rest kept: %+v", stored.Answers)
	}
}

func TestSaveDraftRejectsForeignDraftID(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()

	other := &model.Survey{ID: "s2", OwnerID: "o1", Title: "Other", Slug: "other", Status: model.SurveyStatusPublished}
	if err := svc.surveyRepo.Create(ctx, other); err != nil {
		t.Fatalf("seed other survey: %v", err)
	}
	foreign, err := svc.SaveDraft(ctx, other.ID, SubmitInput{}, "")
	if err != nil {
		t.Fatalf("seed foreign draft: %v", err)
	}

	_, err = svc.SaveDraft(ctx, survey.ID, SubmitInput{}, foreign.ID)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("draft of another survey must not be reachable, got %v", err)
	}
}

func TestGetByUUIDJoinsQuestionMetadata(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()

	resp, err := svc.Submit(ctx, survey.ID, SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: "q1", Answer: "Ada"},
			{QuestionID: "q2", Answer: 7},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	detail, err := svc.GetByUUID(ctx, resp.UUID)
	if err != nil {
		t.Fatalf("get by uuid: %v", err)
	}
	if detail.Title != survey.Title || len(detail.Questions) != 2 {
		t.Fatalf("detail = %+v", detail)
	}

	if _, err := svc.GetByUUID(ctx, "no-such-uuid"); err == nil {
		t.Fatal("unknown uuid must be NotFound")
	}
}

func TestListBySurveyChecksOwnership(t *testing.T) {
	svc, _, survey := submissionFixture(t)
	ctx := context.Background()

	if _, err := svc.ListBySurvey(ctx, "o1", survey.ID, ""); err != nil {
		t.Fatalf("owner list: %v", err)
	}

	_, err := svc.ListBySurvey(ctx, "intruder", survey.ID, "")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("foreign owner must see NotFound, got %v", err)
	}
}
