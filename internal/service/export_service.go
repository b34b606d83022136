package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

// QuestionMeta is the question identity exposed by exports and response
// detail views.
type QuestionMeta struct {
	ID    string             `json:"id"`
	Label string             `json:"label"`
	Type  model.QuestionType `json:"type"`
}

// ExportSurvey heads the JSON export artifact.
type ExportSurvey struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions []QuestionMeta `json:"questions"`
}

// ExportResponse is one submitted response keyed by question identity.
type ExportResponse struct {
	ID          string                       `json:"id"`
	UUID        string                       `json:"uuid"`
	UserID      string                       `json:"userId,omitempty"`
	SubmittedAt *time.Time                   `json:"submittedAt,omitempty"`
	Answers     map[string]model.AnswerValue `json:"answers"`
}

// ExportDocument is the complete JSON export artifact.
type ExportDocument struct {
	Survey    ExportSurvey     `json:"survey"`
	Responses []ExportResponse `json:"responses"`
}

// ExportService projects submitted responses plus question metadata into
// tabular (CSV) or nested (JSON) artifacts. Drafts are never exported.
type ExportService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
}

// NewExportService creates a new export service
func NewExportService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo) *ExportService {
	return &ExportService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
	}
}

// ExportJSON builds the nested export document.
func (s *ExportService) ExportJSON(ctx context.Context, ownerID, surveyID string) (*ExportDocument, error) {
	survey, responses, err := s.load(ctx, ownerID, surveyID)
	if err != nil {
		return nil, err
	}

	doc := &ExportDocument{
		Survey: ExportSurvey{
			ID:        survey.ID,
			Title:     survey.Title,
			Questions: questionMetas(survey),
		},
		Responses: make([]ExportResponse, 0, len(responses)),
	}

	for _, r := range responses {
		answers := make(map[string]model.AnswerValue, len(r.Answers))
		for _, a := range r.Answers {
			answers[a.QuestionID] = a.Value
		}
		doc.Responses = append(doc.Responses, ExportResponse{
			ID:          r.ID,
			UUID:        r.UUID,
			UserID:      r.UserID,
			SubmittedAt: r.SubmittedAt,
			Answers:     answers,
		})
	}

	return doc, nil
}

// ExportCSV renders one header column per question label in survey order plus
// response identity columns, one row per submitted response.
func (s *ExportService) ExportCSV(ctx context.Context, ownerID, surveyID string) ([]byte, error) {
	survey, responses, err := s.load(ctx, ownerID, surveyID)
	if err != nil {
		return nil, err
	}

	questions := questionsInOrder(survey)

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Response ID", "User ID", "Submitted At"}
	for _, q := range questions {
		header = append(header, q.Label)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.ID, r.UserID, formatTime(r.SubmittedAt))
		for _, q := range questions {
			if a := r.AnswerFor(q.ID); a != nil {
				row = append(row, cellText(a.Value))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *ExportService) load(ctx context.Context, ownerID, surveyID string) (*model.Survey, []*model.SurveyResponse, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, nil, err
	}
	if survey == nil || survey.OwnerID != ownerID {
		return nil, nil, &NotFoundError{Resource: "survey", ID: surveyID}
	}

	responses, err := s.responseRepo.ListBySurvey(ctx, surveyID, model.ResponseStatusSubmitted)
	if err != nil {
		return nil, nil, err
	}
	return survey, responses, nil
}

func questionMetas(survey *model.Survey) []QuestionMeta {
	questions := questionsInOrder(survey)
	metas := make([]QuestionMeta, len(questions))
	for i, q := range questions {
		metas[i] = QuestionMeta{ID: q.ID, Label: q.Label, Type: q.Type}
	}
	return metas
}

// cellText renders an answer for a CSV cell: arrays join with ", ",
// object-valued answers render as their JSON text.
func cellText(v model.AnswerValue) string {
	switch v.Kind {
	case model.KindString:
		return v.Str
	case model.KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case model.KindBool:
		return strconv.FormatBool(v.Bool)
	case model.KindStringList:
		out := ""
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out
	case model.KindLocation, model.KindFiles:
		data, err := json.Marshal(v.Native())
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
