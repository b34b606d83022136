package model

import "time"

// SurveyStatus is the publication state of a survey.
type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusPublished SurveyStatus = "published"
	SurveyStatusClosed    SurveyStatus = "closed"
)

// SurveySettings configures participation behavior
type SurveySettings struct {
	AllowAnonymous           bool       `json:"allowAnonymous" bson:"allowAnonymous"`
	RequireAuth              bool       `json:"requireAuth" bson:"requireAuth"`
	AllowMultipleSubmissions bool       `json:"allowMultipleSubmissions" bson:"allowMultipleSubmissions"`
	ShowProgressBar          bool       `json:"showProgressBar" bson:"showProgressBar"`
	ShuffleQuestions         bool       `json:"shuffleQuestions" bson:"shuffleQuestions"`
	TimeLimitMinutes         int        `json:"timeLimitMinutes,omitempty" bson:"timeLimitMinutes,omitempty"`
	StartDate                *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate                  *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// Survey is a persistent template created by an owner. Questions are embedded
// in the survey document and share its lifecycle.
type Survey struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	OwnerID     string         `json:"ownerId" bson:"ownerId"`
	Title       string         `json:"title" bson:"title"`
	Slug        string         `json:"slug" bson:"slug"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Settings    SurveySettings `json:"settings" bson:"settings"`
	Status      SurveyStatus   `json:"status" bson:"status"`
	Questions   []Question     `json:"questions" bson:"questions"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// QuestionByID returns the embedded question with the given id, or nil.
func (s *Survey) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// IsOpenAt reports whether the submission window is open at t.
func (s *Survey) IsOpenAt(t time.Time) bool {
	if s.Settings.StartDate != nil && t.Before(*s.Settings.StartDate) {
		return false
	}
	if s.Settings.EndDate != nil && t.After(*s.Settings.EndDate) {
		return false
	}
	return true
}
