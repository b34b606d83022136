package model

import "time"

// ResponseStatus is the lifecycle state of a response.
type ResponseStatus string

const (
	ResponseStatusDraft     ResponseStatus = "draft"
	ResponseStatusSubmitted ResponseStatus = "submitted"
)

// ResponseMetadata captures client context attached to a response.
type ResponseMetadata struct {
	UserAgent   string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	IPAddress   string `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	Location    string `json:"location,omitempty" bson:"location,omitempty"`
	Device      string `json:"device,omitempty" bson:"device,omitempty"`
	DurationSec int    `json:"durationSec,omitempty" bson:"durationSec,omitempty"`
}

// Answer is one question's value within one response.
type Answer struct {
	QuestionID string           `json:"questionId" bson:"questionId"`
	Value      AnswerValue      `json:"answer" bson:"answer"`
	Files      []FileDescriptor `json:"files,omitempty" bson:"files,omitempty"`
}

// SurveyResponse is one respondent's answer set. Answers are embedded so a
// submit or draft replace is a single atomic document write.
type SurveyResponse struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	SurveyID    string           `json:"surveyId" bson:"surveyId"`
	UserID      string           `json:"userId,omitempty" bson:"userId,omitempty"`
	UUID        string           `json:"uuid" bson:"uuid"`
	Status      ResponseStatus   `json:"status" bson:"status"`
	SubmittedAt *time.Time       `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	Metadata    ResponseMetadata `json:"metadata" bson:"metadata"`
	Answers     []Answer         `json:"answers" bson:"answers"`
	CreatedAt   time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// AnswerFor returns the answer for a question id, or nil.
func (r *SurveyResponse) AnswerFor(questionID string) *Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i]
		}
	}
	return nil
}
