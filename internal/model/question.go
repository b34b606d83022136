package model

// QuestionType defines the semantic type of a question.
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeTime     QuestionType = "time"
	QuestionTypeSelect   QuestionType = "select"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
	QuestionTypeFile     QuestionType = "file"
	QuestionTypeLocation QuestionType = "location"
	QuestionTypeAudio    QuestionType = "audio"
	QuestionTypeVideo    QuestionType = "video"
)

// HasOptions reports whether the type requires a predefined option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSelect || t == QuestionTypeRadio || t == QuestionTypeCheckbox
}

// IsUpload reports whether answers carry file descriptors instead of values.
func (t QuestionType) IsUpload() bool {
	return t == QuestionTypeFile || t == QuestionTypeAudio || t == QuestionTypeVideo
}

// Option is one selectable choice of a select/radio/checkbox question.
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
	Order int    `json:"order" bson:"order"`
}

// ValidationRules holds the optional per-question constraints.
type ValidationRules struct {
	Min               *float64 `json:"min,omitempty" bson:"min,omitempty"`
	Max               *float64 `json:"max,omitempty" bson:"max,omitempty"`
	MinLength         *int     `json:"minLength,omitempty" bson:"minLength,omitempty"`
	MaxLength         *int     `json:"maxLength,omitempty" bson:"maxLength,omitempty"`
	Pattern           string   `json:"pattern,omitempty" bson:"pattern,omitempty"`
	AcceptedFileTypes []string `json:"acceptedFileTypes,omitempty" bson:"acceptedFileTypes,omitempty"`
	MaxFileSize       *int64   `json:"maxFileSize,omitempty" bson:"maxFileSize,omitempty"`
}

// ConditionOperator compares an earlier answer against a condition value.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "="
	OpNotEquals   ConditionOperator = "!="
	OpGreaterThan ConditionOperator = ">"
	OpLessThan    ConditionOperator = "<"
	OpContains    ConditionOperator = "contains"
	OpIn          ConditionOperator = "in"
)

// LogicAction is what a triggered logic clause does to its owning question.
type LogicAction string

const (
	ActionShow LogicAction = "show"
	ActionHide LogicAction = "hide"
	ActionSkip LogicAction = "skip"
)

// Condition is one AND-combined clause over another question's answer.
type Condition struct {
	QuestionID string            `json:"questionId" bson:"questionId"`
	Operator   ConditionOperator `json:"operator" bson:"operator"`
	Value      any               `json:"value" bson:"value"`
}

// LogicRule gates a question on answers given to earlier questions.
type LogicRule struct {
	Conditions []Condition `json:"conditions" bson:"conditions"`
	Action     LogicAction `json:"action" bson:"action"`
}

// Question is one prompt within a survey.
type Question struct {
	ID               string           `json:"id" bson:"id"`
	Type             QuestionType     `json:"type" bson:"type"`
	Label            string           `json:"label" bson:"label"`
	Description      string           `json:"description,omitempty" bson:"description,omitempty"`
	Placeholder      string           `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Required         bool             `json:"required" bson:"required"`
	Order            int              `json:"order" bson:"order"`
	Options          []Option         `json:"options,omitempty" bson:"options,omitempty"`
	Validation       *ValidationRules `json:"validation,omitempty" bson:"validation,omitempty"`
	Logic            *LogicRule       `json:"logic,omitempty" bson:"logic,omitempty"`
	ParentQuestionID string           `json:"parentQuestionId,omitempty" bson:"parentQuestionId,omitempty"`
	GroupID          string           `json:"groupId,omitempty" bson:"groupId,omitempty"`
	AllowOther       bool             `json:"allowOther" bson:"allowOther"`
	Metadata         map[string]any   `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// HasOptionValue reports whether v matches one of the question's option values.
func (q *Question) HasOptionValue(v string) bool {
	for _, opt := range q.Options {
		if opt.Value == v {
			return true
		}
	}
	return false
}
