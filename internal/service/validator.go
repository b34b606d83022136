package service

import (
	"fmt"
	"regexp"
	"time"

	"surveyhub/internal/model"
)

// AnswerValidator checks one raw answer value against one question's type
// and validation rules, normalizing it into the tagged union on success.
type AnswerValidator struct{}

func NewAnswerValidator() *AnswerValidator { return &AnswerValidator{} }

func fieldErr(q *model.Question, format string, args ...any) *FieldError {
	return &FieldError{
		QuestionID: q.ID,
		Label:      q.Label,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Validate normalizes raw into an AnswerValue and applies the per-type rules.
// File-backed types pass through untouched; byte-level checks belong to the
// upload collaborator.
func (v *AnswerValidator) Validate(q *model.Question, raw any) (model.AnswerValue, *FieldError) {
	value, err := model.FromNative(raw)
	if err != nil {
		return model.EmptyValue(), fieldErr(q, "has an invalid value")
	}

	switch q.Type {
	case model.QuestionTypeNumber:
		return v.validateNumber(q, value)
	case model.QuestionTypeText, model.QuestionTypeTextarea:
		return v.validateText(q, value)
	case model.QuestionTypeSelect, model.QuestionTypeRadio:
		return v.validateChoice(q, value)
	case model.QuestionTypeCheckbox:
		return v.validateCheckbox(q, value)
	case model.QuestionTypeDate:
		return v.validateDate(q, value)
	case model.QuestionTypeTime:
		return v.validateTime(q, value)
	case model.QuestionTypeLocation:
		return v.validateLocation(q, value)
	case model.QuestionTypeFile, model.QuestionTypeAudio, model.QuestionTypeVideo:
		return value, nil
	}
	return model.EmptyValue(), fieldErr(q, "has an unknown question type %q", q.Type)
}

func (v *AnswerValidator) validateNumber(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindNumber {
		return model.EmptyValue(), fieldErr(q, "must be a number")
	}
	if r := q.Validation; r != nil {
		if r.Min != nil && value.Num < *r.Min {
			return model.EmptyValue(), fieldErr(q, "must be at least %v", *r.Min)
		}
		if r.Max != nil && value.Num > *r.Max {
			return model.EmptyValue(), fieldErr(q, "must be at most %v", *r.Max)
		}
	}
	return value, nil
}

func (v *AnswerValidator) validateText(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindString {
		return model.EmptyValue(), fieldErr(q, "must be text")
	}
	if r := q.Validation; r != nil {
		if r.MinLength != nil && len(value.Str) < *r.MinLength {
			return model.EmptyValue(), fieldErr(q, "must be at least %d characters", *r.MinLength)
		}
		if r.MaxLength != nil && len(value.Str) > *r.MaxLength {
			return model.EmptyValue(), fieldErr(q, "must be at most %d characters", *r.MaxLength)
		}
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err != nil || !re.MatchString(value.Str) {
				return model.EmptyValue(), fieldErr(q, "must match the required pattern")
			}
		}
	}
	return value, nil
}

func (v *AnswerValidator) validateChoice(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindString {
		return model.EmptyValue(), fieldErr(q, "must be one of the available options")
	}
	if !q.HasOptionValue(value.Str) && !q.AllowOther {
		return model.EmptyValue(), fieldErr(q, "has an invalid option %q", value.Str)
	}
	return value, nil
}

func (v *AnswerValidator) validateCheckbox(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindStringList {
		return model.EmptyValue(), fieldErr(q, "must be a list of options")
	}
	for _, item := range value.List {
		if !q.HasOptionValue(item) && !q.AllowOther {
			return model.EmptyValue(), fieldErr(q, "has an invalid option %q", item)
		}
	}
	return value, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func (v *AnswerValidator) validateDate(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindString {
		return model.EmptyValue(), fieldErr(q, "must be a date")
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value.Str); err == nil {
			return value, nil
		}
	}
	return model.EmptyValue(), fieldErr(q, "must be a valid date")
}

var timeLayouts = []string{"15:04", "15:04:05"}

func (v *AnswerValidator) validateTime(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindString {
		return model.EmptyValue(), fieldErr(q, "must be a time")
	}
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, value.Str); err == nil {
			return value, nil
		}
	}
	return model.EmptyValue(), fieldErr(q, "must be a valid time")
}

func (v *AnswerValidator) validateLocation(q *model.Question, value model.AnswerValue) (model.AnswerValue, *FieldError) {
	if value.Kind != model.KindLocation || value.Location == nil {
		return model.EmptyValue(), fieldErr(q, "must be a location with latitude and longitude")
	}
	return value, nil
}
