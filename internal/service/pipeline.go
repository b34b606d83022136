package service

import (
	"sort"

	"surveyhub/internal/model"
)

// AnswerInput is one submitted question-answer pair as it arrives from the
// client, before validation has typed it.
type AnswerInput struct {
	QuestionID string                 `json:"questionId"`
	Answer     any                    `json:"answer"`
	Files      []model.FileDescriptor `json:"files,omitempty"`
}

// ResponseValidationPipeline walks a survey's questions in declared order,
// filters them through the logic evaluator, and validates every applicable
// answer. It collects all violations in a single pass instead of stopping at
// the first one, so a caller can report every problem at once.
type ResponseValidationPipeline struct {
	logic     *LogicEvaluator
	validator *AnswerValidator
}

func NewResponseValidationPipeline(logic *LogicEvaluator, validator *AnswerValidator) *ResponseValidationPipeline {
	return &ResponseValidationPipeline{logic: logic, validator: validator}
}

// ValidateResponse returns the normalized answers for every applicable
// question plus all violations found. The answers are only meaningful when
// the error list is empty.
func (p *ResponseValidationPipeline) ValidateResponse(survey *model.Survey, inputs []AnswerInput) ([]model.Answer, []FieldError) {
	var errs []FieldError

	byQuestion := make(map[string]AnswerInput, len(inputs))
	for _, in := range inputs {
		q := survey.QuestionByID(in.QuestionID)
		if q == nil {
			errs = append(errs, FieldError{
				QuestionID: in.QuestionID,
				Message:    "does not belong to this survey",
			})
			continue
		}
		if _, dup := byQuestion[in.QuestionID]; dup {
			errs = append(errs, FieldError{
				QuestionID: in.QuestionID,
				Label:      q.Label,
				Message:    "was answered more than once",
			})
			continue
		}
		byQuestion[in.QuestionID] = in
	}

	// Logic clauses may only reference earlier questions, so one upfront
	// pass over the raw values is enough for consistent evaluation.
	answered := make(map[string]model.AnswerValue, len(byQuestion))
	for id, in := range byQuestion {
		if v, err := model.FromNative(in.Answer); err == nil {
			answered[id] = v
		}
	}

	answers := make([]model.Answer, 0, len(byQuestion))
	for _, q := range questionsInOrder(survey) {
		applicable, _ := p.logic.Applicable(q, answered)
		if !applicable {
			continue
		}

		in, present := byQuestion[q.ID]
		value, known := answered[q.ID]
		// An answer counts as given when it normalized to a non-empty value,
		// or failed to normalize at all (the validator reports that below).
		// Empty lists and empty file sets count as unanswered.
		hasValue := present && (!known || !value.IsEmpty())
		hasFiles := present && len(in.Files) > 0

		if !hasValue && !hasFiles {
			if q.Required {
				errs = append(errs, *fieldErr(q, "is required"))
			}
			continue
		}

		if q.Type.IsUpload() {
			answers = append(answers, model.Answer{QuestionID: q.ID, Value: model.FilesValue(in.Files), Files: in.Files})
			continue
		}

		value, ferr := p.validator.Validate(q, in.Answer)
		if ferr != nil {
			errs = append(errs, *ferr)
			continue
		}
		answers = append(answers, model.Answer{QuestionID: q.ID, Value: value, Files: in.Files})
	}

	return answers, errs
}

func questionsInOrder(survey *model.Survey) []*model.Question {
	out := make([]*model.Question, len(survey.Questions))
	for i := range survey.Questions {
		out[i] = &survey.Questions[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
