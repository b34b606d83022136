package service

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"surveyhub/internal/model"
)

// LogicEvaluator decides whether a question applies given the answers
// collected so far. Conditions are AND-combined; there is no OR.
type LogicEvaluator struct{}

func NewLogicEvaluator() *LogicEvaluator { return &LogicEvaluator{} }

// Applicable reports whether the question must be answered/validated, and
// whether a triggered skip action suppresses required checks.
//
// A question without logic always applies. When the clause triggers, the
// action decides: show makes the question applicable, hide and skip make it
// inapplicable (skip additionally never raises a required error). When the
// clause does not trigger, hide/skip leave the question applicable and a
// show question stays hidden until its trigger fires.
func (e *LogicEvaluator) Applicable(q *model.Question, answered map[string]model.AnswerValue) (applicable, skipped bool) {
	if q.Logic == nil || len(q.Logic.Conditions) == 0 {
		return true, false
	}

	triggered := true
	for _, cond := range q.Logic.Conditions {
		if !matchCondition(cond, answered[cond.QuestionID]) {
			triggered = false
			break
		}
	}

	switch q.Logic.Action {
	case model.ActionShow:
		return triggered, false
	case model.ActionHide:
		return !triggered, false
	case model.ActionSkip:
		if triggered {
			return false, true
		}
		return true, false
	}
	return true, false
}

func matchCondition(cond model.Condition, answer model.AnswerValue) bool {
	if answer.IsEmpty() {
		return false
	}

	switch cond.Operator {
	case model.OpEquals:
		return valueEquals(answer, cond.Value)
	case model.OpNotEquals:
		return !valueEquals(answer, cond.Value)
	case model.OpGreaterThan:
		return compareOrdered(answer, cond.Value, func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b })
	case model.OpLessThan:
		return compareOrdered(answer, cond.Value, func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b })
	case model.OpContains:
		return valueContains(answer, cond.Value)
	case model.OpIn:
		return valueIn(answer, cond.Value)
	}
	return false
}

func valueEquals(answer model.AnswerValue, cond any) bool {
	switch answer.Kind {
	case model.KindString:
		s, ok := condString(cond)
		return ok && answer.Str == s
	case model.KindNumber:
		n, ok := condFloat(cond)
		return ok && answer.Num == n
	case model.KindBool:
		b, ok := cond.(bool)
		return ok && answer.Bool == b
	case model.KindStringList:
		// A list equals a scalar only when it is that single selection.
		s, ok := condString(cond)
		return ok && len(answer.List) == 1 && answer.List[0] == s
	}
	return false
}

func compareOrdered(answer model.AnswerValue, cond any, numCmp func(a, b float64) bool, strCmp func(a, b string) bool) bool {
	switch answer.Kind {
	case model.KindNumber:
		n, ok := condFloat(cond)
		return ok && numCmp(answer.Num, n)
	case model.KindString:
		// Numeric-looking condition against a string answer has no defined
		// ordering; fall back to native string comparison.
		s, ok := condString(cond)
		return ok && strCmp(answer.Str, s)
	}
	return false
}

func valueContains(answer model.AnswerValue, cond any) bool {
	switch answer.Kind {
	case model.KindString:
		s, ok := condString(cond)
		return ok && strings.Contains(answer.Str, s)
	case model.KindStringList:
		s, ok := condString(cond)
		if !ok {
			return false
		}
		for _, item := range answer.List {
			if item == s {
				return true
			}
		}
	}
	return false
}

func valueIn(answer model.AnswerValue, cond any) bool {
	items := condSlice(cond)
	if items == nil {
		return false
	}
	for _, item := range items {
		if valueEquals(answer, item) {
			return true
		}
	}
	return false
}

func condString(cond any) (string, bool) {
	s, ok := cond.(string)
	return s, ok
}

func condFloat(cond any) (float64, bool) {
	switch n := cond.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func condSlice(cond any) []any {
	switch items := cond.(type) {
	case []any:
		return items
	case primitive.A:
		return []any(items)
	case []string:
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out
	}
	return nil
}
