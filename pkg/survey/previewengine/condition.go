package previewengine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// Condition operators. All three legacy condition representations (routing
// rule text, display_logic text, structured skip_logic) are compiled into
// this one tagged variant at session start and evaluated uniformly.
const (
	OP_ALWAYS        = "always"
	OP_EQUALS        = "equals"
	OP_NOT_EQUALS    = "not_equals"
	OP_CONTAINS      = "contains"
	OP_NOT_CONTAINS  = "not_contains"
	OP_GREATER_THAN  = "greater_than"
	OP_LESS_THAN     = "less_than"
	OP_CELL_ASSIGNED = "cell_assigned"
	OP_AND           = "and"
	OP_OR            = "or"
)

type Condition struct {
	Op         string
	QuestionID string      // comparand question for leaf operators
	Values     []string    // literal alternatives; a leaf matches if any of them does
	Conditions []Condition // operands for and/or
}

// EvalContext contains all the data conditions can be evaluated against.
// Evaluation is read-only: the same (condition, context) pair always yields
// the same result.
type EvalContext struct {
	Answers        surveyTypes.AnswerMap
	CellAssignment string
}

func (ctx EvalContext) Evaluate(cond Condition) (val bool, err error) {
	switch cond.Op {
	case OP_ALWAYS:
		val = true
	case OP_EQUALS:
		val, err = ctx.equals(cond)
	case OP_NOT_EQUALS:
		val, err = ctx.equals(cond)
		val = !val
	case OP_CONTAINS:
		val, err = ctx.contains(cond)
	case OP_NOT_CONTAINS:
		val, err = ctx.contains(cond)
		val = !val
	case OP_GREATER_THAN:
		val, err = ctx.compareNumeric(cond, false)
	case OP_LESS_THAN:
		val, err = ctx.compareNumeric(cond, true)
	case OP_CELL_ASSIGNED:
		val, err = ctx.cellAssigned(cond)
	case OP_AND:
		val, err = ctx.and(cond)
	case OP_OR:
		val, err = ctx.or(cond)
	default:
		err = fmt.Errorf("condition op not known: %s", cond.Op)
		slog.Debug("unexpected error during condition eval", slog.String("error", err.Error()))
		return
	}
	return
}

// equals checks membership of the answer in the literal alternatives.
// Scalar answers match by exact equality, array answers by containment of
// any literal.
func (ctx EvalContext) equals(cond Condition) (val bool, err error) {
	answer, ok := ctx.Answers[cond.QuestionID]
	if !ok {
		return false, nil
	}
	items := surveyTypes.AsStrings(answer)
	for _, literal := range cond.Values {
		for _, item := range items {
			if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(literal)) {
				return true, nil
			}
		}
	}
	return false, nil
}

// contains checks array membership for multi-select answers and substring
// containment for scalar string answers.
func (ctx EvalContext) contains(cond Condition) (val bool, err error) {
	answer, ok := ctx.Answers[cond.QuestionID]
	if !ok {
		return false, nil
	}
	if surveyTypes.IsArray(answer) {
		return ctx.equals(cond)
	}
	items := surveyTypes.AsStrings(answer)
	if len(items) == 0 {
		return false, nil
	}
	for _, literal := range cond.Values {
		if strings.Contains(strings.ToLower(items[0]), strings.ToLower(strings.TrimSpace(literal))) {
			return true, nil
		}
	}
	return false, nil
}

func (ctx EvalContext) compareNumeric(cond Condition, lessThan bool) (val bool, err error) {
	answer, ok := ctx.Answers[cond.QuestionID]
	if !ok {
		return false, nil
	}
	answerNum, ok := surveyTypes.AsNumber(answer)
	if !ok {
		return false, fmt.Errorf("answer for %s is not numeric", cond.QuestionID)
	}
	if len(cond.Values) == 0 {
		return false, errors.New("missing comparison value")
	}
	condNum, ok := surveyTypes.AsNumber(cond.Values[0])
	if !ok {
		return false, fmt.Errorf("comparison value is not numeric: %s", cond.Values[0])
	}
	if lessThan {
		return answerNum < condNum, nil
	}
	return answerNum > condNum, nil
}

func (ctx EvalContext) cellAssigned(cond Condition) (val bool, err error) {
	if ctx.CellAssignment == "" {
		return false, nil
	}
	for _, cell := range cond.Values {
		if strings.EqualFold(normalizeCellName(cell), normalizeCellName(ctx.CellAssignment)) {
			return true, nil
		}
	}
	return false, nil
}

func (ctx EvalContext) and(cond Condition) (val bool, err error) {
	if len(cond.Conditions) == 0 {
		return false, errors.New("and: missing operands")
	}
	for _, child := range cond.Conditions {
		childVal, err := ctx.Evaluate(child)
		if err != nil {
			return false, err
		}
		if !childVal {
			return false, nil
		}
	}
	return true, nil
}

func (ctx EvalContext) or(cond Condition) (val bool, err error) {
	if len(cond.Conditions) == 0 {
		return false, errors.New("or: missing operands")
	}
	for _, child := range cond.Conditions {
		childVal, err := ctx.Evaluate(child)
		if err != nil {
			return false, err
		}
		if childVal {
			return true, nil
		}
	}
	return false, nil
}

// normalizeCellName strips an optional "cell" prefix/suffix so "Cell 2",
// "2" and "cell 2" all compare equal.
func normalizeCellName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.TrimPrefix(name, "cell ")
	name = strings.TrimSuffix(name, " cell")
	return strings.TrimSpace(name)
}
