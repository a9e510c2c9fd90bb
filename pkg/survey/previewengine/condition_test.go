package previewengine

import (
	"testing"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

func TestEvaluateEquals(t *testing.T) {
	cond := Condition{Op: OP_EQUALS, QuestionID: "MS1_Q2", Values: []string{"No", "Maybe"}}

	t.Run("scalar match", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"MS1_Q2": "No"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected condition to match")
		}
	})

	t.Run("scalar no match", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"MS1_Q2": "Yes"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val {
			t.Error("expected condition not to match")
		}
	})

	t.Run("array containment", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"MS1_Q2": []string{"Yes", "Maybe"}}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected array answer to match via containment")
		}
	})

	t.Run("unanswered question", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val {
			t.Error("unanswered question must not match")
		}
	})
}

func TestEvaluateNotEquals(t *testing.T) {
	cond := Condition{Op: OP_NOT_EQUALS, QuestionID: "S3", Values: []string{"None of the above"}}

	t.Run("differs", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"S3": "Brand A"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected not_equals to hold")
		}
	})

	t.Run("equal", func(t *testing.T) {
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"S3": "None of the above"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val {
			t.Error("expected not_equals to fail on equal answer")
		}
	})
}

func TestEvaluateNumericComparisons(t *testing.T) {
	t.Run("greater_than with numeric coercion", func(t *testing.T) {
		cond := Condition{Op: OP_GREATER_THAN, QuestionID: "DEM_AGE", Values: []string{"17"}}
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"DEM_AGE": "25"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected 25 > 17")
		}
	})

	t.Run("less_than", func(t *testing.T) {
		cond := Condition{Op: OP_LESS_THAN, QuestionID: "DEM_AGE", Values: []string{"18"}}
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"DEM_AGE": float64(16)}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected 16 < 18")
		}
	})

	t.Run("non numeric answer errors", func(t *testing.T) {
		cond := Condition{Op: OP_GREATER_THAN, QuestionID: "DEM_AGE", Values: []string{"18"}}
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"DEM_AGE": "old enough"}}
		_, err := ctx.Evaluate(cond)
		if err == nil {
			t.Error("expected an error for non numeric answer")
		}
	})
}

func TestEvaluateContains(t *testing.T) {
	t.Run("array membership", func(t *testing.T) {
		cond := Condition{Op: OP_CONTAINS, QuestionID: "MS2_Q1", Values: []string{"Vanilla"}}
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"MS2_Q1": []string{"Chocolate", "Vanilla"}}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected array containment match")
		}
	})

	t.Run("substring on scalar", func(t *testing.T) {
		cond := Condition{Op: OP_CONTAINS, QuestionID: "MS2_Q2", Values: []string{"vanilla"}}
		ctx := EvalContext{Answers: surveyTypes.AnswerMap{"MS2_Q2": "I prefer Vanilla overall"}}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected substring match")
		}
	})
}

func TestEvaluateCellAssigned(t *testing.T) {
	cond := Condition{Op: OP_CELL_ASSIGNED, Values: []string{"Cell 2"}}

	t.Run("matching assignment", func(t *testing.T) {
		ctx := EvalContext{CellAssignment: "Cell 2"}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected cell match")
		}
	})

	t.Run("normalized naming", func(t *testing.T) {
		ctx := EvalContext{CellAssignment: "2"}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if !val {
			t.Error("expected 'Cell 2' and '2' to compare equal")
		}
	})

	t.Run("no assignment", func(t *testing.T) {
		ctx := EvalContext{}
		val, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val {
			t.Error("expected no match without assignment")
		}
	})
}

func TestEvaluateComposite(t *testing.T) {
	and := Condition{Op: OP_AND, Conditions: []Condition{
		{Op: OP_EQUALS, QuestionID: "S1", Values: []string{"Yes"}},
		{Op: OP_EQUALS, QuestionID: "S2", Values: []string{"Weekly"}},
	}}
	or := Condition{Op: OP_OR, Conditions: and.Conditions}

	ctx := EvalContext{Answers: surveyTypes.AnswerMap{"S1": "Yes", "S2": "Monthly"}}

	val, err := ctx.Evaluate(and)
	if err != nil {
		t.Errorf("unexpected error: %s", err.Error())
		return
	}
	if val {
		t.Error("AND should fail when one operand fails")
	}

	val, err = ctx.Evaluate(or)
	if err != nil {
		t.Errorf("unexpected error: %s", err.Error())
		return
	}
	if !val {
		t.Error("OR should hold when one operand holds")
	}
}

func TestEvaluateUnknownOp(t *testing.T) {
	ctx := EvalContext{}
	_, err := ctx.Evaluate(Condition{Op: "sometimes"})
	if err == nil {
		t.Error("expected an error for unknown operators")
	}
}

func TestEvaluateDeterminism(t *testing.T) {
	cond := Condition{Op: OP_OR, Conditions: []Condition{
		{Op: OP_EQUALS, QuestionID: "S1", Values: []string{"Yes"}},
		{Op: OP_CELL_ASSIGNED, Values: []string{"Cell 1"}},
	}}
	ctx := EvalContext{
		Answers:        surveyTypes.AnswerMap{"S1": "Yes"},
		CellAssignment: "Cell 3",
	}

	first, err := ctx.Evaluate(cond)
	if err != nil {
		t.Errorf("unexpected error: %s", err.Error())
		return
	}
	for i := 0; i < 50; i++ {
		again, err := ctx.Evaluate(cond)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if again != first {
			t.Errorf("evaluation not deterministic on call %d", i)
			return
		}
	}
}
