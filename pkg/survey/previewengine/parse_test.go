package previewengine

import (
	"testing"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

func TestParseRoutingCondition(t *testing.T) {
	t.Run("single comparison", func(t *testing.T) {
		cond, err := ParseRoutingCondition("S1 = 'No'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_EQUALS || cond.QuestionID != "S1" {
			t.Errorf("unexpected condition: %+v", cond)
		}
		if len(cond.Values) != 1 || cond.Values[0] != "No" {
			t.Errorf("unexpected values: %v", cond.Values)
		}
	})

	t.Run("literal alternatives on OR", func(t *testing.T) {
		cond, err := ParseRoutingCondition("MS1_Q2 = 'No' OR 'Maybe'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_EQUALS || cond.QuestionID != "MS1_Q2" {
			t.Errorf("unexpected condition: %+v", cond)
		}
		if len(cond.Values) != 2 || cond.Values[0] != "No" || cond.Values[1] != "Maybe" {
			t.Errorf("unexpected values: %v", cond.Values)
		}
	})

	t.Run("two OR-joined comparisons", func(t *testing.T) {
		// legacy shape previously hard-coded per rule id in the old preview
		cond, err := ParseRoutingCondition("S5 = 'None of these' OR S6 = 'Never'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_OR || len(cond.Conditions) != 2 {
			t.Errorf("unexpected condition: %+v", cond)
			return
		}
		if cond.Conditions[0].QuestionID != "S5" || cond.Conditions[1].QuestionID != "S6" {
			t.Errorf("unexpected comparands: %+v", cond.Conditions)
		}
	})

	t.Run("AND of comparisons", func(t *testing.T) {
		cond, err := ParseRoutingCondition("S1 = 'Yes' AND S2 = 'Weekly' OR 'Daily'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_AND || len(cond.Conditions) != 2 {
			t.Errorf("unexpected condition: %+v", cond)
			return
		}
		second := cond.Conditions[1]
		if second.QuestionID != "S2" || len(second.Values) != 2 {
			t.Errorf("unexpected second operand: %+v", second)
		}
	})

	t.Run("cell assignment reference", func(t *testing.T) {
		// legacy shape the old preview resolved through a hand-written case
		cond, err := ParseRoutingCondition("assigned to Cell 2")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_CELL_ASSIGNED {
			t.Errorf("unexpected condition: %+v", cond)
			return
		}
		if len(cond.Values) != 1 || cond.Values[0] != "2" {
			t.Errorf("unexpected cell values: %v", cond.Values)
		}
	})

	t.Run("inequality", func(t *testing.T) {
		cond, err := ParseRoutingCondition("S3 != 'None of the above'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_NOT_EQUALS {
			t.Errorf("unexpected op: %s", cond.Op)
		}
	})

	t.Run("unparseable text", func(t *testing.T) {
		_, err := ParseRoutingCondition("when the respondent feels like it")
		if err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("empty condition", func(t *testing.T) {
		_, err := ParseRoutingCondition("   ")
		if err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestParseDisplayLogic(t *testing.T) {
	t.Run("cell membership", func(t *testing.T) {
		cond, err := ParseDisplayLogic("SHOW ONLY IF assigned to Concept B cell")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_CELL_ASSIGNED || cond.Values[0] != "Concept B" {
			t.Errorf("unexpected condition: %+v", cond)
		}
	})

	t.Run("inequality", func(t *testing.T) {
		cond, err := ParseDisplayLogic("SHOW ONLY IF S3 ≠ 'None of the above'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_NOT_EQUALS || cond.QuestionID != "S3" {
			t.Errorf("unexpected condition: %+v", cond)
		}
	})

	t.Run("equality", func(t *testing.T) {
		cond, err := ParseDisplayLogic("SHOW ONLY IF MS1_Q1 = 'Yes'")
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_EQUALS || cond.QuestionID != "MS1_Q1" || cond.Values[0] != "Yes" {
			t.Errorf("unexpected condition: %+v", cond)
		}
	})

	t.Run("unrecognized text is a parse error", func(t *testing.T) {
		_, err := ParseDisplayLogic("SHOW ONLY IF respondent seems engaged")
		if err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestCompileSkipLogic(t *testing.T) {
	t.Run("simple condition", func(t *testing.T) {
		sl := &surveyTypes.SkipLogic{
			ConditionType: surveyTypes.SKIP_LOGIC_CONDITION_TYPE_SIMPLE,
			SimpleCondition: &surveyTypes.SimpleCondition{
				TargetQuestionID: "Q1",
				Operator:         surveyTypes.SKIP_LOGIC_OPERATOR_EQUALS,
				Value:            "X",
			},
			Action: surveyTypes.SKIP_LOGIC_ACTION_SKIP,
		}
		cond, err := CompileSkipLogic(sl)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_EQUALS || cond.QuestionID != "Q1" || cond.Values[0] != "X" {
			t.Errorf("unexpected condition: %+v", cond)
		}
	})

	t.Run("complex OR condition", func(t *testing.T) {
		sl := &surveyTypes.SkipLogic{
			ConditionType: surveyTypes.SKIP_LOGIC_CONDITION_TYPE_COMPLEX,
			ComplexCondition: &surveyTypes.ComplexCondition{
				LogicOperator: surveyTypes.SKIP_LOGIC_LOGIC_OPERATOR_OR,
				Conditions: []surveyTypes.SimpleCondition{
					{TargetQuestionID: "Q1", Operator: surveyTypes.SKIP_LOGIC_OPERATOR_EQUALS, Value: "A"},
					{TargetQuestionID: "Q2", Operator: surveyTypes.SKIP_LOGIC_OPERATOR_NOT_CONTAINS, Value: "B"},
				},
			},
			Action: surveyTypes.SKIP_LOGIC_ACTION_SHOW,
		}
		cond, err := CompileSkipLogic(sl)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if cond.Op != OP_OR || len(cond.Conditions) != 2 {
			t.Errorf("unexpected condition: %+v", cond)
			return
		}
		if cond.Conditions[1].Op != OP_NOT_CONTAINS {
			t.Errorf("unexpected operand op: %s", cond.Conditions[1].Op)
		}
	})

	t.Run("unknown operator", func(t *testing.T) {
		sl := &surveyTypes.SkipLogic{
			ConditionType: surveyTypes.SKIP_LOGIC_CONDITION_TYPE_SIMPLE,
			SimpleCondition: &surveyTypes.SimpleCondition{
				TargetQuestionID: "Q1",
				Operator:         "resembles",
				Value:            "X",
			},
		}
		if _, err := CompileSkipLogic(sl); err == nil {
			t.Error("expected an error for unknown operator")
		}
	})
}

func TestCompileRulesRoutingIndex(t *testing.T) {
	survey := &surveyTypes.Survey{
		Screener: surveyTypes.Section{Questions: []surveyTypes.Question{
			{QuestionID: "S1", QuestionText: "Do you buy ice cream?", QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"Yes", "No"}},
		}},
		MainSection: surveyTypes.MainSection{SubSections: []surveyTypes.SubSection{
			{SubSectionID: "MS1", Questions: []surveyTypes.Question{
				{QuestionID: "MS1_Q1", QuestionText: "Which flavors?", QuestionType: surveyTypes.QUESTION_TYPE_MULTIPLE_CHOICE, Options: []string{"Vanilla", "Chocolate"}},
				{QuestionID: "MS1_Q2", QuestionText: "Would you buy it?", QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"Yes", "No", "Maybe"}},
			}},
		}},
		Flow: surveyTypes.Flow{RoutingRules: []surveyTypes.RoutingRule{
			{RuleID: "R1", Condition: "S1 = 'No'", Action: "TERMINATE - not a buyer"},
			{RuleID: "R2", Condition: "MS1_Q1 = 'Vanilla'", Action: "SKIP MS1_Q2"},
			{RuleID: "R3", Condition: "S1 = 'Yes'", Action: "SHOW MS1_Q1; SKIP MS1_Q2"},
		}},
	}

	rs := CompileRules(survey)

	if len(rs.Rules()) != 3 {
		t.Errorf("expected 3 compiled rules, got %d", len(rs.Rules()))
	}
	if len(rs.terminateRules) != 1 || rs.terminateRules[0].RuleID != "R1" {
		t.Errorf("unexpected terminate rules: %+v", rs.terminateRules)
	}
	if rs.terminateRules[0].TerminateReason != "not a buyer" {
		t.Errorf("unexpected terminate reason: %q", rs.terminateRules[0].TerminateReason)
	}
	skips := rs.skipRulesFor["MS1_Q2"]
	if len(skips) != 2 {
		t.Errorf("expected 2 skip rules targeting MS1_Q2, got %d", len(skips))
	}
	if len(rs.skipRulesFor["MS1_Q1"]) != 0 {
		t.Error("SHOW clause must not register a skip")
	}
}
