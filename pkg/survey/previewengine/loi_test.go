package previewengine

import (
	"testing"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

func loiTestSurvey() *surveyTypes.Survey {
	return &surveyTypes.Survey{
		Screener: surveyTypes.Section{Questions: []surveyTypes.Question{
			{QuestionID: "SCR_1", QuestionText: "Age?", QuestionType: surveyTypes.QUESTION_TYPE_NUMERIC_INPUT},
			{QuestionID: "SCR_2", QuestionText: "Region?", QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"North", "South"}},
		}},
		MainSection: surveyTypes.MainSection{SubSections: []surveyTypes.SubSection{
			{SubSectionID: "MS1", Questions: []surveyTypes.Question{
				{QuestionID: "MS1_Q1", QuestionText: "Usage?", QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"Daily", "Weekly"}, Priority: surveyTypes.PRIORITY_RECOMMENDED, PriorityRank: 1},
				{QuestionID: "MS1_Q2", QuestionText: "Why?", QuestionType: surveyTypes.QUESTION_TYPE_OPEN_ENDED, Priority: surveyTypes.PRIORITY_RECOMMENDED, PriorityRank: 2},
				{QuestionID: "MS1_Q3", QuestionText: "Rate brands", QuestionType: surveyTypes.QUESTION_TYPE_MATRIX, Rows: []string{"A", "B", "C", "D", "E", "F"}, Columns: []string{"1", "2", "3"}, Priority: surveyTypes.PRIORITY_OPTIONAL, PriorityRank: 1},
				{QuestionID: "MS1_Q4", QuestionText: "Anything else?", QuestionType: surveyTypes.QUESTION_TYPE_OPEN_ENDED, Priority: surveyTypes.PRIORITY_OPTIONAL, PriorityRank: 2},
			}},
		}},
		Demographics: surveyTypes.Section{Questions: []surveyTypes.Question{
			{QuestionID: "DEM_1", QuestionText: "Income?", QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"Low", "High"}},
		}},
	}
}

func TestTierForPositionAndSnap(t *testing.T) {
	cases := []struct {
		position int
		tier     string
		snapped  int
	}{
		{0, LOI_TIER_QUICK, 0},
		{12, LOI_TIER_QUICK, 15},
		{25, LOI_TIER_QUICK, 15},
		{30, LOI_TIER_QUICK, 30},
		{45, LOI_TIER_STANDARD, 50},
		{50, LOI_TIER_STANDARD, 50},
		{60, LOI_TIER_STANDARD, 50},
		{70, LOI_TIER_STANDARD, 70},
		{80, LOI_TIER_DEEP, 85},
		{95, LOI_TIER_DEEP, 85},
		{100, LOI_TIER_DEEP, 100},
	}
	for _, c := range cases {
		if got := TierForPosition(c.position); got != c.tier {
			t.Errorf("TierForPosition(%d) = %s, want %s", c.position, got, c.tier)
		}
		if got := SnapPosition(c.position); got != c.snapped {
			t.Errorf("SnapPosition(%d) = %d, want %d", c.position, got, c.snapped)
		}
	}
}

func TestTierMonotonicity(t *testing.T) {
	survey := loiTestSurvey()
	quick := ComputeVisibleSet(survey, LOI_SNAP_QUICK)
	standard := ComputeVisibleSet(survey, LOI_SNAP_STANDARD)
	deep := ComputeVisibleSet(survey, LOI_POSITION_MAX)

	for id := range quick {
		if !standard[id] {
			t.Errorf("question %s visible at quick but not at standard", id)
		}
	}
	for id := range standard {
		if !deep[id] {
			t.Errorf("question %s visible at standard but not at deep", id)
		}
	}

	t.Run("quick shows only required", func(t *testing.T) {
		for _, id := range []string{"SCR_1", "SCR_2"} {
			if !quick[id] {
				t.Errorf("screener question %s must be visible at quick", id)
			}
		}
		for _, id := range []string{"MS1_Q3", "MS1_Q4"} {
			if quick[id] {
				t.Errorf("optional question %s must be hidden at quick", id)
			}
		}
	})

	t.Run("deep maximum shows everything", func(t *testing.T) {
		for _, q := range survey.AllQuestions() {
			if !deep[q.QuestionID] {
				t.Errorf("question %s must be visible at position 100", q.QuestionID)
			}
		}
	})
}

func TestOverridePrecedence(t *testing.T) {
	survey := loiTestSurvey()
	calc := NewLOICalculator(survey)
	calc.UpdateLOIConfig(LOI_SNAP_QUICK)

	t.Run("pinned wins over hidden tier", func(t *testing.T) {
		calc.PinQuestion("MS1_Q4")
		visible := ComputeVisibleSet(survey, LOI_SNAP_QUICK)
		if !visible["MS1_Q4"] {
			t.Error("pinned question must be visible at any tier")
		}
	})

	t.Run("excluded wins over visible tier", func(t *testing.T) {
		calc.ExcludeQuestion("SCR_1")
		visible := ComputeVisibleSet(survey, LOI_POSITION_MAX)
		if visible["SCR_1"] {
			t.Error("excluded question must be hidden at any tier")
		}
	})

	t.Run("reset restores tier visibility exactly", func(t *testing.T) {
		calc.ResetQuestionOverride("MS1_Q4")
		calc.ResetQuestionOverride("SCR_1")
		baseline := ComputeVisibleSet(loiTestSurvey(), LOI_SNAP_QUICK)
		reset := ComputeVisibleSet(survey, LOI_SNAP_QUICK)
		if len(baseline) != len(reset) {
			t.Errorf("reset visibility differs from baseline: %v vs %v", baseline, reset)
			return
		}
		for id := range baseline {
			if !reset[id] {
				t.Errorf("question %s missing after reset", id)
			}
		}
	})
}

func TestUpdateLOIConfigSummary(t *testing.T) {
	survey := loiTestSurvey()
	calc := NewLOICalculator(survey)
	config := calc.UpdateLOIConfig(LOI_POSITION_MAX)

	if config.TotalQuestions != 7 {
		t.Errorf("unexpected total questions: %d", config.TotalQuestions)
	}
	if config.VisibleQuestions != 7 || config.HiddenQuestions != 0 {
		t.Errorf("unexpected visibility counts: %+v", config)
	}
	if config.SnapPoint != LOI_TIER_DEEP {
		t.Errorf("unexpected snap point: %s", config.SnapPoint)
	}
	if config.EstimatedLOI <= 0 {
		t.Errorf("expected a positive LOI estimate, got %f", config.EstimatedLOI)
	}
	if survey.LOIConfig == nil {
		t.Error("config must be stored on the document")
	}
}

func TestEstimateQuestionSeconds(t *testing.T) {
	cases := []struct {
		q    surveyTypes.Question
		want int
	}{
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_MATRIX, Rows: []string{"a", "b", "c"}}, 9},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_MATRIX, Rows: make([]string, 20)}, 45},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: []string{"a", "b"}}, 6},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: make([]string, 8)}, 10},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_SINGLE_CHOICE, Options: make([]string, 12)}, 12},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_MULTIPLE_CHOICE}, 12},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_RANKING, Options: make([]string, 4)}, 20},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_OPEN_ENDED}, 30},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_SCALE}, 8},
		{surveyTypes.Question{QuestionType: surveyTypes.QUESTION_TYPE_STIMULUS_DISPLAY}, 10},
	}
	for _, c := range cases {
		if got := estimateQuestionSeconds(&c.q); got != c.want {
			t.Errorf("estimateQuestionSeconds(%s) = %d, want %d", c.q.QuestionType, got, c.want)
		}
	}
}

func TestInferPriority(t *testing.T) {
	cases := []struct {
		q    surveyTypes.Question
		want string
	}{
		{surveyTypes.Question{QuestionID: "SCR_1"}, surveyTypes.PRIORITY_REQUIRED},
		{surveyTypes.Question{QuestionID: "S3"}, surveyTypes.PRIORITY_REQUIRED},
		{surveyTypes.Question{QuestionID: "DEM_2"}, surveyTypes.PRIORITY_RECOMMENDED},
		{surveyTypes.Question{QuestionID: "MS1_Q1", Rows: make([]string, 6)}, surveyTypes.PRIORITY_OPTIONAL},
		{surveyTypes.Question{QuestionID: "MS1_Q2", DisplayLogic: "SHOW ONLY IF S1 = 'Yes'"}, surveyTypes.PRIORITY_OPTIONAL},
		{surveyTypes.Question{QuestionID: "MS1_Q3"}, surveyTypes.PRIORITY_RECOMMENDED},
	}
	for _, c := range cases {
		if got := inferPriority(&c.q); got != c.want {
			t.Errorf("inferPriority(%s) = %s, want %s", c.q.QuestionID, got, c.want)
		}
	}
}
