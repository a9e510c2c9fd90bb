package previewengine

import (
	"log/slog"
	"strings"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// TerminationInfo describes a matched terminate rule. In test mode the
// navigation layer surfaces it as a warning and allows manual continuation,
// in production mode it ends the session.
type TerminationInfo struct {
	Reason     string `json:"reason"`
	RuleID     string `json:"ruleId"`
	QuestionID string `json:"questionId"`
}

// CheckTermination scans the terminate rules for ones whose condition
// references the just-answered question and matches the given answer against
// the rule's literal alternatives. Array answers match if any literal is
// present, scalar answers by exact match.
//
// Known limitation: when a rule condition references several questions, only
// the first literal set naming this question is honored.
func (rs *RuleSet) CheckTermination(questionID string, answer interface{}) *TerminationInfo {
	for _, rule := range rs.terminateRules {
		if rule.CondParseErr != nil {
			slog.Debug("terminate rule condition not parseable, skipping",
				slog.String("ruleID", rule.RuleID),
				slog.String("error", rule.CondParseErr.Error()))
			continue
		}
		leaf, ok := firstLeafFor(rule.Condition, questionID)
		if !ok {
			continue
		}
		if answerMatchesLiterals(answer, leaf.Values) {
			return &TerminationInfo{
				Reason:     rule.TerminateReason,
				RuleID:     rule.RuleID,
				QuestionID: questionID,
			}
		}
	}
	return nil
}

// firstLeafFor walks a condition depth-first and returns the first leaf
// comparison referencing the given question id.
func firstLeafFor(cond Condition, questionID string) (Condition, bool) {
	if cond.QuestionID == questionID {
		return cond, true
	}
	for _, child := range cond.Conditions {
		if leaf, ok := firstLeafFor(child, questionID); ok {
			return leaf, true
		}
	}
	return Condition{}, false
}

func answerMatchesLiterals(answer interface{}, literals []string) bool {
	items := surveyTypes.AsStrings(answer)
	for _, literal := range literals {
		for _, item := range items {
			if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(literal)) {
				return true
			}
		}
	}
	return false
}
