package previewengine

import (
	"fmt"
	"log/slog"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// ShowDecision is the outcome of evaluating the display conditions of one
// question. Reason is a human readable diagnostic for the navigation panel.
type ShowDecision struct {
	Show   bool   `json:"show"`
	Reason string `json:"reason,omitempty"`
}

// ShouldShow decides whether a question should be presented, given the
// current answers and cell assignment. Precedence, highest first:
//
//  1. routing rules whose action skips this question
//  2. the question's display_logic string
//  3. the question's structured skip_logic
//  4. no logic present: always show
//
// Evaluation errors never hide a question; they resolve to show with the
// error noted in the reason.
func (rs *RuleSet) ShouldShow(q *surveyTypes.Question, ctx EvalContext) ShowDecision {
	for _, rule := range rs.skipRulesFor[q.QuestionID] {
		if rule.CondParseErr != nil {
			slog.Debug("routing rule condition not parseable, ignoring for skip decision",
				slog.String("ruleID", rule.RuleID),
				slog.String("error", rule.CondParseErr.Error()))
			continue
		}
		matched, err := ctx.Evaluate(rule.Condition)
		if err != nil {
			slog.Debug("routing rule evaluation error",
				slog.String("ruleID", rule.RuleID),
				slog.String("error", err.Error()))
			continue
		}
		if matched {
			return ShowDecision{
				Show:   false,
				Reason: fmt.Sprintf("skipped by routing rule %s: %s", rule.RuleID, rule.RawCondition),
			}
		}
	}

	if dl, ok := rs.displayLogicFor[q.QuestionID]; ok {
		if dl.parseErr != nil {
			return ShowDecision{
				Show:   true,
				Reason: fmt.Sprintf("display logic not understood (%s), defaulting to show", dl.raw),
			}
		}
		matched, err := ctx.Evaluate(dl.condition)
		if err != nil {
			return ShowDecision{
				Show:   true,
				Reason: fmt.Sprintf("display logic evaluation error (%s), defaulting to show", err.Error()),
			}
		}
		if !matched {
			return ShowDecision{
				Show:   false,
				Reason: fmt.Sprintf("display condition not met: %s", dl.raw),
			}
		}
		return ShowDecision{Show: true, Reason: fmt.Sprintf("display condition met: %s", dl.raw)}
	}

	if sl, ok := rs.skipLogicFor[q.QuestionID]; ok {
		if sl.parseErr != nil {
			return ShowDecision{
				Show:   true,
				Reason: fmt.Sprintf("skip logic not understood (%s), defaulting to show", sl.parseErr.Error()),
			}
		}
		matched, err := ctx.Evaluate(sl.condition)
		if err != nil {
			return ShowDecision{
				Show:   true,
				Reason: fmt.Sprintf("skip logic evaluation error (%s), defaulting to show", err.Error()),
			}
		}
		if sl.action == surveyTypes.SKIP_LOGIC_ACTION_SHOW {
			if matched {
				return ShowDecision{Show: true, Reason: "skip logic condition met, showing"}
			}
			return ShowDecision{Show: false, Reason: "skip logic condition not met"}
		}
		// action "skip" (the default): a matching condition hides the question
		if matched {
			return ShowDecision{Show: false, Reason: "skip logic condition met, skipping"}
		}
		return ShowDecision{Show: true, Reason: "skip logic condition not met, showing"}
	}

	return ShowDecision{Show: true}
}
