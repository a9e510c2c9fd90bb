package previewengine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// CompiledRule is a routing rule with its free-text condition and action
// resolved into evaluable form. Parse failures are kept on the rule so the
// evaluator can fail open with a reason instead of dropping the rule silently.
type CompiledRule struct {
	RuleID          string
	RawCondition    string
	RawAction       string
	Condition       Condition
	CondParseErr    error
	SkipTargets     []string
	ShowTargets     []string
	Terminate       bool
	TerminateReason string
}

type compiledDisplayLogic struct {
	raw       string
	condition Condition
	parseErr  error
}

type compiledSkipLogic struct {
	condition Condition
	action    string
	parseErr  error
}

// RuleSet holds every condition of a survey document compiled at session
// start: the routing rule table plus per-question display_logic and
// skip_logic. It is immutable after compilation.
type RuleSet struct {
	rules           []*CompiledRule
	skipRulesFor    map[string][]*CompiledRule
	terminateRules  []*CompiledRule
	displayLogicFor map[string]compiledDisplayLogic
	skipLogicFor    map[string]compiledSkipLogic
}

var (
	comparisonRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(!=|<>|=)\s*(.+)$`)
	cellAssignRegex = regexp.MustCompile(`(?i)assigned\s+to\s+(?:the\s+)?(?:cell\s+([A-Za-z0-9 _-]+?)\s*$|(.+?)\s+cell\b)`)
	questionIDRegex = regexp.MustCompile(`\b[A-Z][A-Z0-9_]*\b`)
	orSplitRegex    = regexp.MustCompile(`(?i)\s+OR\s+`)
	andSplitRegex   = regexp.MustCompile(`(?i)\s+AND\s+`)
	terminateRegex  = regexp.MustCompile(`(?i)^terminate\b[\s:-]*`)
	showOnlyIfRegex = regexp.MustCompile(`(?i)^\s*show\s+only\s+if\s+`)
)

// CompileRules ingests all three condition representations of a survey
// document into a single rule set.
func CompileRules(survey *surveyTypes.Survey) *RuleSet {
	rs := &RuleSet{
		skipRulesFor:    map[string][]*CompiledRule{},
		displayLogicFor: map[string]compiledDisplayLogic{},
		skipLogicFor:    map[string]compiledSkipLogic{},
	}

	questionIDs := map[string]bool{}
	for _, id := range survey.QuestionIDs() {
		questionIDs[id] = true
	}

	for _, rule := range survey.Flow.RoutingRules {
		compiled := compileRoutingRule(rule, questionIDs)
		rs.rules = append(rs.rules, compiled)
		for _, target := range compiled.SkipTargets {
			rs.skipRulesFor[target] = append(rs.skipRulesFor[target], compiled)
		}
		if compiled.Terminate {
			rs.terminateRules = append(rs.terminateRules, compiled)
		}
	}

	for _, q := range survey.AllQuestions() {
		if q.DisplayLogic != "" {
			cond, err := ParseDisplayLogic(q.DisplayLogic)
			rs.displayLogicFor[q.QuestionID] = compiledDisplayLogic{
				raw:       q.DisplayLogic,
				condition: cond,
				parseErr:  err,
			}
		}
		if q.SkipLogic != nil {
			cond, err := CompileSkipLogic(q.SkipLogic)
			rs.skipLogicFor[q.QuestionID] = compiledSkipLogic{
				condition: cond,
				action:    q.SkipLogic.Action,
				parseErr:  err,
			}
		}
	}

	return rs
}

func (rs *RuleSet) Rules() []*CompiledRule {
	return rs.rules
}

func compileRoutingRule(rule surveyTypes.RoutingRule, questionIDs map[string]bool) *CompiledRule {
	compiled := &CompiledRule{
		RuleID:       strings.TrimSpace(rule.RuleID),
		RawCondition: rule.Condition,
		RawAction:    rule.Action,
	}
	compiled.Condition, compiled.CondParseErr = ParseRoutingCondition(rule.Condition)

	// Action clauses are separated by semicolons, e.g. "SKIP MS1_Q3; SKIP MS1_Q4".
	for _, clause := range strings.Split(rule.Action, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		lower := strings.ToLower(clause)
		switch {
		case strings.HasPrefix(lower, "skip"):
			compiled.SkipTargets = append(compiled.SkipTargets, findQuestionIDs(clause, questionIDs)...)
		case strings.HasPrefix(lower, "show"):
			compiled.ShowTargets = append(compiled.ShowTargets, findQuestionIDs(clause, questionIDs)...)
		case terminateRegex.MatchString(clause):
			compiled.Terminate = true
			compiled.TerminateReason = strings.TrimSpace(terminateRegex.ReplaceAllString(clause, ""))
			if compiled.TerminateReason == "" {
				compiled.TerminateReason = "terminated by rule " + compiled.RuleID
			}
		}
	}
	return compiled
}

func findQuestionIDs(text string, questionIDs map[string]bool) []string {
	found := []string{}
	for _, token := range questionIDRegex.FindAllString(text, -1) {
		if questionIDs[token] {
			found = append(found, token)
		}
	}
	return found
}

// ParseRoutingCondition parses free-text rule conditions of the form
// "VAR = 'literal' OR 'literal2'", optionally with several comparisons
// joined by AND/OR, and cell-assignment references.
func ParseRoutingCondition(text string) (Condition, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "≠", "!="))
	if text == "" {
		return Condition{}, errors.New("empty condition")
	}

	andGroups := andSplitRegex.Split(text, -1)
	groupConds := make([]Condition, 0, len(andGroups))
	for _, group := range andGroups {
		cond, err := parseOrGroup(group)
		if err != nil {
			return Condition{}, err
		}
		groupConds = append(groupConds, cond)
	}
	if len(groupConds) == 1 {
		return groupConds[0], nil
	}
	return Condition{Op: OP_AND, Conditions: groupConds}, nil
}

// parseOrGroup handles a run of OR-joined segments. A segment is either a
// full comparison ("Q1 = 'X'"), a bare literal continuing the previous
// comparison ("'Y'"), or a cell-assignment reference.
func parseOrGroup(text string) (Condition, error) {
	segments := orSplitRegex.Split(strings.TrimSpace(text), -1)
	leaves := []Condition{}

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if cell, ok := matchCellAssignment(segment); ok {
			leaves = append(leaves, Condition{Op: OP_CELL_ASSIGNED, Values: []string{cell}})
			continue
		}

		if m := comparisonRegex.FindStringSubmatch(segment); m != nil {
			op := OP_EQUALS
			if m[2] != "=" {
				op = OP_NOT_EQUALS
			}
			leaves = append(leaves, Condition{
				Op:         op,
				QuestionID: m[1],
				Values:     []string{stripQuotes(m[3])},
			})
			continue
		}

		// Bare literal: belongs to the variable of the previous comparison.
		if len(leaves) == 0 {
			return Condition{}, fmt.Errorf("cannot parse condition segment: %q", segment)
		}
		last := &leaves[len(leaves)-1]
		if last.QuestionID == "" {
			return Condition{}, fmt.Errorf("literal %q has no preceding comparison", segment)
		}
		last.Values = append(last.Values, stripQuotes(segment))
	}

	if len(leaves) == 0 {
		return Condition{}, errors.New("no parseable comparison in condition")
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return Condition{Op: OP_OR, Conditions: leaves}, nil
}

// ParseDisplayLogic parses a per-question "SHOW ONLY IF <condition>" string.
// Supported shapes: cell-assignment membership, inequality and equality
// against a prior answer. Anything else is a parse error; callers fail open.
func ParseDisplayLogic(text string) (Condition, error) {
	cond := strings.TrimSpace(showOnlyIfRegex.ReplaceAllString(text, ""))
	cond = strings.ReplaceAll(cond, "≠", "!=")
	if cond == "" {
		return Condition{}, errors.New("empty display logic")
	}

	if cell, ok := matchCellAssignment(cond); ok {
		return Condition{Op: OP_CELL_ASSIGNED, Values: []string{cell}}, nil
	}

	if m := comparisonRegex.FindStringSubmatch(cond); m != nil {
		op := OP_EQUALS
		if m[2] != "=" {
			op = OP_NOT_EQUALS
		}
		return Condition{
			Op:         op,
			QuestionID: m[1],
			Values:     []string{stripQuotes(m[3])},
		}, nil
	}

	return Condition{}, fmt.Errorf("unrecognized display logic: %q", text)
}

// CompileSkipLogic maps a structured skip_logic block onto the condition AST.
func CompileSkipLogic(sl *surveyTypes.SkipLogic) (Condition, error) {
	switch sl.ConditionType {
	case surveyTypes.SKIP_LOGIC_CONDITION_TYPE_SIMPLE:
		if sl.SimpleCondition == nil {
			return Condition{}, errors.New("skip logic: missing simple condition")
		}
		return simpleConditionToAST(*sl.SimpleCondition)
	case surveyTypes.SKIP_LOGIC_CONDITION_TYPE_COMPLEX:
		if sl.ComplexCondition == nil || len(sl.ComplexCondition.Conditions) == 0 {
			return Condition{}, errors.New("skip logic: missing complex condition")
		}
		children := make([]Condition, 0, len(sl.ComplexCondition.Conditions))
		for _, sc := range sl.ComplexCondition.Conditions {
			child, err := simpleConditionToAST(sc)
			if err != nil {
				return Condition{}, err
			}
			children = append(children, child)
		}
		op := OP_AND
		if strings.EqualFold(sl.ComplexCondition.LogicOperator, surveyTypes.SKIP_LOGIC_LOGIC_OPERATOR_OR) {
			op = OP_OR
		}
		return Condition{Op: op, Conditions: children}, nil
	default:
		return Condition{}, fmt.Errorf("skip logic: unknown condition type: %s", sl.ConditionType)
	}
}

func simpleConditionToAST(sc surveyTypes.SimpleCondition) (Condition, error) {
	switch sc.Operator {
	case surveyTypes.SKIP_LOGIC_OPERATOR_EQUALS:
		return Condition{Op: OP_EQUALS, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	case surveyTypes.SKIP_LOGIC_OPERATOR_NOT_EQUALS:
		return Condition{Op: OP_NOT_EQUALS, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	case surveyTypes.SKIP_LOGIC_OPERATOR_CONTAINS:
		return Condition{Op: OP_CONTAINS, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	case surveyTypes.SKIP_LOGIC_OPERATOR_NOT_CONTAINS:
		return Condition{Op: OP_NOT_CONTAINS, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	case surveyTypes.SKIP_LOGIC_OPERATOR_GREATER_THAN:
		return Condition{Op: OP_GREATER_THAN, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	case surveyTypes.SKIP_LOGIC_OPERATOR_LESS_THAN:
		return Condition{Op: OP_LESS_THAN, QuestionID: sc.TargetQuestionID, Values: []string{sc.Value}}, nil
	default:
		return Condition{}, fmt.Errorf("skip logic: unknown operator: %s", sc.Operator)
	}
}

func matchCellAssignment(text string) (string, bool) {
	m := cellAssignRegex.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	for _, group := range m[1:] {
		if group != "" {
			return strings.TrimSpace(stripQuotes(group)), true
		}
	}
	return "", false
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.TrimSpace(s)
}
