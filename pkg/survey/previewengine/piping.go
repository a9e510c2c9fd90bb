package previewengine

import (
	"regexp"
	"strings"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

var (
	pipeTokenRegex    = regexp.MustCompile(`\[PIPE:\s*([^\]]+?)\s*\]`)
	genericTokenRegex = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)
)

// ApplyPiping substitutes the two placeholder syntaxes in question text:
//
//   - "[PIPE: <type>]": semantic pipe types resolved through the document's
//     piping config, either via a lookup table keyed by the current cell
//     assignment or directly from a prior answer. Unknown types render as
//     "[<type>]".
//   - "{<question_id>}": the stored answer for that id, arrays joined with
//     ", ". Unanswered ids render as "[<question_id>]".
//
// Both passes are single-pass, substituted values are never re-scanned. The
// question text itself is never mutated.
func ApplyPiping(text string, answers surveyTypes.AnswerMap, cellAssignment string, cfg *surveyTypes.PipingConfig) string {
	resolved := pipeTokenRegex.ReplaceAllStringFunc(text, func(token string) string {
		pipeType := pipeTokenRegex.FindStringSubmatch(token)[1]
		return resolvePipeType(pipeType, answers, cellAssignment, cfg)
	})

	return genericTokenRegex.ReplaceAllStringFunc(resolved, func(token string) string {
		questionID := genericTokenRegex.FindStringSubmatch(token)[1]
		answer, ok := answers[questionID]
		if !ok {
			return "[" + questionID + "]"
		}
		return strings.Join(surveyTypes.AsStrings(answer), ", ")
	})
}

func resolvePipeType(pipeType string, answers surveyTypes.AnswerMap, cellAssignment string, cfg *surveyTypes.PipingConfig) string {
	fallback := "[" + pipeType + "]"
	if cfg == nil {
		return fallback
	}

	if lookup, ok := cfg.CellLookups[pipeType]; ok {
		if cellAssignment == "" {
			return fallback
		}
		if value, ok := lookup[cellAssignment]; ok {
			return value
		}
		// tolerate "Cell 2" vs "2" style mismatches between the table and
		// the assignment set by the author
		for cell, value := range lookup {
			if strings.EqualFold(normalizeCellName(cell), normalizeCellName(cellAssignment)) {
				return value
			}
		}
		return fallback
	}

	if sourceID, ok := cfg.AnswerSources[pipeType]; ok {
		answer, ok := answers[sourceID]
		if !ok {
			return fallback
		}
		return strings.Join(surveyTypes.AsStrings(answer), ", ")
	}

	return fallback
}
