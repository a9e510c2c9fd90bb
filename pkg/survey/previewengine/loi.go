package previewengine

import (
	"math"
	"strings"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// Slider position ranges for each LOI tier and their snap centers.
const (
	LOI_QUICK_MAX    = 30
	LOI_STANDARD_MAX = 70
	LOI_POSITION_MAX = 100

	LOI_SNAP_QUICK    = 15
	LOI_SNAP_STANDARD = 50
	LOI_SNAP_DEEP     = 85

	loiSnapThreshold = 10
)

const (
	LOI_TIER_QUICK    = "quick"
	LOI_TIER_STANDARD = "standard"
	LOI_TIER_DEEP     = "deep"
)

// LOICalculator manages tier based question visibility for one survey
// document. It mutates the document it was created with; preview sessions
// receive the updated document afterwards and recompute from it.
type LOICalculator struct {
	survey *surveyTypes.Survey
}

func NewLOICalculator(survey *surveyTypes.Survey) *LOICalculator {
	return &LOICalculator{survey: survey}
}

// TierForPosition maps a slider position to its LOI tier.
func TierForPosition(position int) string {
	if position <= LOI_QUICK_MAX {
		return LOI_TIER_QUICK
	}
	if position <= LOI_STANDARD_MAX {
		return LOI_TIER_STANDARD
	}
	return LOI_TIER_DEEP
}

// SnapPosition snaps a slider position to the nearest tier center when it is
// within the snap threshold, otherwise returns it unchanged.
func SnapPosition(position int) int {
	for _, center := range []int{LOI_SNAP_QUICK, LOI_SNAP_STANDARD, LOI_SNAP_DEEP} {
		if abs(position-center) <= loiSnapThreshold {
			return center
		}
	}
	return position
}

// EnsureQuestionLOIFields fills in priority, priority rank, time estimate and
// visibility defaults for every question that is missing them, so generated
// documents from older versions stay usable.
func (c *LOICalculator) EnsureQuestionLOIFields() {
	for _, q := range c.survey.AllQuestions() {
		if q.Priority == "" {
			q.Priority = inferPriority(q)
		}
		if q.PriorityRank == 0 {
			q.PriorityRank = 1
		}
		if q.EstimatedSeconds == 0 {
			q.EstimatedSeconds = estimateQuestionSeconds(q)
		}
		if q.LOIVisibility == "" {
			q.LOIVisibility = surveyTypes.LOI_VISIBILITY_VISIBLE
		}
		if q.UserOverride == "" {
			q.UserOverride = surveyTypes.USER_OVERRIDE_NONE
		}
	}
}

// UpdateLOIConfig recomputes per-question visibility for the given slider
// position, applies user overrides on top, and stores the summary on the
// document.
func (c *LOICalculator) UpdateLOIConfig(sliderPosition int) *surveyTypes.LOIConfig {
	c.EnsureQuestionLOIFields()

	questions := c.survey.AllQuestions()
	config := &surveyTypes.LOIConfig{
		SliderPosition: sliderPosition,
		SnapPoint:      TierForPosition(sliderPosition),
		TotalQuestions: len(questions),
	}

	totalSeconds := 0
	for _, q := range questions {
		switch q.UserOverride {
		case surveyTypes.USER_OVERRIDE_PINNED:
			q.LOIVisibility = surveyTypes.LOI_VISIBILITY_VISIBLE
			config.UserPinnedCount++
			config.VisibleQuestions++
			totalSeconds += q.EstimatedSeconds
		case surveyTypes.USER_OVERRIDE_EXCLUDED:
			q.LOIVisibility = surveyTypes.LOI_VISIBILITY_HIDDEN
			config.UserExcludedCount++
			config.HiddenQuestions++
		default:
			if c.shouldShowAtPosition(sliderPosition, q.Priority, q.PriorityRank) {
				q.LOIVisibility = surveyTypes.LOI_VISIBILITY_VISIBLE
				config.VisibleQuestions++
				totalSeconds += q.EstimatedSeconds
			} else {
				q.LOIVisibility = surveyTypes.LOI_VISIBILITY_HIDDEN
				config.HiddenQuestions++
			}
		}
	}

	config.EstimatedLOI = math.Round(float64(totalSeconds)/60*10) / 10
	c.survey.LOIConfig = config
	return config
}

// PinQuestion marks a question to always show regardless of tier.
func (c *LOICalculator) PinQuestion(questionID string) *surveyTypes.LOIConfig {
	if q := c.survey.FindQuestion(questionID); q != nil {
		q.UserOverride = surveyTypes.USER_OVERRIDE_PINNED
		q.LOIVisibility = surveyTypes.LOI_VISIBILITY_VISIBLE
	}
	return c.UpdateLOIConfig(c.currentSliderPosition())
}

// ExcludeQuestion marks a question to always hide regardless of tier.
func (c *LOICalculator) ExcludeQuestion(questionID string) *surveyTypes.LOIConfig {
	if q := c.survey.FindQuestion(questionID); q != nil {
		q.UserOverride = surveyTypes.USER_OVERRIDE_EXCLUDED
		q.LOIVisibility = surveyTypes.LOI_VISIBILITY_HIDDEN
	}
	return c.UpdateLOIConfig(c.currentSliderPosition())
}

// ResetQuestionOverride restores tier based visibility for a question.
func (c *LOICalculator) ResetQuestionOverride(questionID string) *surveyTypes.LOIConfig {
	if q := c.survey.FindQuestion(questionID); q != nil {
		q.UserOverride = surveyTypes.USER_OVERRIDE_NONE
	}
	return c.UpdateLOIConfig(c.currentSliderPosition())
}

func (c *LOICalculator) currentSliderPosition() int {
	if c.survey.LOIConfig != nil {
		return c.survey.LOIConfig.SliderPosition
	}
	return LOI_SNAP_STANDARD
}

// ComputeVisibleSet returns the set of question ids visible at a slider
// position, with user overrides applied on top of the tiering.
func ComputeVisibleSet(survey *surveyTypes.Survey, sliderPosition int) map[string]bool {
	calc := NewLOICalculator(survey)
	calc.EnsureQuestionLOIFields()

	visible := map[string]bool{}
	for _, q := range survey.AllQuestions() {
		switch q.UserOverride {
		case surveyTypes.USER_OVERRIDE_PINNED:
			visible[q.QuestionID] = true
		case surveyTypes.USER_OVERRIDE_EXCLUDED:
			// stays hidden
		default:
			if calc.shouldShowAtPosition(sliderPosition, q.Priority, q.PriorityRank) {
				visible[q.QuestionID] = true
			}
		}
	}
	return visible
}

// shouldShowAtPosition implements the progressive tiering: quick shows only
// required questions, the standard band progressively reveals recommended
// questions by priority rank, the deep band does the same for optional ones.
func (c *LOICalculator) shouldShowAtPosition(sliderPosition int, priority string, priorityRank int) bool {
	switch priority {
	case surveyTypes.PRIORITY_REQUIRED:
		return true
	case surveyTypes.PRIORITY_RECOMMENDED:
		if sliderPosition <= LOI_QUICK_MAX {
			return false
		}
		if sliderPosition >= LOI_STANDARD_MAX {
			return true
		}
		progress := float64(sliderPosition-LOI_QUICK_MAX) / float64(LOI_STANDARD_MAX-LOI_QUICK_MAX)
		maxRank := c.maxPriorityRank(surveyTypes.PRIORITY_RECOMMENDED)
		rankThreshold := int(math.Max(1, math.Round(progress*float64(maxRank))))
		return priorityRank <= rankThreshold
	case surveyTypes.PRIORITY_OPTIONAL:
		if sliderPosition < LOI_STANDARD_MAX {
			return false
		}
		if sliderPosition >= LOI_POSITION_MAX {
			return true
		}
		progress := float64(sliderPosition-LOI_STANDARD_MAX) / float64(LOI_POSITION_MAX-LOI_STANDARD_MAX)
		maxRank := c.maxPriorityRank(surveyTypes.PRIORITY_OPTIONAL)
		rankThreshold := int(math.Max(1, math.Round(progress*float64(maxRank))))
		return priorityRank <= rankThreshold
	default:
		// unknown priority: default to showing
		return true
	}
}

func (c *LOICalculator) maxPriorityRank(priority string) int {
	maxRank := 1
	for _, q := range c.survey.AllQuestions() {
		if q.Priority == priority && q.PriorityRank > maxRank {
			maxRank = q.PriorityRank
		}
	}
	return maxRank
}

func inferPriority(q *surveyTypes.Question) string {
	if strings.HasPrefix(q.QuestionID, "SCR_") || isScreenerID(q.QuestionID) {
		return surveyTypes.PRIORITY_REQUIRED
	}
	if strings.HasPrefix(q.QuestionID, "DEM_") {
		return surveyTypes.PRIORITY_RECOMMENDED
	}
	if len(q.Rows) > 5 {
		return surveyTypes.PRIORITY_OPTIONAL
	}
	if q.DisplayLogic != "" {
		return surveyTypes.PRIORITY_OPTIONAL
	}
	return surveyTypes.PRIORITY_RECOMMENDED
}

// isScreenerID matches the short "S<number>" screener id convention next to
// the canonical "SCR_" prefix.
func isScreenerID(id string) bool {
	if len(id) < 2 || id[0] != 'S' {
		return false
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func estimateQuestionSeconds(q *surveyTypes.Question) int {
	switch q.QuestionType {
	case surveyTypes.QUESTION_TYPE_MATRIX:
		return minInt(len(q.Rows)*3, 45)
	case surveyTypes.QUESTION_TYPE_SINGLE_CHOICE:
		switch {
		case len(q.Options) <= 5:
			return 6
		case len(q.Options) <= 10:
			return 10
		default:
			return 12
		}
	case surveyTypes.QUESTION_TYPE_MULTIPLE_CHOICE:
		return 12
	case surveyTypes.QUESTION_TYPE_RANKING:
		return minInt(len(q.Options)*5, 30)
	case surveyTypes.QUESTION_TYPE_OPEN_ENDED:
		return 30
	case surveyTypes.QUESTION_TYPE_NUMERIC_INPUT, surveyTypes.QUESTION_TYPE_SCALE:
		return 8
	default:
		return 10
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
