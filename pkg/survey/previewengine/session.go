package previewengine

import (
	"errors"
	"fmt"
	"sync"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

// Session modes: in test mode (the authoring preview default) a matched
// terminate rule is surfaced as a warning and the author may continue, in
// production mode it ends the session.
const (
	SESSION_MODE_TEST       = "test"
	SESSION_MODE_PRODUCTION = "production"
)

// Derived per-question statuses, recomputed after every answer.
const (
	QUESTION_STATUS_PENDING  = "pending"
	QUESTION_STATUS_CURRENT  = "current"
	QUESTION_STATUS_ANSWERED = "answered"
	QUESTION_STATUS_SKIPPED  = "skipped"
)

type QuestionState struct {
	QuestionID string `json:"questionId"`
	Status     string `json:"status"`
	SkipReason string `json:"skipReason,omitempty"`
}

// PreviewSession walks a survey document as a simulated respondent. It owns
// the answer map and cell assignment exclusively; the evaluators only read
// them. All mutation goes through the named transitions (Answer, Next, Back,
// SetCellAssignment, ReplaceDocument), each of which recomputes the visible
// sequence and relocates the pointer before returning.
type PreviewSession struct {
	mu sync.Mutex

	mode   string
	survey *surveyTypes.Survey
	rules  *RuleSet

	answers        surveyTypes.AnswerMap
	cellAssignment string

	visible    []*surveyTypes.Question
	currentIdx int
	complete   bool
	terminated *TerminationInfo

	// reasons for questions the navigation scanned over, keyed by question id
	skipReasons map[string]string

	// independent sub-pointer per matrix question
	matrixRow map[string]int
}

var ErrEmptyDocument = errors.New("survey document contains no questions")

func NewPreviewSession(survey *surveyTypes.Survey, mode string) (*PreviewSession, error) {
	if survey == nil || len(survey.AllQuestions()) == 0 {
		return nil, ErrEmptyDocument
	}
	if mode == "" {
		mode = SESSION_MODE_TEST
	}

	s := &PreviewSession{
		mode:        mode,
		survey:      survey,
		rules:       CompileRules(survey),
		answers:     surveyTypes.AnswerMap{},
		skipReasons: map[string]string{},
		matrixRow:   map[string]int{},
	}
	s.rebuildVisible()
	s.settleOnShowable()
	return s, nil
}

// Answer records an answer for a simple (non matrix) question, recomputes
// visibility and checks terminate rules. The returned TerminationInfo is nil
// when no rule matched; in test mode it is advisory.
func (s *PreviewSession) Answer(questionID string, value interface{}) (*TerminationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.survey.FindQuestion(questionID)
	if q == nil {
		return nil, fmt.Errorf("unknown question: %s", questionID)
	}
	if q.IsMatrix() {
		return nil, fmt.Errorf("question %s is a matrix, use AnswerMatrixRow", questionID)
	}

	s.answers[questionID] = value
	s.recompute()

	term := s.rules.CheckTermination(questionID, value)
	if term != nil && s.mode == SESSION_MODE_PRODUCTION {
		s.terminated = term
		s.complete = true
	}
	return term, nil
}

// AnswerMatrixRow records the answer of one matrix row, keyed as
// "<questionID>_<rowIndex>" in the answer map.
func (s *PreviewSession) AnswerMatrixRow(questionID string, rowIndex int, value interface{}) (*TerminationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.survey.FindQuestion(questionID)
	if q == nil {
		return nil, fmt.Errorf("unknown question: %s", questionID)
	}
	if !q.IsMatrix() {
		return nil, fmt.Errorf("question %s is not a matrix", questionID)
	}
	if rowIndex < 0 || rowIndex >= len(q.Rows) {
		return nil, fmt.Errorf("row index %d out of range for question %s", rowIndex, questionID)
	}

	key := surveyTypes.MatrixRowKey(questionID, rowIndex)
	s.answers[key] = value
	s.recompute()

	term := s.rules.CheckTermination(key, value)
	if term != nil && s.mode == SESSION_MODE_PRODUCTION {
		s.terminated = term
		s.complete = true
	}
	return term, nil
}

// Next advances to the next question that should be shown. Questions the
// scan passes over are marked skipped with their reason. When the scan
// exhausts the sequence the session is complete.
func (s *PreviewSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete {
		return nil
	}
	if !s.canProceedLocked() {
		return errors.New("current matrix question is not fully answered")
	}
	s.scanForward(s.currentIdx + 1)
	return nil
}

// Back moves to the closest prior question that should be shown. At the
// start of the sequence it is a no-op.
func (s *PreviewSession) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.visible) == 0 {
		return
	}
	if s.complete && s.terminated == nil {
		// stepping back from the completion screen
		s.complete = false
		s.currentIdx = len(s.visible)
	}

	ctx := s.evalContext()
	for i := s.currentIdx - 1; i >= 0; i-- {
		decision := s.rules.ShouldShow(s.visible[i], ctx)
		if decision.Show {
			delete(s.skipReasons, s.visible[i].QuestionID)
			s.currentIdx = i
			return
		}
		s.skipReasons[s.visible[i].QuestionID] = skipReasonOrDefault(decision)
	}
}

// CanProceed reports whether top-level Next is allowed: matrix questions
// block until every row has a recorded answer.
func (s *PreviewSession) CanProceed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canProceedLocked()
}

// SetCellAssignment sets the test cell the simulated respondent belongs to
// and recomputes visibility, as cell membership can drive conditions.
func (s *PreviewSession) SetCellAssignment(cell string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellAssignment = cell
	s.recompute()
}

// ReplaceDocument swaps in an updated survey document (after a pin/exclude
// or LOI change was persisted) and fully recomputes rules, visibility and
// the pointer from it.
func (s *PreviewSession) ReplaceDocument(survey *surveyTypes.Survey) error {
	if survey == nil || len(survey.AllQuestions()) == 0 {
		return ErrEmptyDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.survey = survey
	s.rules = CompileRules(survey)
	s.recompute()
	return nil
}

// CurrentQuestion returns the question at the pointer, or nil when the
// session is complete.
func (s *PreviewSession) CurrentQuestion() *surveyTypes.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestionLocked()
}

// CurrentQuestionText returns the current question's text with piped values
// substituted.
func (s *PreviewSession) CurrentQuestionText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.currentQuestionLocked()
	if q == nil {
		return ""
	}
	return ApplyPiping(q.QuestionText, s.answers, s.cellAssignment, s.survey.PipingConfig)
}

// CurrentArtefact resolves the stimulus artefact the current question
// displays, or nil when there is none or the id has no entry.
func (s *PreviewSession) CurrentArtefact() *surveyTypes.Artefact {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.currentQuestionLocked()
	if q == nil || q.DisplaysArtefact == "" {
		return nil
	}
	return s.survey.FindArtefact(q.DisplaysArtefact)
}

// MatrixRowIndex returns the sub-pointer of a matrix question.
func (s *PreviewSession) MatrixRowIndex(questionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matrixRow[questionID]
}

// NextMatrixRow advances the sub-pointer of a matrix question, clamped to
// its last row.
func (s *PreviewSession) NextMatrixRow(questionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.survey.FindQuestion(questionID)
	if q == nil || !q.IsMatrix() {
		return 0
	}
	if s.matrixRow[questionID] < len(q.Rows)-1 {
		s.matrixRow[questionID]++
	}
	return s.matrixRow[questionID]
}

// PrevMatrixRow moves the sub-pointer of a matrix question back, clamped to
// the first row.
func (s *PreviewSession) PrevMatrixRow(questionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matrixRow[questionID] > 0 {
		s.matrixRow[questionID]--
	}
	return s.matrixRow[questionID]
}

// Statuses derives the per-question states of the visible sequence.
func (s *PreviewSession) Statuses() []QuestionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]QuestionState, 0, len(s.visible))
	for i, q := range s.visible {
		state := QuestionState{QuestionID: q.QuestionID, Status: QUESTION_STATUS_PENDING}
		if reason, ok := s.skipReasons[q.QuestionID]; ok {
			state.Status = QUESTION_STATUS_SKIPPED
			state.SkipReason = reason
		} else if !s.complete && i == s.currentIdx {
			state.Status = QUESTION_STATUS_CURRENT
		} else if s.questionAnswered(q) {
			state.Status = QUESTION_STATUS_ANSWERED
		}
		states = append(states, state)
	}
	return states
}

// Progress summarizes where the session stands.
type Progress struct {
	CurrentIndex  int              `json:"currentIndex"`
	VisibleCount  int              `json:"visibleCount"`
	AnsweredCount int              `json:"answeredCount"`
	Complete      bool             `json:"complete"`
	Terminated    *TerminationInfo `json:"terminated,omitempty"`
}

func (s *PreviewSession) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := 0
	for _, q := range s.visible {
		if s.questionAnswered(q) {
			answered++
		}
	}
	return Progress{
		CurrentIndex:  s.currentIdx,
		VisibleCount:  len(s.visible),
		AnsweredCount: answered,
		Complete:      s.complete,
		Terminated:    s.terminated,
	}
}

func (s *PreviewSession) Answers() surveyTypes.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

func (s *PreviewSession) Mode() string {
	return s.mode
}

// --- internals, caller must hold s.mu ---

func (s *PreviewSession) evalContext() EvalContext {
	return EvalContext{Answers: s.answers, CellAssignment: s.cellAssignment}
}

func (s *PreviewSession) currentQuestionLocked() *surveyTypes.Question {
	if s.complete || s.currentIdx < 0 || s.currentIdx >= len(s.visible) {
		return nil
	}
	return s.visible[s.currentIdx]
}

// rebuildVisible recomputes the LOI-visible ordered sequence from the
// document: pinned questions are always in, excluded questions always out,
// the rest follow their stored tier visibility.
func (s *PreviewSession) rebuildVisible() {
	s.visible = s.visible[:0]
	for _, q := range s.survey.AllQuestions() {
		switch q.UserOverride {
		case surveyTypes.USER_OVERRIDE_EXCLUDED:
			continue
		case surveyTypes.USER_OVERRIDE_PINNED:
			s.visible = append(s.visible, q)
		default:
			if q.LOIVisibility != surveyTypes.LOI_VISIBILITY_HIDDEN {
				s.visible = append(s.visible, q)
			}
		}
	}
}

// settleOnShowable places the pointer on the first question that should be
// shown, marking everything scanned over as skipped.
func (s *PreviewSession) settleOnShowable() {
	s.scanForward(0)
}

// scanForward finds the next showable question at or after the given index.
// Exhausting the sequence completes the session.
func (s *PreviewSession) scanForward(from int) {
	ctx := s.evalContext()
	for i := from; i < len(s.visible); i++ {
		decision := s.rules.ShouldShow(s.visible[i], ctx)
		if decision.Show {
			delete(s.skipReasons, s.visible[i].QuestionID)
			s.currentIdx = i
			return
		}
		s.skipReasons[s.visible[i].QuestionID] = skipReasonOrDefault(decision)
	}
	s.currentIdx = len(s.visible)
	s.complete = true
}

// recompute re-derives the visible sequence and relocates the pointer after
// an answer or document change. The pointer follows the same logical
// question when it is still present, otherwise it clamps to the nearest
// valid index.
func (s *PreviewSession) recompute() {
	var currentID string
	if q := s.currentQuestionLocked(); q != nil {
		currentID = q.QuestionID
	}

	s.rebuildVisible()

	// drop stale skip marks for questions that show again under the new
	// answer map
	ctx := s.evalContext()
	for qid := range s.skipReasons {
		q := s.survey.FindQuestion(qid)
		if q == nil {
			delete(s.skipReasons, qid)
			continue
		}
		if s.rules.ShouldShow(q, ctx).Show {
			delete(s.skipReasons, qid)
		}
	}

	if len(s.visible) == 0 {
		s.currentIdx = 0
		s.complete = true
		return
	}

	if s.complete {
		s.currentIdx = len(s.visible)
		return
	}

	if currentID != "" {
		for i, q := range s.visible {
			if q.QuestionID == currentID {
				s.currentIdx = i
				if !s.rules.ShouldShow(q, ctx).Show {
					// the answer change hid the question under the pointer
					s.scanForward(i)
				}
				return
			}
		}
	}

	// stale pointer: clamp, then settle on something showable
	if s.currentIdx >= len(s.visible) {
		s.currentIdx = len(s.visible) - 1
	}
	if s.currentIdx < 0 {
		s.currentIdx = 0
	}
	if q := s.currentQuestionLocked(); q != nil {
		if !s.rules.ShouldShow(q, ctx).Show {
			s.scanForward(s.currentIdx)
		}
	}
}

func (s *PreviewSession) canProceedLocked() bool {
	q := s.currentQuestionLocked()
	if q == nil {
		return false
	}
	if q.IsMatrix() {
		return s.matrixComplete(q)
	}
	return true
}

func (s *PreviewSession) matrixComplete(q *surveyTypes.Question) bool {
	for row := range q.Rows {
		if !s.answers.Has(surveyTypes.MatrixRowKey(q.QuestionID, row)) {
			return false
		}
	}
	return true
}

func (s *PreviewSession) questionAnswered(q *surveyTypes.Question) bool {
	if q.IsMatrix() {
		return len(q.Rows) > 0 && s.matrixComplete(q)
	}
	return s.answers.Has(q.QuestionID)
}

func skipReasonOrDefault(decision ShowDecision) string {
	if decision.Reason != "" {
		return decision.Reason
	}
	return "condition evaluated to hidden"
}
