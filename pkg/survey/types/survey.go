package types

// Question types
const (
	QUESTION_TYPE_SINGLE_CHOICE    = "single_choice"
	QUESTION_TYPE_MULTIPLE_CHOICE  = "multiple_choice"
	QUESTION_TYPE_SCALE            = "scale"
	QUESTION_TYPE_MATRIX           = "matrix"
	QUESTION_TYPE_RANKING          = "ranking"
	QUESTION_TYPE_OPEN_ENDED       = "open_ended"
	QUESTION_TYPE_NUMERIC_INPUT    = "numeric_input"
	QUESTION_TYPE_STIMULUS_DISPLAY = "stimulus_display"
)

// LOI visibility states
const (
	LOI_VISIBILITY_VISIBLE = "visible"
	LOI_VISIBILITY_HIDDEN  = "hidden"
)

// User override states
const (
	USER_OVERRIDE_NONE     = "none"
	USER_OVERRIDE_PINNED   = "pinned"
	USER_OVERRIDE_EXCLUDED = "excluded"
)

// Question priorities used by the LOI tiering
const (
	PRIORITY_REQUIRED    = "required"
	PRIORITY_RECOMMENDED = "recommended"
	PRIORITY_OPTIONAL    = "optional"
)

type Survey struct {
	StudyMetadata StudyMetadata `bson:"studyMetadata,omitempty" json:"STUDY_METADATA,omitempty"`
	Screener      Section       `bson:"screener,omitempty" json:"SCREENER,omitempty"`
	MainSection   MainSection   `bson:"mainSection,omitempty" json:"MAIN_SECTION,omitempty"`
	Demographics  Section       `bson:"demographics,omitempty" json:"DEMOGRAPHICS,omitempty"`
	Flow          Flow          `bson:"flow,omitempty" json:"FLOW,omitempty"`
	LOIConfig     *LOIConfig    `bson:"loiConfig,omitempty" json:"loi_config,omitempty"`
	PipingConfig  *PipingConfig `bson:"pipingConfig,omitempty" json:"piping_config,omitempty"`
	Artefacts     []Artefact    `bson:"artefacts,omitempty" json:"artefacts,omitempty"`
}

type StudyMetadata struct {
	StudyTitle          string  `bson:"studyTitle,omitempty" json:"study_title,omitempty"`
	StudyType           string  `bson:"studyType,omitempty" json:"study_type,omitempty"`
	EstimatedLOIMinutes float64 `bson:"estimatedLOIMinutes,omitempty" json:"estimated_loi_minutes,omitempty"`
}

type Section struct {
	Questions []Question `bson:"questions,omitempty" json:"questions,omitempty"`
}

type MainSection struct {
	SubSections []SubSection `bson:"subSections,omitempty" json:"sub_sections,omitempty"`
}

type SubSection struct {
	SubSectionID    string     `bson:"subSectionID,omitempty" json:"subsection_id,omitempty"`
	SubSectionTitle string     `bson:"subSectionTitle,omitempty" json:"subsection_title,omitempty"`
	Purpose         string     `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Questions       []Question `bson:"questions,omitempty" json:"questions,omitempty"`
}

type Question struct {
	QuestionID       string     `bson:"questionID" json:"question_id"`
	QuestionText     string     `bson:"questionText" json:"question_text"`
	QuestionType     string     `bson:"questionType" json:"question_type"`
	Options          []string   `bson:"options,omitempty" json:"options,omitempty"`
	Rows             []string   `bson:"rows,omitempty" json:"rows,omitempty"`
	Columns          []string   `bson:"columns,omitempty" json:"columns,omitempty"`
	DisplaysArtefact string     `bson:"displaysArtefact,omitempty" json:"displays_artefact,omitempty"`
	DisplayLogic     string     `bson:"displayLogic,omitempty" json:"display_logic,omitempty"`
	Piping           string     `bson:"piping,omitempty" json:"piping,omitempty"`
	SkipLogic        *SkipLogic `bson:"skipLogic,omitempty" json:"skip_logic,omitempty"`
	Priority         string     `bson:"priority,omitempty" json:"priority,omitempty"`
	PriorityRank     int        `bson:"priorityRank,omitempty" json:"priority_rank,omitempty"`
	EstimatedSeconds int        `bson:"estimatedSeconds,omitempty" json:"estimated_seconds,omitempty"`
	LOIVisibility    string     `bson:"loiVisibility,omitempty" json:"loi_visibility,omitempty"`
	UserOverride     string     `bson:"userOverride,omitempty" json:"user_override,omitempty"`
	Required         bool       `bson:"required,omitempty" json:"required,omitempty"`
	Notes            string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

func (q Question) IsMatrix() bool {
	return q.QuestionType == QUESTION_TYPE_MATRIX
}

// Skip logic condition types
const (
	SKIP_LOGIC_CONDITION_TYPE_SIMPLE  = "simple"
	SKIP_LOGIC_CONDITION_TYPE_COMPLEX = "complex"

	SKIP_LOGIC_ACTION_SKIP = "skip"
	SKIP_LOGIC_ACTION_SHOW = "show"

	SKIP_LOGIC_OPERATOR_EQUALS       = "equals"
	SKIP_LOGIC_OPERATOR_NOT_EQUALS   = "not_equals"
	SKIP_LOGIC_OPERATOR_CONTAINS     = "contains"
	SKIP_LOGIC_OPERATOR_NOT_CONTAINS = "not_contains"
	SKIP_LOGIC_OPERATOR_GREATER_THAN = "greater_than"
	SKIP_LOGIC_OPERATOR_LESS_THAN    = "less_than"

	SKIP_LOGIC_LOGIC_OPERATOR_AND = "AND"
	SKIP_LOGIC_LOGIC_OPERATOR_OR  = "OR"
)

type SkipLogic struct {
	ConditionType    string            `bson:"conditionType,omitempty" json:"condition_type,omitempty"`
	SimpleCondition  *SimpleCondition  `bson:"simpleCondition,omitempty" json:"simple_condition,omitempty"`
	ComplexCondition *ComplexCondition `bson:"complexCondition,omitempty" json:"complex_condition,omitempty"`
	Action           string            `bson:"action,omitempty" json:"action,omitempty"`
}

type SimpleCondition struct {
	TargetQuestionID string `bson:"targetQuestionID" json:"target_question_id"`
	Operator         string `bson:"operator" json:"operator"`
	Value            string `bson:"value" json:"value"`
}

type ComplexCondition struct {
	LogicOperator string            `bson:"logicOperator" json:"logic_operator"`
	Conditions    []SimpleCondition `bson:"conditions" json:"conditions"`
}

type Flow struct {
	RoutingRules []RoutingRule `bson:"routingRules,omitempty" json:"routing_rules,omitempty"`
}

type RoutingRule struct {
	RuleID    string `bson:"ruleID" json:"rule_id"`
	Condition string `bson:"condition" json:"condition"`
	Action    string `bson:"action" json:"action"`
}

type LOIConfig struct {
	SliderPosition    int     `bson:"sliderPosition" json:"slider_position"`
	SnapPoint         string  `bson:"snapPoint" json:"snap_point"`
	EstimatedLOI      float64 `bson:"estimatedLOIMinutes" json:"estimated_loi_minutes"`
	TotalQuestions    int     `bson:"totalQuestions" json:"total_questions"`
	VisibleQuestions  int     `bson:"visibleQuestions" json:"visible_questions"`
	HiddenQuestions   int     `bson:"hiddenQuestions" json:"hidden_questions"`
	UserPinnedCount   int     `bson:"userPinnedCount" json:"user_pinned_count"`
	UserExcludedCount int     `bson:"userExcludedCount" json:"user_excluded_count"`
}

// PipingConfig defines the closed vocabulary of [PIPE: ...] token types.
// CellLookups maps a pipe type to a table keyed by cell assignment,
// AnswerSources maps a pipe type to the question id its value is read from.
type PipingConfig struct {
	CellLookups   map[string]map[string]string `bson:"cellLookups,omitempty" json:"cell_lookups,omitempty"`
	AnswerSources map[string]string            `bson:"answerSources,omitempty" json:"answer_sources,omitempty"`
}

type Artefact struct {
	ArtefactID  string `bson:"artefactID" json:"artefact_id"`
	Type        string `bson:"type,omitempty" json:"type,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// AllQuestions returns pointers to every question in canonical document order:
// screener, main section subsections, demographics. This order defines the
// traversal order used by the preview navigation.
func (s *Survey) AllQuestions() []*Question {
	questions := []*Question{}
	for i := range s.Screener.Questions {
		questions = append(questions, &s.Screener.Questions[i])
	}
	for i := range s.MainSection.SubSections {
		ss := &s.MainSection.SubSections[i]
		for j := range ss.Questions {
			questions = append(questions, &ss.Questions[j])
		}
	}
	for i := range s.Demographics.Questions {
		questions = append(questions, &s.Demographics.Questions[i])
	}
	return questions
}

func (s *Survey) QuestionIDs() []string {
	questions := s.AllQuestions()
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.QuestionID)
	}
	return ids
}

func (s *Survey) FindQuestion(questionID string) *Question {
	for _, q := range s.AllQuestions() {
		if q.QuestionID == questionID {
			return q
		}
	}
	return nil
}

func (s *Survey) FindArtefact(artefactID string) *Artefact {
	for i := range s.Artefacts {
		if s.Artefacts[i].ArtefactID == artefactID {
			return &s.Artefacts[i]
		}
	}
	return nil
}
