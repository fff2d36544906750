package model

// QuestionBase holds the fields shared by all four question variants.
type QuestionBase struct {
	BaseModel
	SectionID    uint   `gorm:"index;not null" json:"sectionId"`
	Number       uint   `gorm:"default:1" json:"number"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	FramingText  string `gorm:"type:text" json:"framingText"`
	Notes        string `gorm:"type:text" json:"notes"`
}

// QualitativeQuestion requires a free-text answer.
//
// swagger:model QualitativeQuestion
type QualitativeQuestion struct {
	QuestionBase
	// QuestionType is either "short-answer" or "essay".
	QuestionType string `gorm:"size:20;not null" json:"questionType"`
	// InfluencesGroupMembership marks answers that feed the group membership
	// classifier.
	InfluencesGroupMembership bool `gorm:"default:false" json:"influencesGroupMembership"`
	// SplitAnswer marks questions whose answers are comma-separated lists
	// that should be stored as separate answer rows.
	SplitAnswer bool `gorm:"default:false" json:"splitAnswer"`
}

func (QualitativeQuestion) TableName() string {
	return "qualitative_questions"
}

func (q *QualitativeQuestion) Type() string {
	return q.QuestionType
}

// MultipleChoiceQuestion represents an MCQ (one option to select) or MRQ
// (several options to select).
//
// swagger:model MultipleChoiceQuestion
type MultipleChoiceQuestion struct {
	QuestionBase
	MaxOptionsToSelect uint `gorm:"default:1" json:"maxOptionsToSelect"`
	RandomizeOptions   bool `gorm:"default:false" json:"randomizeOptions"`
}

func (MultipleChoiceQuestion) TableName() string {
	return "multiple_choice_questions"
}

func (q *MultipleChoiceQuestion) Type() string {
	if q.MaxOptionsToSelect == 1 {
		return QuestionTypeMCQ
	}
	return QuestionTypeMRQ
}

func (q *MultipleChoiceQuestion) Kind() string {
	return QuestionKindMultipleChoice
}

// RankingQuestion asks learners to rank a subset of its answer options on a
// scale from 1 to NumberOfOptionsToRank.
//
// swagger:model RankingQuestion
type RankingQuestion struct {
	QuestionBase
	NumberOfOptionsToRank uint `gorm:"default:3" json:"numberOfOptionsToRank"`
	RandomizeOptions      bool `gorm:"default:false" json:"randomizeOptions"`
}

func (RankingQuestion) TableName() string {
	return "ranking_questions"
}

func (q *RankingQuestion) Type() string {
	return QuestionTypeRanking
}

func (q *RankingQuestion) Kind() string {
	return QuestionKindRanking
}

// Likert scale label sets, keyed by answer option range. Stored answer values
// are 1-based indexes into these slices.
var LikertAnswerOptionRanges = map[string][]string{
	"value": {
		"Not Very Valuable", "Slightly Valuable", "Valuable", "Very Valuable", "Extremely Valuable",
	},
	"agreement": {
		"Strongly Disagree", "Disagree", "Undecided", "Agree", "Strongly Agree",
	},
}

// LikertScaleQuestion represents a simplified Likert scale question.
//
// swagger:model LikertScaleQuestion
type LikertScaleQuestion struct {
	QuestionBase
	// AnswerOptionRange selects the label set shown for each answer option,
	// either "agreement" or "value".
	AnswerOptionRange string `gorm:"size:20;default:'agreement'" json:"answerOptionRange"`
	RandomizeOptions  bool   `gorm:"default:false" json:"randomizeOptions"`
}

func (LikertScaleQuestion) TableName() string {
	return "likert_scale_questions"
}

func (q *LikertScaleQuestion) Type() string {
	return QuestionTypeLikert
}

func (q *LikertScaleQuestion) Kind() string {
	return QuestionKindLikert
}

// ValueLabel returns the label corresponding to a stored 1-based answer
// value, or "---" when the value is out of range.
func (q *LikertScaleQuestion) ValueLabel(value int) string {
	labels := LikertAnswerOptionRanges[q.AnswerOptionRange]
	if value < 1 || value > len(labels) {
		return "---"
	}
	return labels[value-1]
}
