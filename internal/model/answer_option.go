package model

import (
	"math/rand"
	"sort"
)

// AnswerOption is one pre-defined answer option of a quantitative question.
// The parent question lives in one of three tables, so the reference is a
// (QuestionKind, QuestionID) pair resolved through the question repository.
//
// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel
	QuestionKind string `gorm:"size:20;index:idx_answer_options_question,priority:1;not null" json:"questionKind"`
	QuestionID   uint   `gorm:"index:idx_answer_options_question,priority:2;not null" json:"questionId"`
	// KnowledgeComponentID links this option to at most one knowledge
	// component; the one-to-one constraint backs the score upsert target.
	KnowledgeComponentID *uint               `gorm:"uniqueIndex" json:"knowledgeComponentId,omitempty"`
	KnowledgeComponent   *KnowledgeComponent `gorm:"foreignKey:KnowledgeComponentID" json:"knowledgeComponent,omitempty"`
	OptionText           string              `gorm:"type:text;not null" json:"optionText"`
	// AllowsCustomInput renders the option with a free-text field
	// ("Other: ______"). Custom input is only stored when this is set.
	AllowsCustomInput bool `gorm:"default:false" json:"allowsCustomInput"`
	// InfluencesRecommendations gates whether answers to this option produce
	// a score for the adaptive engine.
	InfluencesRecommendations bool `gorm:"default:false" json:"influencesRecommendations"`
	// FallbackOption marks a catch-all option, always displayed last.
	FallbackOption bool `gorm:"default:false" json:"fallbackOption"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

// SortAnswerOptions orders options for display: regular options first, in
// alphabetical order or shuffled when `randomize` is set, then fallback
// options in reverse-alphabetical order. The ordering is an explicit
// in-memory comparator rather than a storage concern.
func SortAnswerOptions(options []AnswerOption, randomize bool, rng *rand.Rand) []AnswerOption {
	regular := make([]AnswerOption, 0, len(options))
	fallback := make([]AnswerOption, 0)
	for _, option := range options {
		if option.FallbackOption {
			fallback = append(fallback, option)
		} else {
			regular = append(regular, option)
		}
	}

	if randomize && rng != nil {
		rng.Shuffle(len(regular), func(i, j int) {
			regular[i], regular[j] = regular[j], regular[i]
		})
	} else {
		sort.Slice(regular, func(i, j int) bool {
			return regular[i].OptionText < regular[j].OptionText
		})
	}
	sort.Slice(fallback, func(i, j int) bool {
		return fallback[i].OptionText > fallback[j].OptionText
	})

	return append(regular, fallback...)
}
