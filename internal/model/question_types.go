package model

import "fmt"

// Question type tags shared with the frontend and the adaptive engine.
const (
	QuestionTypeEssay       = "essay"
	QuestionTypeShortAnswer = "short-answer"
	QuestionTypeMCQ         = "mcq"
	QuestionTypeMRQ         = "mrq"
	QuestionTypeRanking     = "ranking"
	QuestionTypeLikert      = "likert"
)

// Table kinds used by AnswerOption to reference its parent question.
const (
	QuestionKindMultipleChoice = "multiple_choice"
	QuestionKindRanking        = "ranking"
	QuestionKindLikert         = "likert"
)

// UnknownQuestionTypeError is returned when a caller supplies a question type
// tag outside the closed set of known types.
type UnknownQuestionTypeError struct {
	QuestionType string
}

func (e *UnknownQuestionTypeError) Error() string {
	return fmt.Sprintf(
		"unknown question type: %s. Known types are: %v",
		e.QuestionType, AllQuestionTypes(),
	)
}

// MultipleChoiceTypes returns the question types answered by selecting options.
func MultipleChoiceTypes() []string {
	return []string{QuestionTypeMCQ, QuestionTypeMRQ}
}

// QuantitativeTypes returns the question types with pre-defined answer options.
func QuantitativeTypes() []string {
	return append(MultipleChoiceTypes(), QuestionTypeRanking, QuestionTypeLikert)
}

// QualitativeTypes returns the question types answered with free text.
func QualitativeTypes() []string {
	return []string{QuestionTypeEssay, QuestionTypeShortAnswer}
}

// AllQuestionTypes returns every valid question type tag.
func AllQuestionTypes() []string {
	return append(QualitativeTypes(), QuantitativeTypes()...)
}

func IsMultipleChoiceType(questionType string) bool {
	return questionType == QuestionTypeMCQ || questionType == QuestionTypeMRQ
}

func IsQuantitativeType(questionType string) bool {
	return IsMultipleChoiceType(questionType) ||
		questionType == QuestionTypeRanking ||
		questionType == QuestionTypeLikert
}

func IsQualitativeType(questionType string) bool {
	return questionType == QuestionTypeEssay || questionType == QuestionTypeShortAnswer
}
