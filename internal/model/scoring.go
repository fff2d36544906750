package model

import "errors"

var (
	// ErrInvalidAnswerValue indicates a multiple choice score was requested
	// for a value outside {0, 1}. This is a programming error, not learner input.
	ErrInvalidAnswerValue = errors.New("answer value for multiple choice question must be 0 or 1")

	// ErrLikertScoringNotImplemented is returned whenever a Likert scale score
	// is requested. Likert answers are stored but never scored.
	ErrLikertScoringNotImplemented = errors.New("scoring is not implemented for likert scale questions")
)

// AnswerValue normalizes the raw value submitted for a single answer option
// into the value to store and compute a score from.
//
// Multiple choice options are always either selected (1) or unselected (0),
// so the raw value passes through unchanged.
//
// Ranking options may arrive without a value when the learner left the option
// unranked. Unranked still carries meaning (the option matters less than every
// ranked option), so it maps to `unrankedValue`, the global sentinel.
//
// Likert options may also arrive without a value, but there an absent value
// means the learner made no statement at all, so nil is returned and the
// caller skips the answer entirely. Mixing these two cases up either corrupts
// ranking scores or silently drops valid Likert answers.
func AnswerValue(questionType string, raw *int, unrankedValue int) *int {
	if questionType == QuestionTypeRanking && raw == nil {
		v := unrankedValue
		return &v
	}
	return raw
}

// ScoreForAnswer maps a normalized answer value onto the score sent to the
// adaptive engine, dispatching on the question type tag. `unrankedValue` is
// the global unranked sentinel (see QuestionRepository.UnrankedOptionValue).
func ScoreForAnswer(questionType string, answerValue, unrankedValue int) (float64, error) {
	switch {
	case IsMultipleChoiceType(questionType):
		return multipleChoiceScore(answerValue)
	case questionType == QuestionTypeRanking:
		return rankingScore(answerValue, unrankedValue), nil
	case questionType == QuestionTypeLikert:
		return 0, ErrLikertScoringNotImplemented
	default:
		return 0, &UnknownQuestionTypeError{QuestionType: questionType}
	}
}

// multipleChoiceScore inverts the answer value: the engine reads a score as a
// mastery level and recommends content for low-mastery knowledge components.
// A learner selecting an option signals interest, so the stored score must be
// low to make the engine recommend matching content, and vice versa.
func multipleChoiceScore(answerValue int) (float64, error) {
	if answerValue != 0 && answerValue != 1 {
		return 0, ErrInvalidAnswerValue
	}
	return float64(answerValue ^ 1), nil
}

// rankingScore rescales a rank linearly onto [0, 1]:
//
//	score = (v - m) / (M - m)
//
// with m = 1 (top rank) and M = the unranked sentinel. Rank 1 scores 0.0,
// unranked scores 1.0. Unlike multiple choice, ranks are not inverted:
// a lower rank already means higher priority.
func rankingScore(answerValue, unrankedValue int) float64 {
	theoreticalMin := 1.0
	theoreticalMax := float64(unrankedValue)
	return (float64(answerValue) - theoreticalMin) / (theoreticalMax - theoreticalMin)
}
