package service

import (
	"context"
	"testing"

	"lpd_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) recordQualitativeAnswer(t *testing.T, questionID uint, text string) {
	t.Helper()
	require.NoError(t, env.answers.CreateQualitativeAnswer(&model.QualitativeAnswer{
		LearnerID:  env.learner.ID,
		QuestionID: questionID,
		Text:       text,
	}))
}

func (env *testEnv) recordQuantitativeAnswer(t *testing.T, optionID uint, value int) {
	t.Helper()
	require.NoError(t, env.answers.UpsertQuantitativeAnswer(&model.QuantitativeAnswer{
		LearnerID:      env.learner.ID,
		AnswerOptionID: optionID,
		Value:          value,
	}))
}

func TestHasQualitativeAnswer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()
	question := env.addQualitativeQuestion(t, 1, false, false)

	has, err := svc.HasQualitativeAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)

	env.recordQualitativeAnswer(t, question.ID, "an answer")

	has, err = svc.HasQualitativeAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasMultipleChoiceAnswer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()
	question := env.addMultipleChoiceQuestion(t, 1, 2)
	optionA := env.addAnswerOption(t, question.Kind(), question.ID, "A", nil, false, false)
	optionB := env.addAnswerOption(t, question.Kind(), question.ID, "B", nil, false, false)

	has, err := svc.HasMultipleChoiceAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)

	// A stored zero means the option was shown but not selected.
	env.recordQuantitativeAnswer(t, optionA.ID, 0)
	has, err = svc.HasMultipleChoiceAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)

	// One selected option is enough.
	env.recordQuantitativeAnswer(t, optionB.ID, 1)
	has, err = svc.HasMultipleChoiceAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasRankingAnswer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()
	question := env.addRankingQuestion(t, 1, 2)
	optionA := env.addAnswerOption(t, question.Kind(), question.ID, "A", nil, false, false)
	optionB := env.addAnswerOption(t, question.Kind(), question.ID, "B", nil, false, false)
	optionC := env.addAnswerOption(t, question.Kind(), question.ID, "C", nil, false, false)

	const unranked = 3

	has, err := svc.HasRankingAnswer(env.learner.ID, question, unranked)
	require.NoError(t, err)
	assert.False(t, has)

	// One of two required rankings placed: still incomplete.
	env.recordQuantitativeAnswer(t, optionA.ID, 1)
	env.recordQuantitativeAnswer(t, optionB.ID, unranked)
	has, err = svc.HasRankingAnswer(env.learner.ID, question, unranked)
	require.NoError(t, err)
	assert.False(t, has)

	env.recordQuantitativeAnswer(t, optionC.ID, 2)
	has, err = svc.HasRankingAnswer(env.learner.ID, question, unranked)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasLikertAnswer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()
	question := env.addLikertQuestion(t, 1)
	optionA := env.addAnswerOption(t, question.Kind(), question.ID, "A", nil, false, false)
	optionB := env.addAnswerOption(t, question.Kind(), question.ID, "B", nil, false, false)
	// Fallback options do not count towards completion.
	env.addAnswerOption(t, question.Kind(), question.ID, "None of these", nil, false, true)

	has, err := svc.HasLikertAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)

	// Every regular option must be rated.
	env.recordQuantitativeAnswer(t, optionA.ID, 4)
	has, err = svc.HasLikertAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)

	env.recordQuantitativeAnswer(t, optionB.ID, 2)
	has, err = svc.HasLikertAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasLikertAnswerNoRegularOptions(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()
	question := env.addLikertQuestion(t, 1)
	env.addAnswerOption(t, question.Kind(), question.ID, "Only fallback", nil, false, true)

	has, err := svc.HasLikertAnswer(env.learner.ID, question)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSectionPercentComplete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()

	// Empty sections report zero rather than dividing by zero.
	percent, err := svc.SectionPercentComplete(env.learner.ID, env.section.ID)
	require.NoError(t, err)
	assert.Zero(t, percent)

	answered := env.addQualitativeQuestion(t, 1, false, false)
	env.addQualitativeQuestion(t, 2, false, false)
	mc := env.addMultipleChoiceQuestion(t, 3, 1)
	option := env.addAnswerOption(t, mc.Kind(), mc.ID, "A", nil, false, false)
	env.addLikertQuestion(t, 4)

	env.recordQualitativeAnswer(t, answered.ID, "hello")
	env.recordQuantitativeAnswer(t, option.ID, 1)

	// 2 of 4 questions answered. The likert question has no regular
	// options and can never be complete.
	percent, err = svc.SectionPercentComplete(env.learner.ID, env.section.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, percent, 1e-9)
}

func TestDashboardPercentComplete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()

	// Sections contribute equally regardless of question count.
	second := &model.Section{DashboardID: env.dashboard.ID, Position: 1, Title: "Goals"}
	require.NoError(t, env.dashboards.CreateSection(second))
	third := &model.Section{DashboardID: env.dashboard.ID, Position: 2, Title: "Background"}
	require.NoError(t, env.dashboards.CreateSection(third))

	answered := env.addQualitativeQuestion(t, 1, false, false)
	env.recordQualitativeAnswer(t, answered.ID, "done")

	unansweredSecond := &model.QualitativeQuestion{
		QuestionBase: model.QuestionBase{SectionID: second.ID, Number: 1, QuestionText: "What are your goals?"},
		QuestionType: model.QuestionTypeShortAnswer,
	}
	require.NoError(t, env.questions.CreateQualitative(unansweredSecond))
	unansweredThird := &model.QualitativeQuestion{
		QuestionBase: model.QuestionBase{SectionID: third.ID, Number: 1, QuestionText: "Where are you from?"},
		QuestionType: model.QuestionTypeShortAnswer,
	}
	require.NoError(t, env.questions.CreateQualitative(unansweredThird))

	percent, err := svc.DashboardPercentComplete(env.learner.ID, env.dashboard.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3.0, percent, 1e-9)
}

func TestDashboardPercentCompleteEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()

	dashboard := &model.Dashboard{Name: "Empty"}
	require.NoError(t, env.dashboards.Create(dashboard))

	percent, err := svc.DashboardPercentComplete(env.learner.ID, dashboard.ID)
	require.NoError(t, err)
	assert.Zero(t, percent)
}

func TestSummarize(t *testing.T) {
	env := newTestEnv(t)
	svc := env.completionService()

	answered := env.addQualitativeQuestion(t, 1, false, false)
	env.addQualitativeQuestion(t, 2, false, false)
	env.recordQualitativeAnswer(t, answered.ID, "done")

	summary, err := svc.Summarize(context.Background(), env.learner.ID, env.dashboard.ID, env.section.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, summary.SectionPercent, 1e-9)
	assert.InDelta(t, 50.0, summary.DashboardPercent, 1e-9)
}
