package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineRecorder captures what the submission pipeline transmits.
type engineRecorder struct {
	server   *httptest.Server
	requests int32
	payload  atomic.Value
	status   int32
}

func newEngineRecorder(t *testing.T) *engineRecorder {
	t.Helper()
	rec := &engineRecorder{}
	rec.status = http.StatusOK
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rec.requests, 1)

		var payload []map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			rec.payload.Store(payload)
		}
		w.WriteHeader(int(atomic.LoadInt32(&rec.status)))
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (rec *engineRecorder) requestCount() int {
	return int(atomic.LoadInt32(&rec.requests))
}

func (rec *engineRecorder) lastPayload() []map[string]interface{} {
	payload, _ := rec.payload.Load().([]map[string]interface{})
	return payload
}

func newSubmissionService(env *testEnv, engineURL string, groupKCs []string) *SubmissionService {
	classifier := NewClassifierService(testArtifacts(), groupKCs, env.scores, env.components)
	engine := NewEngineClient(engineURL, "secret-token", "example.edu")
	completion := env.completionService()
	return NewSubmissionService(
		env.questions,
		env.answers,
		env.scores,
		env.submissions,
		env.dashboards,
		classifier,
		engine,
		completion,
	)
}

func TestProcessSubmissionUnknownSection(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, 9999, nil, nil)
	require.NotNil(t, subErr)
	assert.Equal(t, util.MsgSubmissionNotRecorded, subErr.Message)
	assert.Equal(t, 0, rec.requestCount())
}

func TestProcessSubmissionRecordsTimestampWithoutAnswers(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	before := time.Now().UTC()
	result, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil, nil)
	require.Nil(t, subErr)
	assert.False(t, result.LastUpdate.Before(before))

	// No scores were produced, so nothing is transmitted.
	assert.Equal(t, 0, rec.requestCount())
}

func TestProcessSubmissionTimestampAdvances(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	first, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil, nil)
	require.Nil(t, subErr)

	time.Sleep(10 * time.Millisecond)

	second, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil, nil)
	require.Nil(t, subErr)
	assert.True(t, second.LastUpdate.After(first.LastUpdate))
}

func TestProcessQualitativeAnswersReplacesRows(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)
	question := env.addQualitativeQuestion(t, 1, false, false)

	submit := func(text string) {
		t.Helper()
		_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
			[]QualitativeAnswerInput{{QuestionID: question.ID, AnswerText: text}}, nil)
		require.Nil(t, subErr)
	}

	submit("first version")
	submit("second version")

	answers, err := env.answers.QualitativeAnswersForQuestion(env.learner.ID, question.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "second version", answers[0].Text)
}

func TestProcessQualitativeAnswersSplit(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)
	question := env.addQualitativeQuestion(t, 1, false, true)

	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
		[]QualitativeAnswerInput{{QuestionID: question.ID, AnswerText: "reading , writing,arithmetic"}}, nil)
	require.Nil(t, subErr)

	answers, err := env.answers.QualitativeAnswersForQuestion(env.learner.ID, question.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "reading", answers[0].Text)
	assert.Equal(t, "writing", answers[1].Text)
	assert.Equal(t, "arithmetic", answers[2].Text)
}

func TestProcessSubmissionUpdatesGroupScores(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)

	env.addKnowledgeComponent(t, "kc_group_1", true)
	env.addKnowledgeComponent(t, "kc_group_2", true)
	svc := newSubmissionService(env, rec.server.URL, []string{"kc_group_1", "kc_group_2"})

	question := env.addQualitativeQuestion(t, 1, true, false)

	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
		[]QualitativeAnswerInput{{QuestionID: question.ID, AnswerText: "I love to teach and mentor"}}, nil)
	require.Nil(t, subErr)

	scores, err := env.scores.ListForLearner(env.learner.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Group scores are stored as 1 - probability and transmitted.
	var total float64
	for _, score := range scores {
		total += 1.0 - score.Value
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	require.Equal(t, 1, rec.requestCount())
	payload := rec.lastPayload()
	require.Len(t, payload, 2)
}

func TestProcessSubmissionSkipsClassifierForNonInfluencingQuestions(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	env.addKnowledgeComponent(t, "kc_group_1", true)
	svc := newSubmissionService(env, rec.server.URL, []string{"kc_group_1"})

	question := env.addQualitativeQuestion(t, 1, false, false)

	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
		[]QualitativeAnswerInput{{QuestionID: question.ID, AnswerText: "teach teach teach"}}, nil)
	require.Nil(t, subErr)

	scores, err := env.scores.ListForLearner(env.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)
	assert.Equal(t, 0, rec.requestCount())
}

func TestProcessQuantitativeAnswers(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	kc := env.addKnowledgeComponent(t, "kc_interest", false)
	question := env.addMultipleChoiceQuestion(t, 1, 1)
	selected := env.addAnswerOption(t, question.Kind(), question.ID, "Option A", kc, true, false)
	skipped := env.addAnswerOption(t, question.Kind(), question.ID, "Option B", nil, false, false)

	one := 1
	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
		[]QuantitativeAnswerInput{
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: selected.ID, AnswerOptionValue: &one},
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: skipped.ID, AnswerOptionValue: nil},
		})
	require.Nil(t, subErr)

	// The nil-valued answer is skipped entirely.
	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, skipped.ID)
	require.NoError(t, err)
	assert.Nil(t, answer)

	answer, err = env.answers.QuantitativeAnswerFor(env.learner.ID, selected.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, 1, answer.Value)

	// Selecting the option yields the inverted score 0.
	scores, err := env.scores.ListForLearner(env.learner.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0.0, scores[0].Value)
	assert.Equal(t, "kc_interest", scores[0].KnowledgeComponent.KcID)

	require.Equal(t, 1, rec.requestCount())
}

func TestProcessQuantitativeAnswersUpsertIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	question := env.addMultipleChoiceQuestion(t, 1, 1)
	option := env.addAnswerOption(t, question.Kind(), question.ID, "Option A", nil, false, false)

	one := 1
	zero := 0
	submit := func(value *int) {
		t.Helper()
		_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
			[]QuantitativeAnswerInput{
				{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: option.ID, AnswerOptionValue: value},
			})
		require.Nil(t, subErr)
	}

	submit(&one)
	submit(&zero)
	submit(&zero)

	var count int64
	require.NoError(t, env.db.Model(&model.QuantitativeAnswer{}).
		Where("learner_id = ?", env.learner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, option.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, 0, answer.Value)
}

func TestProcessQuantitativeAnswersMisconfiguredOption(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	question := env.addMultipleChoiceQuestion(t, 1, 1)
	// Influences recommendations but has no knowledge component: logged,
	// not fatal, and no score is stored.
	option := env.addAnswerOption(t, question.Kind(), question.ID, "Option A", nil, true, false)

	one := 1
	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
		[]QuantitativeAnswerInput{
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: option.ID, AnswerOptionValue: &one},
		})
	require.Nil(t, subErr)

	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, option.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)

	scores, err := env.scores.ListForLearner(env.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)
	assert.Equal(t, 0, rec.requestCount())
}

func TestProcessQuantitativeAnswersCustomInputGate(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	question := env.addMultipleChoiceQuestion(t, 1, 1)
	plain := env.addAnswerOption(t, question.Kind(), question.ID, "Option A", nil, false, false)
	other := &model.AnswerOption{
		QuestionKind:      question.Kind(),
		QuestionID:        question.ID,
		OptionText:        "Other",
		AllowsCustomInput: true,
		FallbackOption:    true,
	}
	require.NoError(t, env.questions.CreateAnswerOption(other))

	one := 1
	text := "my own answer"
	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
		[]QuantitativeAnswerInput{
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: plain.ID, AnswerOptionValue: &one, AnswerOptionCustomInput: &text},
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: other.ID, AnswerOptionValue: &one, AnswerOptionCustomInput: &text},
		})
	require.Nil(t, subErr)

	// Only the option that accepts custom input keeps the text.
	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, plain.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, "", answer.CustomInput)

	answer, err = env.answers.QuantitativeAnswerFor(env.learner.ID, other.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, "my own answer", answer.CustomInput)
}

func TestProcessSubmissionRankingSentinel(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	kc := env.addKnowledgeComponent(t, "kc_goal", false)
	question := env.addRankingQuestion(t, 1, 3)
	ranked := env.addAnswerOption(t, question.Kind(), question.ID, "Goal A", kc, true, false)
	unranked := env.addAnswerOption(t, question.Kind(), question.ID, "Goal B", nil, false, false)

	one := 1
	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
		[]QuantitativeAnswerInput{
			{QuestionID: question.ID, QuestionType: model.QuestionTypeRanking, AnswerOptionID: ranked.ID, AnswerOptionValue: &one},
			{QuestionID: question.ID, QuestionType: model.QuestionTypeRanking, AnswerOptionID: unranked.ID, AnswerOptionValue: nil},
		})
	require.Nil(t, subErr)

	// Unranked options store the sentinel (max options to rank + 1).
	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, unranked.ID)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, 4, answer.Value)

	// Rank 1 maps to score 0.
	scores, err := env.scores.ListForLearner(env.learner.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 0.0, scores[0].Value, 1e-9)
}

func TestProcessSubmissionTransmissionFailure(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	atomic.StoreInt32(&rec.status, http.StatusInternalServerError)
	svc := newSubmissionService(env, rec.server.URL, nil)

	kc := env.addKnowledgeComponent(t, "kc_interest", false)
	question := env.addMultipleChoiceQuestion(t, 1, 1)
	option := env.addAnswerOption(t, question.Kind(), question.ID, "Option A", kc, true, false)

	one := 1
	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID, nil,
		[]QuantitativeAnswerInput{
			{QuestionID: question.ID, QuestionType: model.QuestionTypeMCQ, AnswerOptionID: option.ID, AnswerOptionValue: &one},
		})
	require.NotNil(t, subErr)
	assert.Equal(t, util.MsgScoresNotTransmitted, subErr.Message)

	// Local persistence is kept; only the transmission failed.
	answer, err := env.answers.QuantitativeAnswerFor(env.learner.ID, option.ID)
	require.NoError(t, err)
	assert.NotNil(t, answer)

	// The submission timestamp was not recorded.
	lastUpdate, err := env.submissions.LastUpdate(env.learner.ID, env.section.ID)
	require.NoError(t, err)
	assert.Nil(t, lastUpdate)
}

func TestProcessSubmissionUnknownQuestionFails(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	_, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
		[]QualitativeAnswerInput{{QuestionID: 12345, AnswerText: "orphaned"}}, nil)
	require.NotNil(t, subErr)
	assert.Equal(t, util.MsgAnswersNotSaved, subErr.Message)
}

func TestProcessSubmissionReportsCompletion(t *testing.T) {
	env := newTestEnv(t)
	rec := newEngineRecorder(t)
	svc := newSubmissionService(env, rec.server.URL, nil)

	answered := env.addQualitativeQuestion(t, 1, false, false)
	env.addQualitativeQuestion(t, 2, false, false)

	result, subErr := svc.ProcessSubmission(context.Background(), env.learner, env.section.ID,
		[]QualitativeAnswerInput{{QuestionID: answered.ID, AnswerText: "done"}}, nil)
	require.Nil(t, subErr)
	require.NotNil(t, result.Completion)

	assert.InDelta(t, 50.0, result.Completion.SectionPercent, 1e-9)
	assert.InDelta(t, 50.0, result.Completion.DashboardPercent, 1e-9)
}
