package service

import (
	"context"
	"regexp"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/internal/util"
	"lpd_backend/pkg/logger"
	"lpd_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// answerComponentPattern splits a comma-separated answer into components.
var answerComponentPattern = regexp.MustCompile(` *, *`)

// QualitativeAnswerInput is a learner's free-text answer to a single
// qualitative question, as carried by a submission request.
type QualitativeAnswerInput struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	AnswerText string `json:"answer_text"`
}

// QuantitativeAnswerInput is a learner's answer for a single answer option,
// as carried by a submission request. AnswerOptionValue is nil when the
// learner did not interact with the option.
type QuantitativeAnswerInput struct {
	QuestionID              uint    `json:"question_id" binding:"required"`
	QuestionType            string  `json:"question_type" binding:"required"`
	AnswerOptionID          uint    `json:"answer_option_id" binding:"required"`
	AnswerOptionValue       *int    `json:"answer_option_value"`
	AnswerOptionCustomInput *string `json:"answer_option_custom_input"`
}

// SubmissionError reports which stage of the pipeline failed. Message is
// one of the three fixed user-facing messages; Err carries the cause for
// the logs.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SubmissionResult is returned after a fully processed submission.
type SubmissionResult struct {
	LastUpdate time.Time
	Completion *CompletionSummary
}

// SubmissionService runs the answer submission pipeline: persist answers,
// recompute scores, transmit them to the adaptive engine, and record the
// submission. Local persistence is not rolled back when transmission fails;
// the next successful submission brings the engine back in sync.
type SubmissionService struct {
	QuestionRepo   *repository.QuestionRepository
	AnswerRepo     *repository.AnswerRepository
	ScoreRepo      *repository.ScoreRepository
	SubmissionRepo *repository.SubmissionRepository
	DashboardRepo  *repository.DashboardRepository
	Classifier     *ClassifierService
	Engine         *EngineClient
	Completion     *CompletionService
}

func NewSubmissionService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	scoreRepo *repository.ScoreRepository,
	submissionRepo *repository.SubmissionRepository,
	dashboardRepo *repository.DashboardRepository,
	classifier *ClassifierService,
	engine *EngineClient,
	completion *CompletionService,
) *SubmissionService {
	return &SubmissionService{
		QuestionRepo:   questionRepo,
		AnswerRepo:     answerRepo,
		ScoreRepo:      scoreRepo,
		SubmissionRepo: submissionRepo,
		DashboardRepo:  dashboardRepo,
		Classifier:     classifier,
		Engine:         engine,
		Completion:     completion,
	}
}

// ProcessSubmission persists the learner's answers for a section, updates
// scores, transmits them, and records the submission time. Submission data
// is updated for every submission, even one that changes no answers, so
// repeated submits always advance the recorded timestamp.
func (s *SubmissionService) ProcessSubmission(
	ctx context.Context,
	learner *model.User,
	sectionID uint,
	qualitative []QualitativeAnswerInput,
	quantitative []QuantitativeAnswerInput,
) (*SubmissionResult, *SubmissionError) {
	logger.Log.Info("processing submission",
		zap.Uint("learner_id", learner.ID),
		zap.Uint("section_id", sectionID),
		zap.Int("qualitative_answers", len(qualitative)),
		zap.Int("quantitative_answers", len(quantitative)))

	section, err := s.DashboardRepo.FindSectionByID(sectionID)
	if err != nil {
		monitoring.SubmissionCounter.WithLabelValues("submission_failed").Inc()
		return nil, &SubmissionError{Message: util.MsgSubmissionNotRecorded, Err: err}
	}

	groupScores, err := s.processQualitativeAnswers(learner, section.DashboardID, qualitative)
	if err != nil {
		logger.Log.Error("failed to process qualitative answers",
			zap.Uint("learner_id", learner.ID), zap.Error(err))
		monitoring.SubmissionCounter.WithLabelValues("answers_failed").Inc()
		return nil, &SubmissionError{Message: util.MsgAnswersNotSaved, Err: err}
	}

	answerScores, err := s.processQuantitativeAnswers(learner, quantitative)
	if err != nil {
		logger.Log.Error("failed to process quantitative answers",
			zap.Uint("learner_id", learner.ID), zap.Error(err))
		monitoring.SubmissionCounter.WithLabelValues("answers_failed").Inc()
		return nil, &SubmissionError{Message: util.MsgAnswersNotSaved, Err: err}
	}

	scores := append(groupScores, answerScores...)
	if len(scores) > 0 {
		if err := s.Engine.SendLearnerData(ctx, learner, scores); err != nil {
			logger.Log.Error("failed to transmit scores to adaptive engine",
				zap.Uint("learner_id", learner.ID), zap.Error(err))
			monitoring.SubmissionCounter.WithLabelValues("transmission_failed").Inc()
			return nil, &SubmissionError{Message: util.MsgScoresNotTransmitted, Err: err}
		}
	}

	submission, err := s.SubmissionRepo.Upsert(learner.ID, sectionID, time.Now().UTC())
	if err != nil {
		logger.Log.Error("failed to record submission",
			zap.Uint("learner_id", learner.ID), zap.Error(err))
		monitoring.SubmissionCounter.WithLabelValues("submission_failed").Inc()
		return nil, &SubmissionError{Message: util.MsgSubmissionNotRecorded, Err: err}
	}

	summary, err := s.Completion.Summarize(ctx, learner.ID, section.DashboardID, sectionID)
	if err != nil {
		monitoring.SubmissionCounter.WithLabelValues("submission_failed").Inc()
		return nil, &SubmissionError{Message: util.MsgSubmissionNotRecorded, Err: err}
	}

	monitoring.SubmissionCounter.WithLabelValues("ok").Inc()
	logger.Log.Info("submission processed",
		zap.Uint("learner_id", learner.ID),
		zap.Uint("section_id", sectionID),
		zap.Time("last_update", submission.Updated))

	return &SubmissionResult{LastUpdate: submission.Updated, Completion: summary}, nil
}

// processQualitativeAnswers replaces the learner's stored answers for each
// submitted qualitative question and, when any touched question influences
// group membership, recomputes group scores from all influencing answers
// the learner has on the dashboard.
func (s *SubmissionService) processQualitativeAnswers(
	learner *model.User,
	dashboardID uint,
	answers []QualitativeAnswerInput,
) ([]model.Score, error) {
	updateGroupMembership := false

	for _, input := range answers {
		question, err := s.QuestionRepo.FindQualitativeByID(input.QuestionID)
		if err != nil {
			return nil, err
		}

		// Delete existing answers so obsolete components don't linger.
		if err := s.AnswerRepo.DeleteQualitativeAnswers(learner.ID, question.ID); err != nil {
			return nil, err
		}

		for _, component := range answerComponents(question, input.AnswerText) {
			answer := &model.QualitativeAnswer{
				LearnerID:  learner.ID,
				QuestionID: question.ID,
				Text:       component,
			}
			if err := s.AnswerRepo.CreateQualitativeAnswer(answer); err != nil {
				return nil, err
			}
		}

		if question.InfluencesGroupMembership {
			updateGroupMembership = true
		}
	}

	// Scores change only when the learner touched at least one question
	// that is configured to influence group membership.
	if !updateGroupMembership {
		return nil, nil
	}

	texts, err := s.AnswerRepo.InfluencingAnswerTexts(learner.ID, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.Classifier.UpdateGroupScores(learner.ID, dashboardID, texts)
}

// answerComponents returns the parts of answerText to store individually.
// Questions configured to split answers store one row per comma-separated
// component; all other questions store the text as a single row.
func answerComponents(question *model.QualitativeQuestion, answerText string) []string {
	if question.SplitAnswer {
		return answerComponentPattern.Split(answerText, -1)
	}
	return []string{answerText}
}

// processQuantitativeAnswers upserts one answer per submitted answer option
// and creates a score for options that influence recommendations. Answers
// without a meaningful value are skipped.
func (s *SubmissionService) processQuantitativeAnswers(
	learner *model.User,
	answers []QuantitativeAnswerInput,
) ([]model.Score, error) {
	unrankedValue, err := s.QuestionRepo.UnrankedOptionValue()
	if err != nil {
		return nil, err
	}

	var scores []model.Score
	for _, input := range answers {
		answerValue := model.AnswerValue(input.QuestionType, input.AnswerOptionValue, unrankedValue)
		if answerValue == nil {
			continue
		}

		option, err := s.QuestionRepo.FindAnswerOptionByID(input.AnswerOptionID)
		if err != nil {
			return nil, err
		}

		answer := &model.QuantitativeAnswer{
			LearnerID:      learner.ID,
			AnswerOptionID: option.ID,
			Value:          *answerValue,
		}
		// Custom input only sticks to options that accept it; for any other
		// option the stored input stays empty, clearing stale text on upsert.
		if option.AllowsCustomInput && input.AnswerOptionCustomInput != nil {
			answer.CustomInput = *input.AnswerOptionCustomInput
		}
		if err := s.AnswerRepo.UpsertQuantitativeAnswer(answer); err != nil {
			return nil, err
		}

		score, err := s.scoreForOption(learner, input.QuestionType, option, *answerValue, unrankedValue)
		if err != nil {
			return nil, err
		}
		if score != nil {
			scores = append(scores, *score)
		}
	}
	return scores, nil
}

// scoreForOption stores a score for the option's knowledge component when
// the option influences recommendations. An influencing option without a
// linked knowledge component is a configuration error; it is logged and
// does not fail the submission.
func (s *SubmissionService) scoreForOption(
	learner *model.User,
	questionType string,
	option *model.AnswerOption,
	answerValue int,
	unrankedValue int,
) (*model.Score, error) {
	if !option.InfluencesRecommendations {
		return nil, nil
	}
	if option.KnowledgeComponentID == nil {
		logger.Log.Error("answer option influences recommendations but has no knowledge component",
			zap.Uint("answer_option_id", option.ID))
		return nil, nil
	}

	value, err := model.ScoreForAnswer(questionType, answerValue, unrankedValue)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("storing score",
		zap.Uint("learner_id", learner.ID),
		zap.Uint("answer_option_id", option.ID),
		zap.Int("answer_value", answerValue),
		zap.Float64("score", value))

	return s.ScoreRepo.Upsert(learner.ID, *option.KnowledgeComponentID, value)
}
