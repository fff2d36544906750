package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const completionCacheTTL = 10 * time.Minute

// CompletionService computes how far a learner has progressed through a
// dashboard. Percentages are kept as floats; rounding happens only when
// shaping the HTTP response.
type CompletionService struct {
	DashboardRepo *repository.DashboardRepository
	QuestionRepo  *repository.QuestionRepository
	AnswerRepo    *repository.AnswerRepository
	Redis         *redis.Client
}

func NewCompletionService(
	dashboardRepo *repository.DashboardRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
) *CompletionService {
	return &CompletionService{
		DashboardRepo: dashboardRepo,
		QuestionRepo:  questionRepo,
		AnswerRepo:    answerRepo,
		Redis:         rdb,
	}
}

// CompletionSummary pairs dashboard-level progress with the progress of a
// single section, as reported after a submission.
type CompletionSummary struct {
	DashboardPercent float64 `json:"profile"`
	SectionPercent   float64 `json:"section"`
}

// HasQualitativeAnswer reports whether the learner answered the question.
// Any non-empty text counts.
func (s *CompletionService) HasQualitativeAnswer(learnerID uint, question *model.QualitativeQuestion) (bool, error) {
	answers, err := s.AnswerRepo.QualitativeAnswersForQuestion(learnerID, question.ID)
	if err != nil {
		return false, err
	}
	texts := make([]string, 0, len(answers))
	for _, answer := range answers {
		texts = append(texts, answer.Text)
	}
	return strings.Join(texts, ", ") != "", nil
}

// HasMultipleChoiceAnswer reports whether the learner selected at least one
// answer option of the question.
func (s *CompletionService) HasMultipleChoiceAnswer(learnerID uint, question *model.MultipleChoiceQuestion) (bool, error) {
	_, selected, err := s.selectedOptions(learnerID, question.Kind(), question.ID, 0)
	if err != nil {
		return false, err
	}
	return selected > 0, nil
}

// HasRankingAnswer reports whether the learner ranked exactly as many
// options as the question requires. Fallback options are not treated
// differently from regular ones here.
func (s *CompletionService) HasRankingAnswer(learnerID uint, question *model.RankingQuestion, unrankedValue int) (bool, error) {
	_, selected, err := s.selectedOptions(learnerID, question.Kind(), question.ID, unrankedValue)
	if err != nil {
		return false, err
	}
	return selected == int(question.NumberOfOptionsToRank), nil
}

// HasLikertAnswer reports whether the learner selected a value for every
// regular answer option of the question. A question with no regular options
// can never be considered answered.
func (s *CompletionService) HasLikertAnswer(learnerID uint, question *model.LikertScaleQuestion) (bool, error) {
	options, err := s.QuestionRepo.AnswerOptionsFor(question.Kind(), question.ID)
	if err != nil {
		return false, err
	}

	regular := make([]model.AnswerOption, 0, len(options))
	for _, option := range options {
		if !option.FallbackOption {
			regular = append(regular, option)
		}
	}
	if len(regular) == 0 {
		return false, nil
	}

	ids := make([]uint, 0, len(regular))
	for _, option := range regular {
		ids = append(ids, option.ID)
	}
	answers, err := s.AnswerRepo.QuantitativeAnswersForOptions(learnerID, ids)
	if err != nil {
		return false, err
	}

	for _, option := range regular {
		answer, ok := answers[option.ID]
		if !ok || answer.Value == 0 {
			return false, nil
		}
	}
	return true, nil
}

// selectedOptions returns the option count and how many of them the learner
// selected. An option counts as selected when answer data exists and its
// value is neither 0 nor, for ranking questions, the unranked sentinel.
func (s *CompletionService) selectedOptions(learnerID uint, questionKind string, questionID uint, unrankedValue int) (int, int, error) {
	options, err := s.QuestionRepo.AnswerOptionsFor(questionKind, questionID)
	if err != nil {
		return 0, 0, err
	}

	ids := make([]uint, 0, len(options))
	for _, option := range options {
		ids = append(ids, option.ID)
	}
	answers, err := s.AnswerRepo.QuantitativeAnswersForOptions(learnerID, ids)
	if err != nil {
		return 0, 0, err
	}

	selected := 0
	for _, option := range options {
		answer, ok := answers[option.ID]
		if !ok {
			continue
		}
		if questionKind == model.QuestionKindRanking {
			if answer.Value != unrankedValue {
				selected++
			}
			continue
		}
		if answer.Value != 0 {
			selected++
		}
	}
	return len(options), selected, nil
}

// SectionPercentComplete returns the share of the section's questions that
// the learner has answered, in percent. An empty section is 0% complete.
func (s *CompletionService) SectionPercentComplete(learnerID, sectionID uint) (float64, error) {
	unrankedValue, err := s.QuestionRepo.UnrankedOptionValue()
	if err != nil {
		return 0, err
	}
	return s.sectionPercentComplete(learnerID, sectionID, unrankedValue)
}

func (s *CompletionService) sectionPercentComplete(learnerID, sectionID uint, unrankedValue int) (float64, error) {
	total := 0
	answered := 0

	qualitative, err := s.QuestionRepo.QualitativeBySection(sectionID)
	if err != nil {
		return 0, err
	}
	for i := range qualitative {
		total++
		has, err := s.HasQualitativeAnswer(learnerID, &qualitative[i])
		if err != nil {
			return 0, err
		}
		if has {
			answered++
		}
	}

	multipleChoice, err := s.QuestionRepo.MultipleChoiceBySection(sectionID)
	if err != nil {
		return 0, err
	}
	for i := range multipleChoice {
		total++
		has, err := s.HasMultipleChoiceAnswer(learnerID, &multipleChoice[i])
		if err != nil {
			return 0, err
		}
		if has {
			answered++
		}
	}

	ranking, err := s.QuestionRepo.RankingBySection(sectionID)
	if err != nil {
		return 0, err
	}
	for i := range ranking {
		total++
		has, err := s.HasRankingAnswer(learnerID, &ranking[i], unrankedValue)
		if err != nil {
			return 0, err
		}
		if has {
			answered++
		}
	}

	likert, err := s.QuestionRepo.LikertBySection(sectionID)
	if err != nil {
		return 0, err
	}
	for i := range likert {
		total++
		has, err := s.HasLikertAnswer(learnerID, &likert[i])
		if err != nil {
			return 0, err
		}
		if has {
			answered++
		}
	}

	if total == 0 {
		return 0, nil
	}
	return 100.0 * float64(answered) / float64(total), nil
}

// DashboardPercentComplete returns the learner's progress for the whole
// dashboard as the equal-weight mean of its section percentages. A
// dashboard with no sections is 0% complete.
func (s *CompletionService) DashboardPercentComplete(learnerID, dashboardID uint) (float64, error) {
	sections, err := s.DashboardRepo.SectionsForDashboard(dashboardID)
	if err != nil {
		return 0, err
	}
	if len(sections) == 0 {
		return 0, nil
	}

	unrankedValue, err := s.QuestionRepo.UnrankedOptionValue()
	if err != nil {
		return 0, err
	}

	sectionWeight := 1.0 / float64(len(sections))
	var percent float64
	for _, section := range sections {
		sectionPercent, err := s.sectionPercentComplete(learnerID, section.ID, unrankedValue)
		if err != nil {
			return 0, err
		}
		percent += sectionWeight * sectionPercent
	}
	return percent, nil
}

// Summarize computes fresh completion percentages for the learner and
// caches them. Called right after a submission, so cached values always
// reflect the learner's latest answers.
func (s *CompletionService) Summarize(ctx context.Context, learnerID, dashboardID, sectionID uint) (*CompletionSummary, error) {
	sectionPercent, err := s.SectionPercentComplete(learnerID, sectionID)
	if err != nil {
		return nil, err
	}
	dashboardPercent, err := s.DashboardPercentComplete(learnerID, dashboardID)
	if err != nil {
		return nil, err
	}

	summary := &CompletionSummary{
		DashboardPercent: dashboardPercent,
		SectionPercent:   sectionPercent,
	}
	s.cacheSummary(ctx, learnerID, sectionID, summary)
	return summary, nil
}

// CachedSummary returns the most recently cached completion summary for
// the learner and section, or nil when none is cached.
func (s *CompletionService) CachedSummary(ctx context.Context, learnerID, sectionID uint) *CompletionSummary {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(ctx, completionCacheKey(learnerID, sectionID)).Bytes()
	if err != nil {
		return nil
	}
	var summary CompletionSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *CompletionService) cacheSummary(ctx context.Context, learnerID, sectionID uint, summary *CompletionSummary) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, completionCacheKey(learnerID, sectionID), data, completionCacheTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache completion summary", zap.Error(err))
	}
}

func completionCacheKey(learnerID, sectionID uint) string {
	return fmt.Sprintf("lpd:completion:%d:%d", learnerID, sectionID)
}
