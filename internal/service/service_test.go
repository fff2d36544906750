package service

import (
	"fmt"
	"strings"
	"testing"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/pkg/database"
	"lpd_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.InitTestLogger()
}

// testEnv bundles the repositories and fixture rows shared by the service
// tests, backed by an in-memory database.
type testEnv struct {
	db *gorm.DB

	users       *repository.UserRepository
	dashboards  *repository.DashboardRepository
	questions   *repository.QuestionRepository
	answers     *repository.AnswerRepository
	scores      *repository.ScoreRepository
	submissions *repository.SubmissionRepository
	components  *repository.KnowledgeComponentRepository
	exports     *repository.ExportRepository

	learner   *model.User
	dashboard *model.Dashboard
	section   *model.Section
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named in-memory database with shared cache, so every pooled
	// connection sees the same schema. The name isolates tests from each
	// other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		dashboards:  repository.NewDashboardRepository(db),
		questions:   repository.NewQuestionRepository(db),
		answers:     repository.NewAnswerRepository(db),
		scores:      repository.NewScoreRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		components:  repository.NewKnowledgeComponentRepository(db),
		exports:     repository.NewExportRepository(db),
	}

	env.learner = &model.User{Username: "learner1", Email: "learner1@localhost", Password: "x", Role: model.Learner}
	require.NoError(t, env.users.Create(env.learner))

	env.dashboard = &model.Dashboard{Name: "Learner Profile"}
	require.NoError(t, env.dashboards.Create(env.dashboard))

	env.section = &model.Section{DashboardID: env.dashboard.ID, Position: 0, Title: "About You"}
	require.NoError(t, env.dashboards.CreateSection(env.section))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return env
}

// addKnowledgeComponent creates a component, optionally bound to the test
// dashboard (group components are bound, option components are not).
func (env *testEnv) addKnowledgeComponent(t *testing.T, kcID string, group bool) *model.KnowledgeComponent {
	t.Helper()
	kc := &model.KnowledgeComponent{KcID: kcID, KcName: kcID}
	if group {
		kc.DashboardID = &env.dashboard.ID
	}
	require.NoError(t, env.components.Create(kc))
	return kc
}

func (env *testEnv) addQualitativeQuestion(t *testing.T, number uint, influences, split bool) *model.QualitativeQuestion {
	t.Helper()
	question := &model.QualitativeQuestion{
		QuestionBase: model.QuestionBase{
			SectionID:    env.section.ID,
			Number:       number,
			QuestionText: "Tell us about yourself",
		},
		QuestionType:              model.QuestionTypeShortAnswer,
		InfluencesGroupMembership: influences,
		SplitAnswer:               split,
	}
	require.NoError(t, env.questions.CreateQualitative(question))
	return question
}

func (env *testEnv) addMultipleChoiceQuestion(t *testing.T, number, maxSelect uint) *model.MultipleChoiceQuestion {
	t.Helper()
	question := &model.MultipleChoiceQuestion{
		QuestionBase: model.QuestionBase{
			SectionID:    env.section.ID,
			Number:       number,
			QuestionText: "Pick your interests",
		},
		MaxOptionsToSelect: maxSelect,
	}
	require.NoError(t, env.questions.CreateMultipleChoice(question))
	return question
}

func (env *testEnv) addRankingQuestion(t *testing.T, number, optionsToRank uint) *model.RankingQuestion {
	t.Helper()
	question := &model.RankingQuestion{
		QuestionBase: model.QuestionBase{
			SectionID:    env.section.ID,
			Number:       number,
			QuestionText: "Rank your goals",
		},
		NumberOfOptionsToRank: optionsToRank,
	}
	require.NoError(t, env.questions.CreateRanking(question))
	return question
}

func (env *testEnv) addLikertQuestion(t *testing.T, number uint) *model.LikertScaleQuestion {
	t.Helper()
	question := &model.LikertScaleQuestion{
		QuestionBase: model.QuestionBase{
			SectionID:    env.section.ID,
			Number:       number,
			QuestionText: "Rate these statements",
		},
		AnswerOptionRange: "agreement",
	}
	require.NoError(t, env.questions.CreateLikert(question))
	return question
}

func (env *testEnv) addAnswerOption(t *testing.T, kind string, questionID uint, text string, kc *model.KnowledgeComponent, influences, fallback bool) *model.AnswerOption {
	t.Helper()
	option := &model.AnswerOption{
		QuestionKind:              kind,
		QuestionID:                questionID,
		OptionText:                text,
		InfluencesRecommendations: influences,
		FallbackOption:            fallback,
	}
	if kc != nil {
		option.KnowledgeComponentID = &kc.ID
	}
	require.NoError(t, env.questions.CreateAnswerOption(option))
	return option
}

func (env *testEnv) completionService() *CompletionService {
	return NewCompletionService(env.dashboards, env.questions, env.answers, nil)
}
