package service

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
)

// ProfileService assembles the learner-facing view of a dashboard: sections
// with their questions in order, answer options in display order, and the
// learner's current answers.
type ProfileService struct {
	DashboardRepo  *repository.DashboardRepository
	QuestionRepo   *repository.QuestionRepository
	AnswerRepo     *repository.AnswerRepository
	SubmissionRepo *repository.SubmissionRepository
	Completion     *CompletionService

	// rng backs option shuffling and is not safe for concurrent use;
	// rngMu serializes access across requests.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewProfileService(
	dashboardRepo *repository.DashboardRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	submissionRepo *repository.SubmissionRepository,
	completion *CompletionService,
) *ProfileService {
	return &ProfileService{
		DashboardRepo:  dashboardRepo,
		QuestionRepo:   questionRepo,
		AnswerRepo:     answerRepo,
		SubmissionRepo: submissionRepo,
		Completion:     completion,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AnswerOptionView is an answer option with the learner's stored data.
// Value is nil when the learner has no answer for the option.
type AnswerOptionView struct {
	ID                uint   `json:"id"`
	OptionText        string `json:"optionText"`
	AllowsCustomInput bool   `json:"allowsCustomInput"`
	FallbackOption    bool   `json:"fallbackOption"`
	Value             *int   `json:"value,omitempty"`
	CustomInput       string `json:"customInput,omitempty"`
	ValueLabel        string `json:"valueLabel,omitempty"`
}

// QuestionView is a question of any type with the learner's answer data.
type QuestionView struct {
	ID           uint   `json:"id"`
	Type         string `json:"type"`
	Number       uint   `json:"number"`
	QuestionText string `json:"questionText"`
	FramingText  string `json:"framingText,omitempty"`
	Notes        string `json:"notes,omitempty"`

	// Answer holds the joined text for qualitative questions.
	Answer string `json:"answer,omitempty"`
	// SplitAnswer is set for qualitative questions whose answers are lists.
	SplitAnswer bool `json:"splitAnswer,omitempty"`

	MaxOptionsToSelect    uint               `json:"maxOptionsToSelect,omitempty"`
	NumberOfOptionsToRank uint               `json:"numberOfOptionsToRank,omitempty"`
	AnswerOptionRange     string             `json:"answerOptionRange,omitempty"`
	AnswerOptions         []AnswerOptionView `json:"answerOptions,omitempty"`
}

// SectionView is a section with its questions and the learner's progress.
type SectionView struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	IntroText       string         `json:"introText,omitempty"`
	Questions       []QuestionView `json:"questions"`
	PercentComplete float64        `json:"percentComplete"`
	LastUpdate      *time.Time     `json:"lastUpdate,omitempty"`
}

// DashboardView is the complete learner-facing dashboard.
type DashboardView struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	Sections        []SectionView `json:"sections"`
	PercentComplete float64       `json:"percentComplete"`
}

// GetDashboard builds the full dashboard view for a learner.
func (s *ProfileService) GetDashboard(learnerID, dashboardID uint) (*DashboardView, error) {
	dashboard, err := s.DashboardRepo.FindByID(dashboardID)
	if err != nil {
		return nil, err
	}

	sections, err := s.DashboardRepo.SectionsForDashboard(dashboard.ID)
	if err != nil {
		return nil, err
	}

	unrankedValue, err := s.QuestionRepo.UnrankedOptionValue()
	if err != nil {
		return nil, err
	}

	view := &DashboardView{
		ID:       dashboard.ID,
		Name:     dashboard.Name,
		Sections: make([]SectionView, 0, len(sections)),
	}

	for _, section := range sections {
		sectionView, err := s.buildSectionView(learnerID, &section, unrankedValue)
		if err != nil {
			return nil, err
		}
		view.Sections = append(view.Sections, *sectionView)
	}

	percent, err := s.Completion.DashboardPercentComplete(learnerID, dashboard.ID)
	if err != nil {
		return nil, err
	}
	view.PercentComplete = percent
	return view, nil
}

// GetDefaultDashboard builds the view for the first configured dashboard.
func (s *ProfileService) GetDefaultDashboard(learnerID uint) (*DashboardView, error) {
	dashboard, err := s.DashboardRepo.First()
	if err != nil {
		return nil, err
	}
	return s.GetDashboard(learnerID, dashboard.ID)
}

func (s *ProfileService) buildSectionView(learnerID uint, section *model.Section, unrankedValue int) (*SectionView, error) {
	view := &SectionView{
		ID:        section.ID,
		Title:     section.Title,
		IntroText: section.IntroText,
	}

	questions, err := s.sectionQuestions(learnerID, section.ID, unrankedValue)
	if err != nil {
		return nil, err
	}
	view.Questions = questions

	percent, err := s.Completion.SectionPercentComplete(learnerID, section.ID)
	if err != nil {
		return nil, err
	}
	view.PercentComplete = percent

	lastUpdate, err := s.SubmissionRepo.LastUpdate(learnerID, section.ID)
	if err != nil {
		return nil, err
	}
	view.LastUpdate = lastUpdate
	return view, nil
}

// sectionQuestions collects all four question variants for a section and
// interleaves them by question number.
func (s *ProfileService) sectionQuestions(learnerID, sectionID uint, unrankedValue int) ([]QuestionView, error) {
	var views []QuestionView

	qualitative, err := s.QuestionRepo.QualitativeBySection(sectionID)
	if err != nil {
		return nil, err
	}
	for i := range qualitative {
		view, err := s.qualitativeView(learnerID, &qualitative[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	multipleChoice, err := s.QuestionRepo.MultipleChoiceBySection(sectionID)
	if err != nil {
		return nil, err
	}
	for i := range multipleChoice {
		view, err := s.multipleChoiceView(learnerID, &multipleChoice[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	ranking, err := s.QuestionRepo.RankingBySection(sectionID)
	if err != nil {
		return nil, err
	}
	for i := range ranking {
		view, err := s.rankingView(learnerID, &ranking[i], unrankedValue)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	likert, err := s.QuestionRepo.LikertBySection(sectionID)
	if err != nil {
		return nil, err
	}
	for i := range likert {
		view, err := s.likertView(learnerID, &likert[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Number < views[j].Number
	})
	return views, nil
}

// qualitativeView joins the stored answer rows back into display text.
// Split answers come back as a comma-separated list.
func (s *ProfileService) qualitativeView(learnerID uint, question *model.QualitativeQuestion) (*QuestionView, error) {
	answers, err := s.AnswerRepo.QualitativeAnswersForQuestion(learnerID, question.ID)
	if err != nil {
		return nil, err
	}

	text := ""
	for i, answer := range answers {
		if i > 0 {
			text += ", "
		}
		text += answer.Text
	}

	return &QuestionView{
		ID:           question.ID,
		Type:         question.Type(),
		Number:       question.Number,
		QuestionText: question.QuestionText,
		FramingText:  question.FramingText,
		Notes:        question.Notes,
		Answer:       text,
		SplitAnswer:  question.SplitAnswer,
	}, nil
}

func (s *ProfileService) multipleChoiceView(learnerID uint, question *model.MultipleChoiceQuestion) (*QuestionView, error) {
	options, err := s.optionViews(learnerID, question.Kind(), question.ID, question.RandomizeOptions)
	if err != nil {
		return nil, err
	}

	return &QuestionView{
		ID:                 question.ID,
		Type:               question.Type(),
		Number:             question.Number,
		QuestionText:       question.QuestionText,
		FramingText:        question.FramingText,
		Notes:              question.Notes,
		MaxOptionsToSelect: question.MaxOptionsToSelect,
		AnswerOptions:      options,
	}, nil
}

// rankingView hides the unranked sentinel from the display layer: options
// the learner left unranked come back without a value.
func (s *ProfileService) rankingView(learnerID uint, question *model.RankingQuestion, unrankedValue int) (*QuestionView, error) {
	options, err := s.optionViews(learnerID, question.Kind(), question.ID, question.RandomizeOptions)
	if err != nil {
		return nil, err
	}

	for i := range options {
		if options[i].Value != nil && *options[i].Value == unrankedValue {
			options[i].Value = nil
		}
	}

	return &QuestionView{
		ID:                    question.ID,
		Type:                  question.Type(),
		Number:                question.Number,
		QuestionText:          question.QuestionText,
		FramingText:           question.FramingText,
		Notes:                 question.Notes,
		NumberOfOptionsToRank: question.NumberOfOptionsToRank,
		AnswerOptions:         options,
	}, nil
}

// likertView labels each option with the text corresponding to the stored
// value, or "---" for options the learner has not answered.
func (s *ProfileService) likertView(learnerID uint, question *model.LikertScaleQuestion) (*QuestionView, error) {
	options, err := s.optionViews(learnerID, question.Kind(), question.ID, question.RandomizeOptions)
	if err != nil {
		return nil, err
	}

	for i := range options {
		if options[i].Value != nil {
			options[i].ValueLabel = question.ValueLabel(*options[i].Value)
		} else {
			options[i].ValueLabel = "---"
		}
	}

	return &QuestionView{
		ID:                question.ID,
		Type:              question.Type(),
		Number:            question.Number,
		QuestionText:      question.QuestionText,
		FramingText:       question.FramingText,
		Notes:             question.Notes,
		AnswerOptionRange: question.AnswerOptionRange,
		AnswerOptions:     options,
	}, nil
}

func (s *ProfileService) optionViews(learnerID uint, questionKind string, questionID uint, randomize bool) ([]AnswerOptionView, error) {
	options, err := s.QuestionRepo.AnswerOptionsFor(questionKind, questionID)
	if err != nil {
		return nil, err
	}
	s.rngMu.Lock()
	options = model.SortAnswerOptions(options, randomize, s.rng)
	s.rngMu.Unlock()

	ids := make([]uint, 0, len(options))
	for _, option := range options {
		ids = append(ids, option.ID)
	}
	answers, err := s.AnswerRepo.QuantitativeAnswersForOptions(learnerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]AnswerOptionView, 0, len(options))
	for _, option := range options {
		view := AnswerOptionView{
			ID:                option.ID,
			OptionText:        option.OptionText,
			AllowsCustomInput: option.AllowsCustomInput,
			FallbackOption:    option.FallbackOption,
		}
		if answer, ok := answers[option.ID]; ok {
			value := answer.Value
			view.Value = &value
			view.CustomInput = answer.CustomInput
		}
		views = append(views, view)
	}
	return views, nil
}
