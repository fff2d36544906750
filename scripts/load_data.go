// Loads a dashboard definition into the database.
//
// The definition file describes one dashboard: its knowledge components,
// sections, questions, and answer options. Existing rows are wiped first
// when --wipe-existing-data is set.
//
// Usage: go run scripts/load_data.go --file data/dashboard.json

package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"lpd_backend/internal/config"
	"lpd_backend/internal/model"
	"lpd_backend/pkg/database"
	"lpd_backend/pkg/logger"

	"gorm.io/gorm"
)

type dashboardDefinition struct {
	Name                string              `json:"name"`
	KnowledgeComponents []kcDefinition      `json:"knowledge_components"`
	Sections            []sectionDefinition `json:"sections"`
}

type kcDefinition struct {
	KcID   string `json:"kc_id"`
	KcName string `json:"kc_name"`
	// Group components belong to the dashboard itself rather than to an
	// answer option.
	Group bool `json:"group"`
}

type sectionDefinition struct {
	Title     string               `json:"title"`
	IntroText string               `json:"intro_text"`
	Questions []questionDefinition `json:"questions"`
}

type questionDefinition struct {
	// Kind is qualitative, multiple_choice, ranking, or likert.
	Kind         string `json:"kind"`
	Number       uint   `json:"number"`
	QuestionText string `json:"question_text"`
	FramingText  string `json:"framing_text"`
	Notes        string `json:"notes"`

	QuestionType              string `json:"question_type"`
	InfluencesGroupMembership bool   `json:"influences_group_membership"`
	SplitAnswer               bool   `json:"split_answer"`

	MaxOptionsToSelect    uint   `json:"max_options_to_select"`
	NumberOfOptionsToRank uint   `json:"number_of_options_to_rank"`
	AnswerOptionRange     string `json:"answer_option_range"`
	RandomizeOptions      bool   `json:"randomize_options"`

	AnswerOptions []optionDefinition `json:"answer_options"`
}

type optionDefinition struct {
	OptionText                string `json:"option_text"`
	KcID                      string `json:"kc_id"`
	AllowsCustomInput         bool   `json:"allows_custom_input"`
	InfluencesRecommendations bool   `json:"influences_recommendations"`
	FallbackOption            bool   `json:"fallback_option"`
}

func main() {
	file := flag.String("file", "data/dashboard.json", "dashboard definition file")
	wipe := flag.Bool("wipe-existing-data", false, "delete existing dashboard data before loading")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read definition file: %v", err)
	}

	var definition dashboardDefinition
	if err := json.Unmarshal(data, &definition); err != nil {
		log.Fatalf("Failed to parse definition file: %v", err)
	}

	if *wipe {
		for _, table := range []interface{}{
			&model.AnswerOption{},
			&model.QualitativeQuestion{},
			&model.MultipleChoiceQuestion{},
			&model.RankingQuestion{},
			&model.LikertScaleQuestion{},
			&model.Section{},
			&model.KnowledgeComponent{},
			&model.Dashboard{},
		} {
			if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
				log.Fatalf("Failed to wipe existing data: %v", err)
			}
		}
	}

	dashboard := &model.Dashboard{Name: definition.Name}
	if err := db.Create(dashboard).Error; err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	components := make(map[string]*model.KnowledgeComponent, len(definition.KnowledgeComponents))
	for _, def := range definition.KnowledgeComponents {
		kc := &model.KnowledgeComponent{
			KcID:   def.KcID,
			KcName: def.KcName,
		}
		if def.Group {
			kc.DashboardID = &dashboard.ID
		}
		if err := db.Create(kc).Error; err != nil {
			log.Fatalf("Failed to create knowledge component %s: %v", def.KcID, err)
		}
		components[def.KcID] = kc
	}

	for position, sectionDef := range definition.Sections {
		section := &model.Section{
			DashboardID: dashboard.ID,
			Position:    uint(position),
			Title:       sectionDef.Title,
			IntroText:   sectionDef.IntroText,
		}
		if err := db.Create(section).Error; err != nil {
			log.Fatalf("Failed to create section %q: %v", sectionDef.Title, err)
		}

		for _, questionDef := range sectionDef.Questions {
			loadQuestion(db, section.ID, questionDef, components)
		}
	}

	log.Printf("Loaded dashboard %q with %d sections", definition.Name, len(definition.Sections))
}

func loadQuestion(db *gorm.DB, sectionID uint, def questionDefinition, components map[string]*model.KnowledgeComponent) {
	base := model.QuestionBase{
		SectionID:    sectionID,
		Number:       def.Number,
		QuestionText: def.QuestionText,
		FramingText:  def.FramingText,
		Notes:        def.Notes,
	}

	var questionID uint
	switch def.Kind {
	case "qualitative":
		question := &model.QualitativeQuestion{
			QuestionBase:              base,
			QuestionType:              def.QuestionType,
			InfluencesGroupMembership: def.InfluencesGroupMembership,
			SplitAnswer:               def.SplitAnswer,
		}
		if err := db.Create(question).Error; err != nil {
			log.Fatalf("Failed to create qualitative question: %v", err)
		}
		return
	case model.QuestionKindMultipleChoice:
		question := &model.MultipleChoiceQuestion{
			QuestionBase:       base,
			MaxOptionsToSelect: def.MaxOptionsToSelect,
			RandomizeOptions:   def.RandomizeOptions,
		}
		if err := db.Create(question).Error; err != nil {
			log.Fatalf("Failed to create multiple choice question: %v", err)
		}
		questionID = question.ID
	case model.QuestionKindRanking:
		question := &model.RankingQuestion{
			QuestionBase:          base,
			NumberOfOptionsToRank: def.NumberOfOptionsToRank,
			RandomizeOptions:      def.RandomizeOptions,
		}
		if err := db.Create(question).Error; err != nil {
			log.Fatalf("Failed to create ranking question: %v", err)
		}
		questionID = question.ID
	case model.QuestionKindLikert:
		question := &model.LikertScaleQuestion{
			QuestionBase:      base,
			AnswerOptionRange: def.AnswerOptionRange,
			RandomizeOptions:  def.RandomizeOptions,
		}
		if err := db.Create(question).Error; err != nil {
			log.Fatalf("Failed to create likert question: %v", err)
		}
		questionID = question.ID
	default:
		log.Fatalf("Unknown question kind %q", def.Kind)
	}

	for _, optionDef := range def.AnswerOptions {
		option := &model.AnswerOption{
			QuestionKind:              def.Kind,
			QuestionID:                questionID,
			OptionText:                optionDef.OptionText,
			AllowsCustomInput:         optionDef.AllowsCustomInput,
			InfluencesRecommendations: optionDef.InfluencesRecommendations,
			FallbackOption:            optionDef.FallbackOption,
		}
		if optionDef.KcID != "" {
			kc, ok := components[optionDef.KcID]
			if !ok {
				log.Fatalf("Answer option references unknown knowledge component %q", optionDef.KcID)
			}
			option.KnowledgeComponentID = &kc.ID
		}
		if err := db.Create(option).Error; err != nil {
			log.Fatalf("Failed to create answer option: %v", err)
		}
	}
}
