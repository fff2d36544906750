package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/pkg/logger"

	"go.uber.org/zap"
)

// domainStopWords lists terms that appear in nearly every answer on a
// teaching-focused dashboard and therefore carry no signal for grouping.
var domainStopWords = []string{
	"education", "experience", "learn", "learning",
	"school", "students", "teach", "working",
}

// stemTargets maps inflected forms of "teach" back to their root
// so the vectorizer counts them as one term.
var stemTargets = map[string]string{
	"teaching": "teach",
	"teacher":  "teach",
	"teachers": "teach",
}

// Word characters are letters, digits, and underscore in any script, so
// accented answers keep their letters instead of losing them.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// ClassifierArtifacts holds the pretrained model parameters. They are
// produced offline and loaded once at startup; all fields are read-only
// after loading.
type ClassifierArtifacts struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	Idf         []float64      `json:"idf"`
	StopWords   []string       `json:"stop_words"`
	Components  [][]float64    `json:"components"`
	MaxFeatures int            `json:"max_features"`
}

// LoadClassifierArtifacts reads model parameters from the JSON file at path.
func LoadClassifierArtifacts(path string) (*ClassifierArtifacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier artifacts: %w", err)
	}

	var artifacts ClassifierArtifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return nil, fmt.Errorf("parse classifier artifacts: %w", err)
	}

	if len(artifacts.Idf) != len(artifacts.Vocabulary) {
		return nil, fmt.Errorf("classifier artifacts: %d idf weights for %d vocabulary terms", len(artifacts.Idf), len(artifacts.Vocabulary))
	}
	for i, topic := range artifacts.Components {
		if len(topic) != len(artifacts.Vocabulary) {
			return nil, fmt.Errorf("classifier artifacts: topic %d has %d weights for %d vocabulary terms", i, len(topic), len(artifacts.Vocabulary))
		}
	}
	// The training pipeline caps the vocabulary at max_features; a larger
	// vocabulary means the artifacts are inconsistent.
	if artifacts.MaxFeatures > 0 && len(artifacts.Vocabulary) > artifacts.MaxFeatures {
		return nil, fmt.Errorf("classifier artifacts: %d vocabulary terms exceed max_features %d", len(artifacts.Vocabulary), artifacts.MaxFeatures)
	}

	return &artifacts, nil
}

// ClassifierService estimates how likely a learner is to belong to each of
// the groups represented by the dashboard's group knowledge components,
// based on the learner's answers to qualitative questions.
type ClassifierService struct {
	Artifacts *ClassifierArtifacts
	GroupKCs  []string
	ScoreRepo *repository.ScoreRepository
	KCRepo    *repository.KnowledgeComponentRepository

	stopWords map[string]struct{}
}

func NewClassifierService(
	artifacts *ClassifierArtifacts,
	groupKCs []string,
	scoreRepo *repository.ScoreRepository,
	kcRepo *repository.KnowledgeComponentRepository,
) *ClassifierService {
	stopWords := make(map[string]struct{}, len(artifacts.StopWords)+len(domainStopWords))
	for _, word := range artifacts.StopWords {
		stopWords[word] = struct{}{}
	}
	for _, word := range domainStopWords {
		stopWords[word] = struct{}{}
	}

	return &ClassifierService{
		Artifacts: artifacts,
		GroupKCs:  groupKCs,
		ScoreRepo: scoreRepo,
		KCRepo:    kcRepo,
		stopWords: stopWords,
	}
}

// cleanDocument casts the document to lowercase and removes punctuation.
func cleanDocument(document string) string {
	return nonWordPattern.ReplaceAllString(strings.ToLower(document), "")
}

// makeDocument joins the answers into a single document, cleans it,
// and stems inflected forms of "teach".
func makeDocument(answers []string) []string {
	document := cleanDocument(strings.Join(answers, " "))
	words := strings.Fields(document)
	for i, word := range words {
		if root, ok := stemTargets[word]; ok {
			words[i] = root
		}
	}
	return words
}

// vectorize builds an l2-normalized tf-idf vector for the document
// against the fixed vocabulary.
func (s *ClassifierService) vectorize(words []string) []float64 {
	counts := make([]float64, len(s.Artifacts.Vocabulary))
	for _, word := range words {
		if _, stop := s.stopWords[word]; stop {
			continue
		}
		if index, ok := s.Artifacts.Vocabulary[word]; ok {
			counts[index]++
		}
	}

	var norm float64
	for i := range counts {
		counts[i] *= s.Artifacts.Idf[i]
		norm += counts[i] * counts[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range counts {
			counts[i] /= norm
		}
	}
	return counts
}

// CalculateProbabilities returns a map from group knowledge component id to
// the probability that the learner belongs to the corresponding group,
// based on the qualitative answers provided. Only answers to questions that
// influence group membership should be passed in.
func (s *ClassifierService) CalculateProbabilities(answers []string) map[string]float64 {
	words := makeDocument(answers)
	tfidf := s.vectorize(words)

	weights := make([]float64, len(s.Artifacts.Components))
	var total float64
	for t, topic := range s.Artifacts.Components {
		var w float64
		for i, v := range tfidf {
			w += v * topic[i]
		}
		weights[t] = w
		total += w
	}

	probabilities := make(map[string]float64, len(s.GroupKCs))
	for index, kcID := range s.GroupKCs {
		if index >= len(weights) {
			break
		}
		if total > 0 {
			probabilities[kcID] = weights[index] / total
		} else {
			// Nothing in the document matched the vocabulary, so no group
			// is more likely than any other.
			probabilities[kcID] = 1.0 / float64(len(s.GroupKCs))
		}
	}
	return probabilities
}

// UpdateGroupScores recomputes group membership probabilities from answers
// and persists one score per group knowledge component of the dashboard.
// A learner's score for a group is 1 minus the probability of belonging to
// it, since lower scores mean stronger mastery for the adaptive engine.
func (s *ClassifierService) UpdateGroupScores(learnerID, dashboardID uint, answers []string) ([]model.Score, error) {
	probabilities := s.CalculateProbabilities(answers)

	scores := make([]model.Score, 0, len(probabilities))
	for _, kcID := range s.GroupKCs {
		probability, ok := probabilities[kcID]
		if !ok {
			continue
		}

		kc, err := s.KCRepo.FindByKcID(kcID, dashboardID)
		if err != nil {
			logger.Log.Error("group knowledge component not found for dashboard",
				zap.String("kc_id", kcID),
				zap.Uint("dashboard_id", dashboardID),
				zap.Error(err))
			return nil, err
		}

		score, err := s.ScoreRepo.Upsert(learnerID, kc.ID, 1.0-probability)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, nil
}
