package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifacts() *ClassifierArtifacts {
	// Two topics over a four-term vocabulary. The first topic loads on
	// "teach" and "mentor", the second on "research" and "data".
	return &ClassifierArtifacts{
		Vocabulary: map[string]int{
			"teach":    0,
			"mentor":   1,
			"research": 2,
			"data":     3,
		},
		Idf:       []float64{1, 1, 1, 1},
		StopWords: []string{"the", "and", "i"},
		Components: [][]float64{
			{0.9, 0.8, 0.1, 0.1},
			{0.1, 0.1, 0.9, 0.8},
		},
		MaxFeatures: 4,
	}
}

func testClassifier(t *testing.T) *ClassifierService {
	t.Helper()
	return NewClassifierService(testArtifacts(), []string{"kc_group_1", "kc_group_2"}, nil, nil)
}

func TestCleanDocument(t *testing.T) {
	assert.Equal(t, "i love teaching its great", cleanDocument("I love teaching, it's GREAT!"))

	// Letters outside ASCII survive cleaning; only punctuation goes.
	assert.Equal(t, "café für niños", cleanDocument("Café, für niños!"))
}

func TestMakeDocumentStemsTeachForms(t *testing.T) {
	words := makeDocument([]string{"Teachers teaching", "a teacher taught"})
	assert.Equal(t, []string{"teach", "teach", "a", "teach", "taught"}, words)
}

func TestCalculateProbabilitiesIsDeterministic(t *testing.T) {
	classifier := testClassifier(t)
	answers := []string{"I enjoy teaching and mentoring", "mentor students every day"}

	first := classifier.CalculateProbabilities(answers)
	second := classifier.CalculateProbabilities(answers)
	assert.Equal(t, first, second)
}

func TestCalculateProbabilitiesFavorsMatchingTopic(t *testing.T) {
	classifier := testClassifier(t)

	probabilities := classifier.CalculateProbabilities([]string{"teach mentor teach"})
	require.Len(t, probabilities, 2)
	assert.Greater(t, probabilities["kc_group_1"], probabilities["kc_group_2"])

	total := probabilities["kc_group_1"] + probabilities["kc_group_2"]
	assert.InDelta(t, 1.0, total, 1e-9)

	probabilities = classifier.CalculateProbabilities([]string{"research data analysis"})
	assert.Greater(t, probabilities["kc_group_2"], probabilities["kc_group_1"])
}

func TestCalculateProbabilitiesIgnoresStopWords(t *testing.T) {
	classifier := testClassifier(t)

	// Artifact stop words and domain stop words both drop out, so a
	// document of nothing but stop words matches no vocabulary term and
	// yields the uniform distribution.
	probabilities := classifier.CalculateProbabilities([]string{"the and i learning school students"})
	assert.InDelta(t, 0.5, probabilities["kc_group_1"], 1e-9)
	assert.InDelta(t, 0.5, probabilities["kc_group_2"], 1e-9)
}

func TestCalculateProbabilitiesEmptyAnswers(t *testing.T) {
	classifier := testClassifier(t)

	probabilities := classifier.CalculateProbabilities(nil)
	require.Len(t, probabilities, 2)
	assert.InDelta(t, 0.5, probabilities["kc_group_1"], 1e-9)
}

func TestLoadClassifierArtifacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.json")
	data := `{
		"vocabulary": {"teach": 0, "research": 1},
		"idf": [1.2, 1.0],
		"stop_words": ["the"],
		"components": [[0.9, 0.1], [0.1, 0.9]],
		"max_features": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	artifacts, err := LoadClassifierArtifacts(path)
	require.NoError(t, err)
	assert.Len(t, artifacts.Vocabulary, 2)
	assert.Len(t, artifacts.Components, 2)
}

func TestLoadClassifierArtifactsRejectsMismatchedShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.json")
	data := `{
		"vocabulary": {"teach": 0, "research": 1},
		"idf": [1.2],
		"stop_words": [],
		"components": [[0.9, 0.1]],
		"max_features": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadClassifierArtifacts(path)
	require.Error(t, err)
}

func TestLoadClassifierArtifactsRejectsOversizedVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.json")
	data := `{
		"vocabulary": {"teach": 0, "research": 1, "data": 2},
		"idf": [1.2, 1.0, 1.1],
		"stop_words": [],
		"components": [[0.9, 0.1, 0.2]],
		"max_features": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadClassifierArtifacts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_features")
}

func TestLoadClassifierArtifactsMissingFile(t *testing.T) {
	_, err := LoadClassifierArtifacts(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
