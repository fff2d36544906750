package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/repository"
	"lpd_backend/internal/util"
)

// ExportService produces downloadable snapshots of a learner's profile,
// answers and scores included, and records each export.
type ExportService struct {
	Profile    *ProfileService
	ScoreRepo  *repository.ScoreRepository
	ExportRepo *repository.ExportRepository
	Storage    *StorageService
}

func NewExportService(
	profile *ProfileService,
	scoreRepo *repository.ScoreRepository,
	exportRepo *repository.ExportRepository,
	storage *StorageService,
) *ExportService {
	return &ExportService{
		Profile:    profile,
		ScoreRepo:  scoreRepo,
		ExportRepo: exportRepo,
		Storage:    storage,
	}
}

type profileSnapshot struct {
	ExportedAt time.Time      `json:"exportedAt"`
	LearnerID  uint           `json:"learnerId"`
	Dashboard  *DashboardView `json:"dashboard"`
	Scores     []scoreRecord  `json:"scores"`
}

type scoreRecord struct {
	KcID  string  `json:"kcId"`
	Value float64 `json:"value"`
}

// Export builds a snapshot of the learner's profile for the dashboard,
// serializes it in the requested format, uploads it, and records the
// export on behalf of the requesting user.
func (s *ExportService) Export(ctx context.Context, requestedBy *model.User, learnerID, dashboardID uint, format string) (*model.ProfileExport, error) {
	dashboard, err := s.Profile.GetDashboard(learnerID, dashboardID)
	if err != nil {
		return nil, err
	}

	scores, err := s.ScoreRepo.ListForLearner(learnerID)
	if err != nil {
		return nil, err
	}

	snapshot := &profileSnapshot{
		ExportedAt: time.Now().UTC(),
		LearnerID:  learnerID,
		Dashboard:  dashboard,
		Scores:     make([]scoreRecord, 0, len(scores)),
	}
	for _, score := range scores {
		snapshot.Scores = append(snapshot.Scores, scoreRecord{
			KcID:  score.KnowledgeComponent.KcID,
			Value: score.Value,
		})
	}

	var body []byte
	var contentType string
	switch format {
	case util.ExportFormatCSV:
		body, err = renderCSV(snapshot)
		contentType = "text/csv"
	case util.ExportFormatJSON:
		body, err = json.MarshalIndent(snapshot, "", "  ")
		contentType = "application/json"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("profile_%d_%d_%d.%s", learnerID, dashboardID, snapshot.ExportedAt.Unix(), format)
	fileURL, err := s.Storage.Upload(ctx, filename, bytes.NewReader(body), int64(len(body)), contentType)
	if err != nil {
		return nil, err
	}

	export := &model.ProfileExport{
		RequestedByID: requestedBy.ID,
		DashboardID:   dashboardID,
		Filename:      filename,
		Format:        format,
		FileURL:       fileURL,
	}
	if err := s.ExportRepo.Create(export); err != nil {
		return nil, err
	}
	return export, nil
}

// ListExports returns the exports previously requested by a user.
func (s *ExportService) ListExports(userID uint) ([]model.ProfileExport, error) {
	return s.ExportRepo.ListForUser(userID)
}

// renderCSV flattens the snapshot into one row per question answer,
// followed by one row per score.
func renderCSV(snapshot *profileSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"record_type", "section", "question_number", "question_text", "question_type", "answer", "kc_id", "score"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, section := range snapshot.Dashboard.Sections {
		for _, question := range section.Questions {
			row := []string{
				"answer",
				section.Title,
				strconv.FormatUint(uint64(question.Number), 10),
				question.QuestionText,
				question.Type,
				flattenAnswer(&question),
				"",
				"",
			}
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}

	for _, score := range snapshot.Scores {
		row := []string{"score", "", "", "", "", "", score.KcID, strconv.FormatFloat(score.Value, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flattenAnswer(question *QuestionView) string {
	if question.Answer != "" {
		return question.Answer
	}

	var parts []string
	for _, option := range question.AnswerOptions {
		if option.Value == nil || *option.Value == 0 {
			continue
		}
		part := option.OptionText
		if question.Type == model.QuestionTypeRanking || question.Type == model.QuestionTypeLikert {
			part += "=" + strconv.Itoa(*option.Value)
		}
		parts = append(parts, part)
	}

	result := ""
	for i, part := range parts {
		if i > 0 {
			result += "; "
		}
		result += part
	}
	return result
}
