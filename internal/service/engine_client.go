package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lpd_backend/internal/model"
	"lpd_backend/internal/util"
	"lpd_backend/pkg/logger"
	"lpd_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const masteryBulkUpdatePath = "/engine/api/mastery/bulk_update"

// EngineClient transmits learner mastery data to an instance of the
// adaptive engine. A single PUT carries all scores affected by a
// submission; the engine treats the payload as an upsert.
type EngineClient struct {
	BaseURL        string
	Token          string
	InstanceDomain string
	HTTPClient     *http.Client
}

func NewEngineClient(baseURL, token, instanceDomain string) *EngineClient {
	return &EngineClient{
		BaseURL:        baseURL,
		Token:          token,
		InstanceDomain: instanceDomain,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type engineKnowledgeComponent struct {
	KcID string `json:"kc_id"`
}

type engineLearner struct {
	UserID                   string `json:"user_id"`
	ToolConsumerInstanceGUID string `json:"tool_consumer_instance_guid"`
}

type engineMasteryRecord struct {
	KnowledgeComponent engineKnowledgeComponent `json:"knowledge_component"`
	Learner            engineLearner            `json:"learner"`
	Value              float64                  `json:"value"`
}

// SendLearnerData sends up-to-date scores for learner to the adaptive
// engine. The learner is identified to the engine by their external LTI
// user id, recovered from the compressed local username. One attempt is
// made; callers decide how to react to a failed transmission.
func (c *EngineClient) SendLearnerData(ctx context.Context, learner *model.User, scores []model.Score) error {
	learnerInfo := engineLearner{
		UserID:                   util.DecompressUsername(learner.Username),
		ToolConsumerInstanceGUID: c.InstanceDomain,
	}

	payload := make([]engineMasteryRecord, 0, len(scores))
	for _, score := range scores {
		payload = append(payload, engineMasteryRecord{
			KnowledgeComponent: engineKnowledgeComponent{KcID: score.KnowledgeComponent.KcID},
			Learner:            learnerInfo,
			Value:              score.Value,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mastery payload: %w", err)
	}

	url := c.BaseURL + masteryBulkUpdatePath
	logger.Log.Info("transmitting learner data to adaptive engine",
		zap.String("url", url),
		zap.Uint("learner_id", learner.ID),
		zap.Int("knowledge_components", len(payload)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mastery request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		monitoring.EngineRequestCounter.WithLabelValues("error").Inc()
		return fmt.Errorf("transmit learner data: %w", err)
	}
	defer resp.Body.Close()

	monitoring.EngineRequestCounter.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("adaptive engine returned status %d", resp.StatusCode)
	}
	return nil
}
