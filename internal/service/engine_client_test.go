package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lpd_backend/internal/model"
	"lpd_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLearnerData(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewEngineClient(server.URL, "engine-token", "example.edu")
	learner := &model.User{
		Username: util.CompressUsername("3fa85f6457174562b3fc2c963f66afa6"),
	}
	learner.ID = 7
	scores := []model.Score{
		{
			Value:              0.25,
			KnowledgeComponent: model.KnowledgeComponent{KcID: "kc_motivation"},
		},
		{
			Value:              0.8,
			KnowledgeComponent: model.KnowledgeComponent{KcID: "kc_group_1"},
		},
	}

	err := client.SendLearnerData(context.Background(), learner, scores)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/engine/api/mastery/bulk_update", gotPath)
	assert.Equal(t, "Token engine-token", gotAuth)

	var payload []map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Len(t, payload, 2)

	first := payload[0]
	assert.Equal(t, map[string]interface{}{"kc_id": "kc_motivation"}, first["knowledge_component"])
	assert.Equal(t, 0.25, first["value"])

	// The engine receives the original LTI user id, not the compressed
	// local username.
	learnerInfo, ok := first["learner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "3fa85f6457174562b3fc2c963f66afa6", learnerInfo["user_id"])
	assert.Equal(t, "example.edu", learnerInfo["tool_consumer_instance_guid"])
}

func TestSendLearnerDataEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEngineClient(server.URL, "engine-token", "example.edu")
	learner := &model.User{Username: "learner1"}

	err := client.SendLearnerData(context.Background(), learner, []model.Score{
		{Value: 0.5, KnowledgeComponent: model.KnowledgeComponent{KcID: "kc_x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSendLearnerDataUnreachableEngine(t *testing.T) {
	client := NewEngineClient("http://127.0.0.1:1", "engine-token", "example.edu")
	learner := &model.User{Username: "learner1"}

	err := client.SendLearnerData(context.Background(), learner, []model.Score{
		{Value: 0.5, KnowledgeComponent: model.KnowledgeComponent{KcID: "kc_x"}},
	})
	require.Error(t, err)
}
