package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

func TestAutomationLogDocument_Success(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CST", -6*3600))
	doc := automationLogDocument(&domain.AutomationLog{
		EventID:         "evt-1",
		WorkflowName:    domain.WorkflowTaskCompleted,
		Status:          domain.AutomationSuccess,
		InputData:       map[string]any{"task_id": int64(9)},
		OutputData:      map[string]any{"status_code": 200},
		ExecutionTimeMs: 35,
		CreatedAt:       at,
	})

	assert.Equal(t, "success", doc["status"])
	assert.Equal(t, "task-completed", doc["workflow_name"])
	assert.Equal(t, at.UTC(), doc["created_at"])
	assert.Equal(t, map[string]any{"status_code": 200}, doc["output_data"])
	assert.NotContains(t, doc, "error_message")
}

func TestAutomationLogDocument_Failure(t *testing.T) {
	doc := automationLogDocument(&domain.AutomationLog{
		EventID:      "evt-2",
		Status:       domain.AutomationFailed,
		ErrorMessage: "timeout",
	})

	assert.Equal(t, "timeout", doc["error_message"])
	assert.NotContains(t, doc, "output_data")
	assert.IsType(t, time.Time{}, doc["created_at"])

	_, err := bson.Marshal(doc)
	assert.NoError(t, err)
}
