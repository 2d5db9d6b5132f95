package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

const automationLogsCollection = "automation_logs"

// AutomationLogRepository appends outbound notification attempts to the
// automation_logs collection.
type AutomationLogRepository struct {
	coll *mongo.Collection
}

func NewAutomationLogRepository(db *mongo.Database) *AutomationLogRepository {
	return &AutomationLogRepository{coll: db.Collection(automationLogsCollection)}
}

func (r *AutomationLogRepository) Insert(ctx context.Context, entry *domain.AutomationLog) error {
	if _, err := r.coll.InsertOne(ctx, automationLogDocument(entry)); err != nil {
		return fmt.Errorf("insert automation log: %w", err)
	}
	return nil
}

func automationLogDocument(entry *domain.AutomationLog) bson.M {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	doc := bson.M{
		"event_id":          entry.EventID,
		"workflow_name":     entry.WorkflowName,
		"status":            string(entry.Status),
		"input_data":        entry.InputData,
		"execution_time_ms": entry.ExecutionTimeMs,
		"created_at":        createdAt.UTC(),
	}
	if entry.OutputData != nil {
		doc["output_data"] = entry.OutputData
	}
	if entry.ErrorMessage != "" {
		doc["error_message"] = entry.ErrorMessage
	}
	return doc
}
