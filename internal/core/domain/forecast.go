package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RiskLevel is the severity the automation engine assigns to a forecast.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ParseRiskLevel validates s against the allowed risk levels.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(s), nil
	}
	return "", NewValidationError("risk_level", "must be one of: low, medium, high, critical")
}

// Forecast is a risk prediction for one task, written by the automation engine.
type Forecast struct {
	ID                 int64     `json:"id" db:"id"`
	TaskID             int64     `json:"task_id" db:"task_id"`
	TaskName           string    `json:"task_name" db:"task_name"`
	RiskLevel          RiskLevel `json:"risk_level" db:"risk_level"`
	RiskPercentage     float64   `json:"risk_percentage" db:"risk_percentage"`
	PredictedDelayDays int       `json:"predicted_delay_days" db:"predicted_delay_days"`
	Analysis           string    `json:"analysis" db:"analysis"`
	Recommendations    *string   `json:"recommendations" db:"recommendations"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Simulation is a what-if scenario result attached to a project.
type Simulation struct {
	ID              int64     `json:"id" db:"id"`
	ProjectID       int64     `json:"project_id" db:"project_id"`
	Scenario        string    `json:"scenario" db:"scenario"`
	AffectedTaskIDs IDList    `json:"affected_task_ids" db:"affected_task_ids"`
	TotalDelayDays  int       `json:"total_delay_days" db:"total_delay_days"`
	Analysis        string    `json:"analysis" db:"analysis"`
	Recommendations *string   `json:"recommendations" db:"recommendations"`
	SimulatedAt     time.Time `json:"simulated_at" db:"simulated_at"`
}

// IDList is a list of ids persisted as a JSON array column.
type IDList []int64

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int64(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = IDList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("id list: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("id list: %w", err)
	}
	*l = ids
	return nil
}
