package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CombinedSheet describes one populated sheet of a combined workbook.
type CombinedSheet struct {
	Name       string     `json:"name"`
	ReportType ReportType `json:"report_type"`
	Files      int        `json:"files"`
	Separators int        `json:"separators"`
	DataRows   int        `json:"data_rows"`
}

// CombinedWorkbook is the artifact produced by a successful combine.
type CombinedWorkbook struct {
	Path        string          `json:"path"`
	Filename    string          `json:"filename"`
	Sheets      []CombinedSheet `json:"sheets"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// RunTrigger identifies what started a job run.
type RunTrigger string

const (
	RunTriggerManual    RunTrigger = "manual"
	RunTriggerScheduled RunTrigger = "scheduled"
	RunTriggerCombine   RunTrigger = "combine"
)

// RunStatus captures job lifecycle states.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "QUEUED"
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusEmpty    RunStatus = "EMPTY"
	RunStatusFailed   RunStatus = "FAILED"
)

// CombineRun is the persisted record of one scrape and combine run.
type CombineRun struct {
	ID           string      `db:"id" json:"id"`
	Trigger      RunTrigger  `db:"run_trigger" json:"trigger"`
	Status       RunStatus   `db:"status" json:"status"`
	OutputFile   *string     `db:"output_file" json:"output_file,omitempty"`
	Sheets       SheetLedger `db:"sheets" json:"sheets"`
	StartedAt    time.Time   `db:"started_at" json:"started_at"`
	FinishedAt   *time.Time  `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string     `db:"error_message" json:"error_message,omitempty"`
}

// SheetLedger stores combined sheet metadata as JSONB.
type SheetLedger []CombinedSheet

// Value marshals the ledger for persistence.
func (l SheetLedger) Value() (driver.Value, error) {
	if l == nil {
		l = SheetLedger{}
	}
	data, err := json.Marshal([]CombinedSheet(l))
	if err != nil {
		return nil, fmt.Errorf("marshal sheet ledger: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the ledger.
func (l *SheetLedger) Scan(value interface{}) error {
	if value == nil {
		*l = SheetLedger{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SheetLedger", value)
	}
	if len(data) == 0 {
		*l = SheetLedger{}
		return nil
	}
	var sheets []CombinedSheet
	if err := json.Unmarshal(data, &sheets); err != nil {
		return fmt.Errorf("unmarshal sheet ledger: %w", err)
	}
	*l = sheets
	return nil
}

// JobStatus reports the busy flag and most recent run.
type JobStatus struct {
	Running bool        `json:"running"`
	Current *CombineRun `json:"current,omitempty"`
	LastRun *CombineRun `json:"last_run,omitempty"`
}

// RunFilter narrows run history listings.
type RunFilter struct {
	Status   RunStatus
	Page     int
	PageSize int
}
