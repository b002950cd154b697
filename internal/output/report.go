// Package output renders collector results. A Report stamps one run's
// tables with a run ID and collection time; formatters render it for the
// console and the SQLite writer exports it cell by cell.
package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitalis-app/hostenum/internal/models"
)

// Report is the result of one run, ready to be rendered, archived or
// uploaded.
type Report struct {
	RunID       string         `json:"run_id"`
	Command     string         `json:"command"`
	Computer    string         `json:"computer"`
	CollectedAt time.Time      `json:"collected_at"`
	Tables      []models.Table `json:"tables"`
}

// NewReport wraps the tables of res. An empty computer name means the
// local machine.
func NewReport(command, computer string, res models.Result) Report {
	tables := res.Tables()
	if tables == nil {
		tables = []models.Table{}
	}
	return Report{
		RunID:       uuid.NewString(),
		Command:     command,
		Computer:    computer,
		CollectedAt: time.Now().UTC(),
		Tables:      tables,
	}
}

// Marshal encodes the report as JSON.
func (r Report) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report %s: %w", r.RunID, err)
	}
	return data, nil
}
