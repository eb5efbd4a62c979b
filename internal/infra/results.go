package infra

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fpt/go-promptlab/pkg/domain"
)

// ResultsReport is the batch-mode output: one entry per scenario plus the session total
type ResultsReport struct {
	Results      []ResultRecord `json:"results"`
	SessionTotal float64        `json:"session_total"`
}

// ResultRecord captures the outcome of one run
type ResultRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Model       string          `json:"model"`
	State       domain.RunState `json:"state"`
	Content     string          `json:"content,omitempty"`
	Error       string          `json:"error,omitempty"`
	LatencyMS   int64           `json:"latency_ms"`
	Cost        *domain.Cost    `json:"cost,omitempty"`
}

// NewResultsReport snapshots the run state of scenarios
func NewResultsReport(scenarios []domain.Scenario, sessionTotal float64) ResultsReport {
	report := ResultsReport{Results: make([]ResultRecord, 0, len(scenarios)), SessionTotal: sessionTotal}
	for _, sc := range scenarios {
		rec := ResultRecord{
			ID:          sc.ID,
			Description: sc.Description,
			Model:       sc.Model,
			State:       sc.State,
			Error:       sc.Error,
			LatencyMS:   sc.Latency.Milliseconds(),
			Cost:        sc.Cost,
		}
		if sc.Result != nil {
			rec.Content = sc.Result.Content
		}
		report.Results = append(report.Results, rec)
	}
	return report
}

// WriteResultsFile writes the report as indented JSON
func WriteResultsFile(path string, report ResultsReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
