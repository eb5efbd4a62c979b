package infra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/store"
)

// Format is a scenario file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported scenario file extension: %q (use .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// DefaultExportFilename returns prompt-scenarios-YYYY-MM-DD.json for the given day
func DefaultExportFilename(now time.Time) string {
	return fmt.Sprintf("prompt-scenarios-%s.json", now.Format("2006-01-02"))
}

// ToRecords strips run state from scenarios
func ToRecords(scenarios []domain.Scenario) []ScenarioRecord {
	records := make([]ScenarioRecord, 0, len(scenarios))
	for _, sc := range scenarios {
		temperature := sc.Temperature
		records = append(records, ScenarioRecord{
			ID:          RecordID(sc.ID),
			Description: sc.Description,
			Model:       sc.Model,
			Temperature: &temperature,
			Messages:    message.Clone(sc.Messages),
		})
	}
	return records
}

// FromRecords builds idle scenarios, assigning fresh ids where missing and filling defaults
func FromRecords(records []ScenarioRecord, defaults store.Defaults) []domain.Scenario {
	scenarios := make([]domain.Scenario, 0, len(records))
	for i, rec := range records {
		id := strings.TrimSpace(string(rec.ID))
		if id == "" {
			id = uuid.NewString()
		}
		description := rec.Description
		if strings.TrimSpace(description) == "" {
			description = fmt.Sprintf("Scenario %d", i+1)
		}

		sc := domain.NewScenario(id, description)
		sc.Model = rec.Model
		if sc.Model == "" {
			sc.Model = defaults.Model
		}
		if sc.Model == "" {
			sc.Model = domain.DefaultModel
		}
		sc.Temperature = defaults.Temperature
		if rec.Temperature != nil {
			sc.Temperature = store.ClampTemperature(*rec.Temperature)
		}
		if len(rec.Messages) > 0 {
			sc.Messages = make([]message.Message, 0, len(rec.Messages))
			for _, m := range rec.Messages {
				if m.Role == "" {
					m.Role = message.RoleUser
				}
				sc.Messages = append(sc.Messages, m)
			}
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios
}

// EncodeScenarios writes the scenarios without run state
func EncodeScenarios(w io.Writer, format Format, scenarios []domain.Scenario) error {
	records := ToRecords(scenarios)
	doc := ScenarioFile{Scenarios: &records}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// DecodeScenarios parses a scenario document. Documents without a scenarios array are rejected.
func DecodeScenarios(r io.Reader, format Format, defaults store.Defaults) ([]domain.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var doc ScenarioFile
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if doc.Scenarios == nil {
		return nil, fmt.Errorf("failed to parse scenario file: missing scenarios array")
	}

	return FromRecords(*doc.Scenarios, defaults), nil
}

// ExportFile writes scenarios to path, choosing the encoding by extension
func ExportFile(path string, scenarios []domain.Scenario) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeScenarios(&buf, format, scenarios); err != nil {
		return fmt.Errorf("failed to encode scenarios: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}
	return nil
}

// ImportFile reads scenarios from path, choosing the encoding by extension
func ImportFile(path string, defaults store.Defaults) ([]domain.Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()

	return DecodeScenarios(f, format, defaults)
}
