package scenarios

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fpt/go-promptlab/pkg/message"
)

//go:embed *.yaml
var embeddedFiles embed.FS

// ScenarioConfig represents a starter scenario from YAML
type ScenarioConfig struct {
	Name        string            `yaml:"-"` // Set during loading
	Description string            `yaml:"description"`
	Model       string            `yaml:"model"`
	Temperature *float64          `yaml:"temperature"`
	Messages    []message.Message `yaml:"messages"`
}

// LoadBuiltinScenarios loads built-in starter scenarios from embedded files, ordered by name
func LoadBuiltinScenarios() ([]ScenarioConfig, error) {
	byName := make(map[string]ScenarioConfig)

	entries, err := embeddedFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded scenarios: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !isYAMLFile(name) {
			continue
		}

		data, err := embeddedFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded scenario file %s: %w", name, err)
		}

		var fileScenarios map[string]ScenarioConfig
		if err := yaml.Unmarshal(data, &fileScenarios); err != nil {
			return nil, fmt.Errorf("failed to parse embedded scenario file %s: %w", name, err)
		}

		for scenarioName, scenarioConfig := range fileScenarios {
			scenarioConfig.Name = scenarioName
			byName[scenarioName] = scenarioConfig
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ScenarioConfig, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}

func isYAMLFile(name string) bool {
	return len(name) > 5 && (name[len(name)-5:] == ".yaml" || (len(name) > 4 && name[len(name)-4:] == ".yml"))
}
