package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// DefaultEnvFile is read when no explicit env file is given and it exists
const DefaultEnvFile = ".env"

// LoadCredentials collects one key per provider from the environment, falling back to
// values in envFile. Process environment wins, as with godotenv.Load.
func LoadCredentials(registry *provider.Registry, envFile string) (*domain.Credentials, error) {
	fileValues := map[string]string{}

	path := envFile
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			path = DefaultEnvFile
		}
	}
	if path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		fileValues = values
	}

	keys := make(map[string]string)
	for _, p := range registry.Providers() {
		if p.EnvVar == "" {
			continue
		}
		value := strings.TrimSpace(os.Getenv(p.EnvVar))
		if value == "" {
			value = strings.TrimSpace(fileValues[p.EnvVar])
		}
		if value != "" {
			keys[p.ID] = value
		}
	}

	return domain.NewCredentials(keys), nil
}
