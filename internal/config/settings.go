package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpt/go-promptlab/pkg/domain"
	pkgLogger "github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// Directory name holding settings.json, both in the working directory and in $HOME
const settingsDirName = ".promptlab"

// Settings represents the main application settings
type Settings struct {
	Defaults  DefaultsSettings            `json:"defaults"`
	Providers map[string]ProviderSettings `json:"providers,omitempty"`
	Pricing   PricingSettings             `json:"pricing"`
	App       AppSettings                 `json:"app"`
}

// DefaultsSettings configures newly created scenarios
type DefaultsSettings struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ProviderSettings contains per-provider transport configuration
type ProviderSettings struct {
	BaseURL   string `json:"base_url,omitempty"`   // proxy or compatible endpoint
	MaxTokens int    `json:"max_tokens,omitempty"` // output cap for Claude and Gemini (0 = 4096)
}

// PricingSettings configures cost accounting
type PricingSettings struct {
	FallbackModel string `json:"fallback_model"` // pricing used for unlisted models
}

// AppSettings contains REPL behavior configuration
type AppSettings struct {
	LogLevel  string `json:"log_level"`
	ExportDir string `json:"export_dir,omitempty"`
}

// DefaultTemperature returns the configured default temperature
func (s *Settings) DefaultTemperature() float64 {
	if s.Defaults.Temperature == nil {
		return domain.DefaultTemperature
	}
	return *s.Defaults.Temperature
}

// ClientConfigs converts provider settings into client configuration
func (s *Settings) ClientConfigs() map[string]domain.ClientConfig {
	out := make(map[string]domain.ClientConfig, len(s.Providers))
	for id, p := range s.Providers {
		out[id] = domain.ClientConfig{BaseURL: p.BaseURL, MaxTokens: p.MaxTokens}
	}
	return out
}

// LoadSettings loads application settings from a JSON file
func LoadSettings(configPath string) (*Settings, error) {
	// If config path is empty, search in order of preference
	if configPath == "" {
		configPath = findSettingsFile()
		if configPath == "" {
			// No settings file found, create default one and return defaults
			return createDefaultSettingsFile()
		}
	}

	// Check if specified file exists, create defaults if not
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		settings, _ := createSettingsFileAtPath(configPath)
		return settings, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Apply defaults for missing fields
	applyDefaults(&settings)

	return &settings, nil
}

// SaveSettings saves application settings to a JSON file
func SaveSettings(configPath string, settings *Settings) error {
	if configPath == "" {
		// Try to find existing settings file first
		configPath = findSettingsFile()
		if configPath == "" {
			configPath = filepath.Join(settingsDirName, "settings.json")
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	temperature := domain.DefaultTemperature
	return &Settings{
		Defaults: DefaultsSettings{
			Model:       domain.DefaultModel,
			Temperature: &temperature,
		},
		Providers: map[string]ProviderSettings{},
		Pricing: PricingSettings{
			FallbackModel: pricing.DefaultFallbackModel,
		},
		App: AppSettings{
			LogLevel: string(pkgLogger.LogLevelInfo),
		},
	}
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	if settings.Defaults.Model == "" {
		settings.Defaults.Model = defaults.Defaults.Model
	}
	if settings.Defaults.Temperature == nil {
		settings.Defaults.Temperature = defaults.Defaults.Temperature
	}
	if settings.Providers == nil {
		settings.Providers = defaults.Providers
	}
	if settings.Pricing.FallbackModel == "" {
		settings.Pricing.FallbackModel = defaults.Pricing.FallbackModel
	}
	if settings.App.LogLevel == "" {
		settings.App.LogLevel = defaults.App.LogLevel
	}
}

// ValidateSettings validates the settings configuration against the provider registry
func ValidateSettings(settings *Settings, registry *provider.Registry) error {
	if _, ok := registry.ResolveProviderForModel(settings.Defaults.Model); !ok {
		return fmt.Errorf("unsupported default model: %s", settings.Defaults.Model)
	}

	if t := settings.DefaultTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("default temperature must be between 0 and 2, got %v", t)
	}

	for id, p := range settings.Providers {
		if _, ok := registry.Provider(id); !ok {
			return fmt.Errorf("unknown provider in settings: %s", id)
		}
		if p.MaxTokens < 0 {
			return fmt.Errorf("max_tokens for %s must not be negative", id)
		}
	}

	if _, ok := pricing.DefaultTable()[settings.Pricing.FallbackModel]; !ok {
		return fmt.Errorf("pricing fallback model %s has no pricing entry", settings.Pricing.FallbackModel)
	}

	return nil
}

// findSettingsFile searches for settings.json in order of preference:
// 1. .promptlab/settings.json in current directory
// 2. $HOME/.promptlab/settings.json
// Returns empty string if none found
func findSettingsFile() string {
	currentDirPath := filepath.Join(settingsDirName, "settings.json")
	if _, err := os.Stat(currentDirPath); err == nil {
		return currentDirPath
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		homeDirPath := filepath.Join(homeDir, settingsDirName, "settings.json")
		if _, err := os.Stat(homeDirPath); err == nil {
			return homeDirPath
		}
	}

	return ""
}

// createDefaultSettingsFile creates a default settings.json file in ~/.promptlab/
func createDefaultSettingsFile() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return GetDefaultSettings(), nil // Fall back to defaults without file creation
	}

	settingsPath := filepath.Join(homeDir, settingsDirName, "settings.json")
	return createSettingsFileAtPath(settingsPath)
}

// createSettingsFileAtPath creates a default settings file at the specified path
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	settings := GetDefaultSettings()

	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return settings, nil // Return defaults if directory creation fails
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return settings, nil
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return settings, nil
	}

	log := pkgLogger.NewComponentLogger("settings")
	log.InfoWithIcon("⚙️", "Created default settings file", "path", settingsPath)
	log.InfoWithIcon("📝", "You can edit this file to customize your configuration")

	return settings, nil
}
