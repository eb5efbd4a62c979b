package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

func TestLoadSettings_CreatesDefaultsAtPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Defaults.Model != domain.DefaultModel {
		t.Errorf("Model = %q", settings.Defaults.Model)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to be created: %v", err)
	}
}

func TestLoadSettings_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"defaults":{"model":"gpt-5"},"providers":{"claude":{"max_tokens":2048}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Defaults.Model != "gpt-5" {
		t.Errorf("Model = %q", settings.Defaults.Model)
	}
	if settings.DefaultTemperature() != domain.DefaultTemperature {
		t.Errorf("DefaultTemperature = %v", settings.DefaultTemperature())
	}
	if settings.Pricing.FallbackModel != "gpt-4o-mini" {
		t.Errorf("FallbackModel = %q", settings.Pricing.FallbackModel)
	}
	if settings.App.LogLevel != "info" {
		t.Errorf("LogLevel = %q", settings.App.LogLevel)
	}
	if cfg := settings.ClientConfigs()[provider.Claude]; cfg.MaxOutputTokens() != 2048 {
		t.Errorf("Claude MaxOutputTokens = %d", cfg.MaxOutputTokens())
	}
}

func TestLoadSettings_ExplicitZeroTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"defaults":{"temperature":0}}`), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.DefaultTemperature() != 0 {
		t.Errorf("explicit zero temperature must be kept, got %v", settings.DefaultTemperature())
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	settings := GetDefaultSettings()
	settings.Providers[provider.OpenAI] = ProviderSettings{BaseURL: "http://localhost:8080/v1"}
	settings.App.ExportDir = "exports"

	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded.Providers[provider.OpenAI].BaseURL != "http://localhost:8080/v1" || loaded.App.ExportDir != "exports" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidateSettings(t *testing.T) {
	reg := provider.Default()
	hot := 3.0

	testCases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"unknown model", func(s *Settings) { s.Defaults.Model = "mystery" }, true},
		{"temperature out of range", func(s *Settings) { s.Defaults.Temperature = &hot }, true},
		{"unknown provider", func(s *Settings) { s.Providers["ollama"] = ProviderSettings{} }, true},
		{"negative max tokens", func(s *Settings) { s.Providers[provider.Gemini] = ProviderSettings{MaxTokens: -1} }, true},
		{"fallback without pricing", func(s *Settings) { s.Pricing.FallbackModel = "mystery" }, true},
		{"fallback gpt-5", func(s *Settings) { s.Pricing.FallbackModel = "gpt-5" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := GetDefaultSettings()
			tc.mutate(s)
			err := ValidateSettings(s, reg)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateSettings error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
