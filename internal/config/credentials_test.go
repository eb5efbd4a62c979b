package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpt/go-promptlab/pkg/provider"
)

func TestLoadCredentials(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "OPENAI_API_KEY=sk-from-file\nGEMINI_API_KEY=gm-from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	creds, err := LoadCredentials(provider.Default(), envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := creds.Credential(provider.OpenAI); got != "sk-from-env" {
		t.Errorf("OpenAI = %q, environment should win", got)
	}
	if got := creds.Credential(provider.Gemini); got != "gm-from-file" {
		t.Errorf("Gemini = %q, expected value from env file", got)
	}
	if creds.Has(provider.Claude) {
		t.Error("Claude should have no credential")
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	if _, err := LoadCredentials(provider.Default(), filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Error("expected error for an explicit env file that does not exist")
	}
}
