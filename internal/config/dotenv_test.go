package config

import (
	"os"
	"testing"
)

func TestLoadDotenvSetsMissingVars(t *testing.T) {
	os.Unsetenv("SDR_DOTENV_A")
	t.Setenv("SDR_DOTENV_B", "already-set")

	path := writeFile(t, t.TempDir(), ".env", `
# comment
SDR_DOTENV_A="value a"
export SDR_DOTENV_B=from-file
not-a-pair
`)

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SDR_DOTENV_A") })

	if got := os.Getenv("SDR_DOTENV_A"); got != "value a" {
		t.Errorf("SDR_DOTENV_A = %q, want %q", got, "value a")
	}
	if got := os.Getenv("SDR_DOTENV_B"); got != "already-set" {
		t.Errorf("SDR_DOTENV_B = %q, existing env must not be overridden", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv("/nonexistent/.env"); err != nil {
		t.Fatalf("LoadDotenv on missing file: %v", err)
	}
}
