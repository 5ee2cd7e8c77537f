package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Enabled {
		t.Error("enabled should default to false")
	}
	if cfg.MaxStopAttempts != 5 {
		t.Errorf("max_stop_attempts = %d, want 5", cfg.MaxStopAttempts)
	}
	if cfg.MatchThreshold != 0.3 {
		t.Errorf("match_threshold = %f, want 0.3", cfg.MatchThreshold)
	}
	if cfg.ArchiveKeep != 50 || cfg.HistoryKeep != 100 || cfg.StaleSessionDays != 7 {
		t.Errorf("unexpected retention defaults: %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
enabled: true
max_stop_attempts: 3
match_threshold: 0.5
auto_validate: true
validation_commands:
  - name: typecheck
    command: npx tsc --noEmit
    timeout: 120
    required: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Enabled || !cfg.AutoValidate {
		t.Errorf("flags not loaded: %+v", cfg)
	}
	if cfg.MaxStopAttempts != 3 || cfg.MatchThreshold != 0.5 {
		t.Errorf("values not loaded: %+v", cfg)
	}
	if len(cfg.ValidationCommands) != 1 {
		t.Fatalf("got %d validation commands, want 1", len(cfg.ValidationCommands))
	}
	vc := cfg.ValidationCommands[0]
	if vc.Name != "typecheck" || vc.Timeout != 120 || !vc.Required {
		t.Errorf("unexpected validation command: %+v", vc)
	}
	// Unset fields still get defaults.
	if cfg.ArchiveKeep != 50 {
		t.Errorf("archive_keep default not applied: %d", cfg.ArchiveKeep)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("enabled: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PLANGATE_ENABLED", "true")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Enabled {
		t.Error("PLANGATE_ENABLED=true should enable")
	}
}

func TestDataDirEnv(t *testing.T) {
	t.Setenv("PLANGATE_DIR", "/tmp/custom-plangate")
	if got := DataDir(); got != "/tmp/custom-plangate" {
		t.Errorf("DataDir() = %q, want env override", got)
	}
}
