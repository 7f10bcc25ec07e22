// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOCK_TTL", "10s")
	t.Setenv("STALE_PAUSE_AFTER", "2h")
	t.Setenv("AUTO_COMPLETE_EMPTY", "false")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("unexpected redis config: %s db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.LockTTL != 10*time.Second {
		t.Errorf("expected lock ttl 10s, got %v", cfg.LockTTL)
	}
	if cfg.StalePauseAfter != 2*time.Hour {
		t.Errorf("expected stale pause 2h, got %v", cfg.StalePauseAfter)
	}
	if cfg.AutoCompleteEmpty {
		t.Error("AUTO_COMPLETE_EMPTY=false should disable auto completion")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTO_COMPLETE_EMPTY", "false")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--auto-complete-empty=true", "--lock-ttl", "1m"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if !cfg.AutoCompleteEmpty {
		t.Error("CLI flag should override AUTO_COMPLETE_EMPTY")
	}
	if cfg.LockTTL != time.Minute {
		t.Errorf("expected lock ttl 1m, got %v", cfg.LockTTL)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("METRICS_SCHEDULE", "")
	t.Setenv("AUTO_COMPLETE_EMPTY", "")

	cfg, err := ParseFlags([]string{"-d", "file:test.db"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.MetricsSchedule != "@every 1m" {
		t.Errorf("unexpected default schedule %q", cfg.MetricsSchedule)
	}
	if !cfg.AutoCompleteEmpty {
		t.Error("auto completion should default to on")
	}
}

func TestParseFlags_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error without database URL")
	}
}

func TestParseFlags_InvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("LOCK_TTL", "soon")

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error for invalid LOCK_TTL")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=file:from-dotenv.db\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "7100")
	os.Unsetenv("DATABASE_URL")

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseURL != "file:from-dotenv.db" {
		t.Errorf("expected DATABASE_URL from env file, got %q", cfg.DatabaseURL)
	}
	// Variables already set win over the file.
	if cfg.Port != 7100 {
		t.Errorf("expected existing PORT to win, got %d", cfg.Port)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}
