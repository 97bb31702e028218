package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Scan:   ScanConfig{TriggerRPS: 1, TriggerBurst: 2},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validTestConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}

	cfg := validTestConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validTestConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadScanRate(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scan.TriggerRPS = 0
	assert.Error(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := validTestConfig()
	assert.Equal(t, filepath.Join("/some/path", "folio.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/some/path", "search"), cfg.SearchPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/audiobooks", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "audiobooks"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/already/abs/../abs", "")
	require.NoError(t, err)
	assert.Equal(t, "/already/abs", got)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nFOLIO_TEST_KEY=hello\nFOLIO_TEST_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("FOLIO_TEST_KEY")
		os.Unsetenv("FOLIO_TEST_QUOTED")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("FOLIO_TEST_KEY"))
	assert.Equal(t, "world", os.Getenv("FOLIO_TEST_QUOTED"))
}
