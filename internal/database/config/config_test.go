package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		for _, key := range []string{"DB_DRIVER", "DB_HOST", "DB_NAME", "DB_SQLITE_PATH"} {
			t.Setenv(key, "")
		}

		cfg := LoadConfigFromEnv()
		assert.Equal(t, DriverPostgres, cfg.Driver)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, "github_reporting", cfg.DBName)
		assert.Equal(t, "github_reporting.db", cfg.SQLitePath)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("sqlite driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DB_SQLITE_PATH", "/tmp/reporting.db")

		cfg := LoadConfigFromEnv()
		assert.Equal(t, DriverSQLite, cfg.Driver)
		assert.Equal(t, "/tmp/reporting.db", BuildDSN(cfg))
	})
}

func TestBuildDSN(t *testing.T) {
	cfg := Config{
		Driver:   DriverPostgres,
		Host:     "db",
		User:     "u",
		Password: "p",
		DBName:   "n",
		Port:     "5432",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", BuildDSN(cfg))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{name: "postgres", config: Config{Driver: DriverPostgres, Host: "h", DBName: "d"}},
		{name: "postgres missing host", config: Config{Driver: DriverPostgres, DBName: "d"}, wantError: true},
		{name: "sqlite", config: Config{Driver: DriverSQLite, SQLitePath: ":memory:"}},
		{name: "sqlite missing path", config: Config{Driver: DriverSQLite}, wantError: true},
		{name: "unknown driver", config: Config{Driver: "mysql"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	cfg := Config{Password: "s3cret"}

	assert.NoError(t, SanitizeError(nil, cfg))

	err := SanitizeError(errors.New("auth failed for password=s3cret"), cfg)
	assert.NotContains(t, err.Error(), "s3cret")
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestLoadRetryConfigFromEnv(t *testing.T) {
	t.Setenv("DB_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("DB_RETRY_INITIAL_DELAY", "2s")
	t.Setenv("DB_RETRY_MAX_DELAY", "")
	t.Setenv("DB_RETRY_MULTIPLIER", "bogus")

	cfg := LoadRetryConfigFromEnv()
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.NotEmpty(t, cfg.RetryableErrors)
}
