package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func createTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, cfg.ConnMaxIdleTime)
}

func TestSetupConnectionPool(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError string
	}{
		{name: "default", config: DefaultPoolConfig()},
		{name: "sqlite", config: SQLitePoolConfig()},
		{name: "zero open", config: Config{MaxOpenConns: 0}, wantError: "MaxOpenConns"},
		{name: "negative idle", config: Config{MaxOpenConns: 1, MaxIdleConns: -1}, wantError: "non-negative"},
		{name: "idle above open", config: Config{MaxOpenConns: 1, MaxIdleConns: 2}, wantError: "cannot be greater"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := createTestDB(t)
			err := SetupConnectionPool(db, tt.config)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			assert.Equal(t, tt.config.MaxOpenConns, sqlDB.Stats().MaxOpenConnections)
		})
	}
}
