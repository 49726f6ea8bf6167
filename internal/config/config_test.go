package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USERNAME", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "therapy")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, "svc:pw@tcp(db:3306)/therapy?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Database.DSN)
	assert.Equal(t, "count", cfg.OrderPolicy)
	assert.Equal(t, "avatars", cfg.MinIO.Bucket)
	assert.False(t, cfg.MinIO.UseSSL)
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_USERNAME", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "therapy")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "host=pg port=5432")
}

func TestLoadConfigDSNOverride(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://u:p@remote/db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@remote/db", cfg.Database.DSN)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "oracle"},
		{"order policy", "ORDER_POLICY", "random"},
		{"jwt expiry", "JWT_EXPIRATION_MINUTES", "soon"},
		{"minio ssl", "MINIO_USE_SSL", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
