package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.True(t, cfg.AllowAllOrigins())
	assert.Equal(t, 60*time.Second, cfg.MindeeTimeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "employees.db")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("MINDEE_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "employees.db", cfg.DBDSN)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowAllOrigins())
	assert.Equal(t, 30*time.Second, cfg.MindeeTimeout)
}
