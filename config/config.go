package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries all process-scoped settings. It is built once in main and
// handed to the components that need it; there is no package-level state.
type Config struct {
	ListenAddr  string
	CORSOrigins []string

	DBDriver string
	DBDSN    string

	// RedisAddr enables the list-response cache when non-empty.
	RedisAddr string

	MindeeAPIKey  string
	MindeeTimeout time.Duration
}

// Load reads configuration from the environment. Every key has a default, so
// only the database DSN and the extraction API key need to be set for a
// working deployment.
//
// Keys: LISTEN_ADDR, CORS_ORIGINS, DB_DRIVER, DB_DSN, REDIS_ADDR,
// MINDEE_API_KEY, MINDEE_TIMEOUT.
func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("mindee_api_key", "")
	v.SetDefault("mindee_timeout", "60s")

	return &Config{
		ListenAddr:    v.GetString("listen_addr"),
		CORSOrigins:   splitOrigins(v.GetString("cors_origins")),
		DBDriver:      v.GetString("db_driver"),
		DBDSN:         v.GetString("db_dsn"),
		RedisAddr:     v.GetString("redis_addr"),
		MindeeAPIKey:  v.GetString("mindee_api_key"),
		MindeeTimeout: v.GetDuration("mindee_timeout"),
	}
}

// AllowAllOrigins reports whether the cross-origin allow-list is the
// wildcard default.
func (c *Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*"
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
