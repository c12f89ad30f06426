package app

import (
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoad() (*Config, error) {
	return loadConfig(aconfig.Config{SkipFlags: true, SkipFiles: true})
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SHOP_DATABASE_URL", "postgres://localhost/shop")

	cfg, err := testLoad()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "postgres://localhost/shop", cfg.DatabaseURL)
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
	assert.Equal(t, uint(100000), cfg.CodeFilter.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.CodeFilter.Refresh)
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/shop")
	t.Setenv("PORT", "9000")

	cfg, err := testLoad()
	require.NoError(t, err)
	assert.Equal(t, "postgres://platform/shop", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := testLoad()
	require.ErrorContains(t, err, "database URL is required")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL: "postgres://localhost/shop",
			RateLimit:   RateLimitConfig{RPS: 1, Burst: 1},
			CodeFilter:  CodeFilterConfig{FPRate: 0.01},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "fp rate zero", mutate: func(c *Config) { c.CodeFilter.FPRate = 0 }, want: "false positive rate"},
		{name: "fp rate one", mutate: func(c *Config) { c.CodeFilter.FPRate = 1 }, want: "false positive rate"},
		{name: "no burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, want: "rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.want)
		})
	}
}
