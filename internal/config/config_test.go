package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daycare/internal/config"
)

func TestLoad(t *testing.T) {
	type testCase struct {
		name    string
		env     map[string]string
		verify  func(t *testing.T, cfg *config.Config)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Defaults",
			env:  map[string]string{"JWT_SECRET": "0123456789abcdef"},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 8080, cfg.App.Port)
				assert.Equal(t, config.SequencePostgres, cfg.Sequence.Backend)
				assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
				assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, "postgres://postgres:@localhost:5432/daycare?sslmode=disable", cfg.ConnectionString())
			},
		},
		{
			name: "RedisBackend",
			env: map[string]string{
				"JWT_SECRET":       "0123456789abcdef",
				"SEQUENCE_BACKEND": "redis",
				"REDIS_ADDR":       "cache:6379",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.SequenceRedis, cfg.Sequence.Backend)
				assert.Equal(t, "cache:6379", cfg.Redis.Addr)
			},
		},
		{
			name:    "MissingSecret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: true,
		},
		{
			name:    "ShortSecret",
			env:     map[string]string{"JWT_SECRET": "short"},
			wantErr: true,
		},
		{
			name: "UnknownBackend",
			env: map[string]string{
				"JWT_SECRET":       "0123456789abcdef",
				"SEQUENCE_BACKEND": "etcd",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}
