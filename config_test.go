package pushsub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/pushsub/internal/logger"
	"github.com/arloliu/pushsub/vapid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Empty(t, cfg.ApplicationServerKey)
	require.False(t, cfg.StrictKeyValidation)
	require.Zero(t, cfg.OperationTimeout)
	require.Zero(t, cfg.PromptTimeout)
	require.Equal(t, 30*time.Second, cfg.PublishTimeout)
	require.Equal(t, 4, cfg.WatchBuffer)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, 4, cfg.WatchBuffer)
		require.Zero(t, cfg.OperationTimeout)
		require.Zero(t, cfg.PromptTimeout)
	})

	t.Run("zero publish timeout stays unbounded", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PublishTimeout = 0
		SetDefaults(&cfg)

		require.Zero(t, cfg.PublishTimeout)
		require.NoError(t, cfg.Validate())
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			ApplicationServerKey: "key",
			OperationTimeout:     3 * time.Second,
			PromptTimeout:        time.Minute,
			PublishTimeout:       5 * time.Second,
			WatchBuffer:          16,
		}
		SetDefaults(&cfg)

		require.Equal(t, "key", cfg.ApplicationServerKey)
		require.Equal(t, 3*time.Second, cfg.OperationTimeout)
		require.Equal(t, time.Minute, cfg.PromptTimeout)
		require.Equal(t, 5*time.Second, cfg.PublishTimeout)
		require.Equal(t, 16, cfg.WatchBuffer)
	})
}

func TestConfig_Validate(t *testing.T) {
	keys, err := vapid.GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "negative operation timeout",
			mutate:  func(c *Config) { c.OperationTimeout = -time.Second },
			wantErr: "OperationTimeout",
		},
		{
			name:    "negative prompt timeout",
			mutate:  func(c *Config) { c.PromptTimeout = -time.Second },
			wantErr: "PromptTimeout",
		},
		{
			name:    "negative publish timeout",
			mutate:  func(c *Config) { c.PublishTimeout = -time.Second },
			wantErr: "PublishTimeout",
		},
		{
			name:    "zero watch buffer",
			mutate:  func(c *Config) { c.WatchBuffer = 0 },
			wantErr: "WatchBuffer",
		},
		{
			name: "malformed key is accepted without strict validation",
			mutate: func(c *Config) {
				c.ApplicationServerKey = "not-a-key"
			},
		},
		{
			name: "malformed key is rejected with strict validation",
			mutate: func(c *Config) {
				c.ApplicationServerKey = "not-a-key"
				c.StrictKeyValidation = true
			},
			wantErr: "invalid application server key",
		},
		{
			name: "valid key passes strict validation",
			mutate: func(c *Config) {
				c.ApplicationServerKey = keys.PublicKey
				c.StrictKeyValidation = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	keys, err := vapid.GenerateKeyPair()
	require.NoError(t, err)

	t.Run("warns about missing key", func(t *testing.T) {
		log := logger.NewTest(t)
		cfg := DefaultConfig()
		cfg.ValidateWithWarnings(log)

		require.True(t, log.Has("WARN", "no application server key configured, push services may reject subscriptions"))
	})

	t.Run("warns about malformed key", func(t *testing.T) {
		log := logger.NewTest(t)
		cfg := DefaultConfig()
		cfg.ApplicationServerKey = "AAAA"
		cfg.ValidateWithWarnings(log)

		require.True(t, log.Has("WARN", "application server key is not a valid P-256 public key"))
	})

	t.Run("warns about short publish timeout", func(t *testing.T) {
		log := logger.NewTest(t)
		cfg := DefaultConfig()
		cfg.ApplicationServerKey = keys.PublicKey
		cfg.PublishTimeout = 100 * time.Millisecond
		cfg.ValidateWithWarnings(log)

		require.True(t, log.Has("WARN", "PublishTimeout is very short, record publishing may fail spuriously"))
	})

	t.Run("warns when prompt timeout is shorter than operation timeout", func(t *testing.T) {
		log := logger.NewTest(t)
		cfg := DefaultConfig()
		cfg.ApplicationServerKey = keys.PublicKey
		cfg.OperationTimeout = 10 * time.Second
		cfg.PromptTimeout = time.Second
		cfg.ValidateWithWarnings(log)

		require.True(t, log.Has("WARN", "PromptTimeout is shorter than OperationTimeout, users may not have time to answer"))
	})

	t.Run("recommended config is quiet", func(t *testing.T) {
		log := logger.NewTest(t)
		cfg := DefaultConfig()
		cfg.ApplicationServerKey = keys.PublicKey
		cfg.ValidateWithWarnings(log)

		require.Empty(t, log.Entries())
	})
}

func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
applicationServerKey: "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U"
strictKeyValidation: true
operationTimeout: 15s
promptTimeout: 2m
publishTimeout: 10s
watchBuffer: 8
`

	var cfg Config
	err := yaml.Unmarshal([]byte(yamlConfig), &cfg)
	require.NoError(t, err)

	require.Equal(t, "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U", cfg.ApplicationServerKey)
	require.True(t, cfg.StrictKeyValidation)
	require.Equal(t, 15*time.Second, cfg.OperationTimeout)
	require.Equal(t, 2*time.Minute, cfg.PromptTimeout)
	require.Equal(t, 10*time.Second, cfg.PublishTimeout)
	require.Equal(t, 8, cfg.WatchBuffer)
}

func TestParseConfig(t *testing.T) {
	t.Run("applies defaults to partial document", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("operationTimeout: 5s\n"))
		require.NoError(t, err)

		require.Equal(t, 5*time.Second, cfg.OperationTimeout)
		require.Equal(t, 30*time.Second, cfg.PublishTimeout)
		require.Equal(t, 4, cfg.WatchBuffer)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("explicit zero publish timeout is kept", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("publishTimeout: 0s\n"))
		require.NoError(t, err)
		require.Zero(t, cfg.PublishTimeout)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := ParseConfig([]byte("publishTimout: 5s\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		_, err := ParseConfig([]byte("watchBuffer: -1\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		_, err := ParseConfig([]byte("publishTimeout: soon\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushsub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publishTimeout: 12s\nwatchBuffer: 2\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 12*time.Second, cfg.PublishTimeout)
	require.Equal(t, 2, cfg.WatchBuffer)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.Equal(t, 2*time.Second, cfg.OperationTimeout)
	require.Equal(t, 2*time.Second, cfg.PromptTimeout)
	require.Equal(t, 2*time.Second, cfg.PublishTimeout)
	require.NoError(t, cfg.Validate())
}
