package pushsub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/pushsub/vapid"
)

// Config is the configuration for the Handler.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
// The configuration is copied by NewHandler and never changes afterwards.
type Config struct {
	// ApplicationServerKey is the push service public key (VAPID), forwarded
	// verbatim to the push subscribe call. Empty means no key is sent.
	ApplicationServerKey string `yaml:"applicationServerKey"`

	// StrictKeyValidation makes Validate reject an ApplicationServerKey that is
	// not a base64url uncompressed P-256 point. Otherwise such a key only
	// produces a warning.
	StrictKeyValidation bool `yaml:"strictKeyValidation"`

	// OperationTimeout bounds each host call: waiting for the worker
	// registration, querying, creating and removing push subscriptions.
	// 0 means unbounded; a hung host call then stalls the handler.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// PromptTimeout bounds the permission prompt. 0 means unbounded, since the
	// prompt waits for a person.
	PromptTimeout time.Duration `yaml:"promptTimeout"`

	// PublishTimeout bounds each publish and unpublish call to the record publisher.
	// A publish that runs out of time is compensated like a rejected one.
	// 0 means unbounded. DefaultConfig sets 30 seconds.
	PublishTimeout time.Duration `yaml:"publishTimeout"`

	// WatchBuffer is the channel capacity of Watch subscribers.
	// Default: 4
	WatchBuffer int `yaml:"watchBuffer"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		OperationTimeout: 0, // host calls wait as long as the host does
		PromptTimeout:    0,
		PublishTimeout:   30 * time.Second,
		WatchBuffer:      4,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.WatchBuffer == 0 {
		cfg.WatchBuffer = defaults.WatchBuffer
	}
	// Timeouts of 0 are valid (unbounded)
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Timeouts are not negative
//   - WatchBuffer >= 1
//   - ApplicationServerKey decodes to a P-256 public key (StrictKeyValidation only)
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("OperationTimeout (%v) must be >= 0", cfg.OperationTimeout)
	}
	if cfg.PromptTimeout < 0 {
		return fmt.Errorf("PromptTimeout (%v) must be >= 0", cfg.PromptTimeout)
	}
	if cfg.PublishTimeout < 0 {
		return fmt.Errorf("PublishTimeout (%v) must be >= 0", cfg.PublishTimeout)
	}
	if cfg.WatchBuffer < 1 {
		return fmt.Errorf("WatchBuffer (%d) must be >= 1", cfg.WatchBuffer)
	}

	if cfg.StrictKeyValidation && cfg.ApplicationServerKey != "" {
		if err := vapid.ValidatePublicKey(cfg.ApplicationServerKey); err != nil {
			return err
		}
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewHandler() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.ApplicationServerKey == "" {
		logger.Warn(
			"no application server key configured, push services may reject subscriptions",
		)
	} else if !cfg.StrictKeyValidation {
		if err := vapid.ValidatePublicKey(cfg.ApplicationServerKey); err != nil {
			logger.Warn(
				"application server key is not a valid P-256 public key",
				"error", err,
			)
		}
	}

	if cfg.PublishTimeout > 0 && cfg.PublishTimeout < time.Second {
		logger.Warn(
			"PublishTimeout is very short, record publishing may fail spuriously",
			"publishTimeout", cfg.PublishTimeout,
			"recommended", "5s or higher",
		)
	}

	if cfg.OperationTimeout > 0 && cfg.PromptTimeout > 0 && cfg.PromptTimeout < cfg.OperationTimeout {
		logger.Warn(
			"PromptTimeout is shorter than OperationTimeout, users may not have time to answer",
			"promptTimeout", cfg.PromptTimeout,
			"operationTimeout", cfg.OperationTimeout,
		)
	}
}

// ParseConfig decodes a YAML document over DefaultConfig and validates it.
//
// Fields missing from the document keep their default; an explicit
// "publishTimeout: 0s" disables the publish bound.
//
// Unknown fields are rejected so typos do not silently fall back to defaults.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Parsed configuration
//   - error: Wrapped ErrInvalidConfig on decoding or validation failure
//
// Example:
//
//	cfg, err := pushsub.ParseConfig([]byte("applicationServerKey: BEl62i...\npublishTimeout: 10s\n"))
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// Parameters:
//   - path: File path
//
// Returns:
//   - Config: Parsed configuration
//   - error: File read error or ParseConfig error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// TestConfig returns a configuration suited to fast, deterministic tests.
//
// Every host and publisher call is bounded so a broken fake fails the test
// instead of hanging it.
//
// Returns:
//   - Config: Configuration with short bounds for tests
//
// Example:
//
//	cfg := pushsub.TestConfig()
//	h, err := pushsub.NewHandler(ctx, host.NewMemory(), &cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.OperationTimeout = 2 * time.Second
	cfg.PromptTimeout = 2 * time.Second
	cfg.PublishTimeout = 2 * time.Second

	return cfg
}
