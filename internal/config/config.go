package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultCommandTemplate is the launch command used when none is configured.
// Placeholders: {model_path}, {port}, {gpu_id}, {extra_args}.
const DefaultCommandTemplate = "vllm --model {model_path} --http-port {port} --device-ids {gpu_id} {extra_args}"

type Config struct {
	ServiceName    string
	HTTPListenAddr string
	LogLevel       string

	// CommandTemplate renders the serving process launch command. Its output
	// is trusted operator configuration, not user input.
	CommandTemplate string
	LogDir          string
	HealthPath      string

	PortRangeLow  int
	PortRangeHigh int

	HealthSettleDelay  time.Duration
	HealthProbeTimeout time.Duration
	HealthAttempts     int
	HealthInterval     time.Duration

	StopTimeout      time.Duration
	StopPollInterval time.Duration
}

// Load builds the config from defaults, an optional YAML manifest pointed at
// by MODELHOST_MANIFEST, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:        "modelhost",
		HTTPListenAddr:     ":8090",
		LogLevel:           "info",
		CommandTemplate:    DefaultCommandTemplate,
		LogDir:             "./deploy_logs",
		HealthPath:         "/health",
		PortRangeLow:       8000,
		PortRangeHigh:      8999,
		HealthSettleDelay:  time.Second,
		HealthProbeTimeout: 2 * time.Second,
		HealthAttempts:     12,
		HealthInterval:     500 * time.Millisecond,
		StopTimeout:        10 * time.Second,
		StopPollInterval:   500 * time.Millisecond,
	}

	if path := os.Getenv("MODELHOST_MANIFEST"); path != "" {
		if err := cfg.applyManifest(path); err != nil {
			return nil, err
		}
	}

	cfg.HTTPListenAddr = getEnv("HTTP_LISTEN_ADDR", cfg.HTTPListenAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CommandTemplate = getEnv("SERVE_CMD_TEMPLATE", cfg.CommandTemplate)
	cfg.LogDir = getEnv("DEPLOY_LOG_DIR", cfg.LogDir)
	cfg.HealthPath = getEnv("HEALTH_PATH", cfg.HealthPath)

	var err error
	if cfg.PortRangeLow, err = getEnvInt("PORT_RANGE_LOW", cfg.PortRangeLow); err != nil {
		return nil, err
	}
	if cfg.PortRangeHigh, err = getEnvInt("PORT_RANGE_HIGH", cfg.PortRangeHigh); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.PortRangeLow <= 0 || c.PortRangeHigh > 65535 {
		return fmt.Errorf("port range [%d, %d] outside valid TCP ports", c.PortRangeLow, c.PortRangeHigh)
	}
	if c.PortRangeLow > c.PortRangeHigh {
		return fmt.Errorf("port range low %d exceeds high %d", c.PortRangeLow, c.PortRangeHigh)
	}
	if c.CommandTemplate == "" {
		return fmt.Errorf("command template must not be empty")
	}
	if c.HealthAttempts <= 0 {
		return fmt.Errorf("health attempts must be positive, got %d", c.HealthAttempts)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
