package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// manifest mirrors Config for YAML loading. Durations are spelled out in
// milliseconds because yaml.v3 has no native duration parsing. Pointer fields
// distinguish "absent" from zero so the manifest only overrides what it sets.
type manifest struct {
	ServiceName    *string `yaml:"service_name"`
	HTTPListenAddr *string `yaml:"http_listen_addr"`
	LogLevel       *string `yaml:"log_level"`

	CommandTemplate *string `yaml:"command_template"`
	LogDir          *string `yaml:"log_dir"`
	HealthPath      *string `yaml:"health_path"`

	PortRangeLow  *int `yaml:"port_range_low"`
	PortRangeHigh *int `yaml:"port_range_high"`

	HealthSettleDelayMS  *int `yaml:"health_settle_delay_ms"`
	HealthProbeTimeoutMS *int `yaml:"health_probe_timeout_ms"`
	HealthAttempts       *int `yaml:"health_attempts"`
	HealthIntervalMS     *int `yaml:"health_interval_ms"`

	StopTimeoutMS      *int `yaml:"stop_timeout_ms"`
	StopPollIntervalMS *int `yaml:"stop_poll_interval_ms"`
}

// applyManifest overlays values from a YAML manifest file onto the config.
// Fields absent from the manifest keep their current values.
func (c *Config) applyManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}

	setString(&c.ServiceName, m.ServiceName)
	setString(&c.HTTPListenAddr, m.HTTPListenAddr)
	setString(&c.LogLevel, m.LogLevel)
	setString(&c.CommandTemplate, m.CommandTemplate)
	setString(&c.LogDir, m.LogDir)
	setString(&c.HealthPath, m.HealthPath)
	setInt(&c.PortRangeLow, m.PortRangeLow)
	setInt(&c.PortRangeHigh, m.PortRangeHigh)
	setInt(&c.HealthAttempts, m.HealthAttempts)
	setDuration(&c.HealthSettleDelay, m.HealthSettleDelayMS)
	setDuration(&c.HealthProbeTimeout, m.HealthProbeTimeoutMS)
	setDuration(&c.HealthInterval, m.HealthIntervalMS)
	setDuration(&c.StopTimeout, m.StopTimeoutMS)
	setDuration(&c.StopPollInterval, m.StopPollIntervalMS)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, ms *int) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}
