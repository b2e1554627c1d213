package channel

import (
	"fmt"
	"net"
	"time"
)

// Config holds configuration for building a channel.
type Config struct {
	// Address is the host:port dial target.
	Address string `yaml:"address" mapstructure:"address"`
	// AccessToken authenticates every call as a bearer credential. It is
	// never logged.
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	// SkipVerify disables standard certificate verification. The channel
	// then pins the certificate the target presents on first contact.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// ForceAnchorLoad exports the platform trust store as explicit anchor
	// bytes even when standard verification is on.
	ForceAnchorLoad bool `yaml:"force_anchor_load" mapstructure:"force_anchor_load"`
	// CallLogPath is the append-only file the call logger writes to.
	CallLogPath string `yaml:"call_log_path" mapstructure:"call_log_path"`
	// CallTimeout is the default deadline applied to calls without one.
	// Zero leaves call timing to the retry policy alone.
	CallTimeout time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
	// ExtraOptions are caller-supplied tuning parameters, prepended to the
	// channel's own option block.
	ExtraOptions []Option `yaml:"-" mapstructure:"-"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("channel: address is required")
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("channel: address must be host:port: %w", err)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("channel: access token is required")
	}
	if c.CallLogPath == "" {
		return fmt.Errorf("channel: call log path is required")
	}
	return nil
}
