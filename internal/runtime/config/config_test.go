package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

func validConfig() Config {
	return Config{
		Brokers:     []string{"localhost:9092"},
		RegistryURL: "http://localhost:8081",
		Component:   "Test",
		Topics:      []string{"evt_scalars"},
		Count:       5,
		WaitAck:     true,
		Validation:  "struct",
		PostProcess: "struct",
		Partitions:  1,
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{"no brokers", func(c *Config) { c.Brokers = nil }, errspkg.ErrBrokersRequired, ""},
		{"no registry", func(c *Config) { c.RegistryURL = "" }, errspkg.ErrRegistryURLRequired, ""},
		{"bad registry URL", func(c *Config) { c.RegistryURL = "not a url" }, nil, "not a valid URL"},
		{"no component", func(c *Config) { c.Component = "" }, nil, "component name is required"},
		{"no topics", func(c *Config) { c.Topics = nil }, errspkg.ErrTopicRequired, ""},
		{"negative count", func(c *Config) { c.Count = -1 }, nil, "cannot be negative"},
		{"zero partitions", func(c *Config) { c.Partitions = 0 }, nil, "partition count must be at least 1"},
		{"timing with one message", func(c *Config) { c.Timing = true; c.Count = 1 }, errspkg.ErrTimingNeedsMessages, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %q, want errors.Is(%q)", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Config{}
	if got := cfg.GetPollTimeout(); got != DefaultPollTimeout {
		t.Errorf("GetPollTimeout() = %v, want %v", got, DefaultPollTimeout)
	}
	if got := cfg.GetPoolSize(); got != DefaultPoolSize {
		t.Errorf("GetPoolSize() = %v, want %v", got, DefaultPoolSize)
	}
	if got := cfg.GetSettleDelay(); got != DefaultSettleDelay {
		t.Errorf("GetSettleDelay() = %v, want %v", got, DefaultSettleDelay)
	}

	cfg.PollTimeout = 250 * time.Millisecond
	if got := cfg.GetPollTimeout(); got != 250*time.Millisecond {
		t.Errorf("GetPollTimeout() = %v, want 250ms", got)
	}
}

func TestAcks(t *testing.T) {
	cfg := Config{WaitAck: true}
	if got := cfg.Acks(); got != 1 {
		t.Errorf("Acks() = %d, want 1", got)
	}
	cfg.WaitAck = false
	if got := cfg.Acks(); got != 0 {
		t.Errorf("Acks() = %d, want 0", got)
	}
}
