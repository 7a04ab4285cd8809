package scenario

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PreDelay != 3*time.Second || cfg.PostDelay != 100*time.Millisecond {
		t.Errorf("delays = %s/%s, want 3s/100ms", cfg.PreDelay, cfg.PostDelay)
	}
	if cfg.Workers != 100 || cfg.MaxJitter != 10*time.Millisecond {
		t.Errorf("workers = %d jitter = %s, want 100 and 10ms", cfg.Workers, cfg.MaxJitter)
	}
	if cfg.Dispatch != Parallel || cfg.Guard != Unguarded || !cfg.Witness {
		t.Errorf("modes = %s/%s/%v, want parallel/unguarded/true", cfg.Dispatch, cfg.Guard, cfg.Witness)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero delays", func(c *Config) { c.PreDelay, c.PostDelay, c.MaxJitter = 0, 0, 0 }, false},
		{"max workers", func(c *Config) { c.Workers = 255 }, false},
		{"negative pre delay", func(c *Config) { c.PreDelay = -time.Second }, true},
		{"negative jitter", func(c *Config) { c.MaxJitter = -1 }, true},
		{"one worker", func(c *Config) { c.Workers = 1 }, true},
		{"too many workers", func(c *Config) { c.Workers = 256 }, true},
		{"bad dispatch", func(c *Config) { c.Dispatch = Dispatch(7) }, true},
		{"bad guard", func(c *Config) { c.Guard = Guard(-1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModeStrings(t *testing.T) {
	if Sequential.String() != "sequential" || Dispatch(9).String() != "unknown" {
		t.Errorf("Dispatch strings: %s, %s", Sequential, Dispatch(9))
	}
	if Atomic.String() != "atomic" || Mutex.String() != "mutex" || Guard(9).String() != "unknown" {
		t.Errorf("Guard strings: %s, %s, %s", Atomic, Mutex, Guard(9))
	}
}
