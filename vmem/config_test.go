package vmem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MemorySize != 1000 {
		t.Errorf("Expected memory size 1000, got %d", config.MemorySize)
	}

	if config.PFF.MinFaults != 5 || config.PFF.MaxFaults != 15 || config.PFF.Period != 10 {
		t.Errorf("Unexpected PFF defaults: %+v", config.PFF)
	}

	if config.WSS.Period != 10 {
		t.Errorf("Expected WSS period 10, got %d", config.WSS.Period)
	}

	if len(config.Policies) != len(AllPolicies) {
		t.Errorf("Expected every policy enabled, got %v", config.Policies)
	}

	if config.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got '%s'", config.LogLevel)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "zero memory size",
			mutate:      func(c *Config) { c.MemorySize = 0 },
			expectError: true,
		},
		{
			name:        "unknown policy",
			mutate:      func(c *Config) { c.Policies = []string{"fifo"} },
			expectError: true,
		},
		{
			name:        "no policy",
			mutate:      func(c *Config) { c.Policies = nil },
			expectError: true,
		},
		{
			name:        "pff thresholds inverted",
			mutate:      func(c *Config) { c.PFF.MinFaults, c.PFF.MaxFaults = 10, 5 },
			expectError: true,
		},
		{
			name:        "zero wss period",
			mutate:      func(c *Config) { c.WSS.Period = 0 },
			expectError: true,
		},
		{
			name:        "empty generator range",
			mutate:      func(c *Config) { c.Generator.BurstsMin, c.Generator.BurstsMax = 10, 5 },
			expectError: true,
		},
		{
			name:        "unknown compression",
			mutate:      func(c *Config) { c.Compression = "zstd" },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestConfigZeroMemoryErrorCode(t *testing.T) {
	config := DefaultConfig()
	config.MemorySize = 0

	if !IsErrorCode(config.Validate(), ErrCodeInvalidMemorySize) {
		t.Error("Expected ErrCodeInvalidMemorySize")
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config := DefaultConfig()
	config.MemorySize = 64
	config.Policies = []string{"pff", "wss"}
	config.PFF.Period = 20
	config.Compression = "lz4"

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.MemorySize != 64 {
		t.Errorf("Expected memory size 64, got %d", loaded.MemorySize)
	}
	if len(loaded.Policies) != 2 || loaded.Policies[1] != "wss" {
		t.Errorf("Unexpected policies %v", loaded.Policies)
	}
	if loaded.PFF.Period != 20 {
		t.Errorf("Expected PFF period 20, got %d", loaded.PFF.Period)
	}
	if loaded.Compression != "lz4" {
		t.Errorf("Expected compression lz4, got %s", loaded.Compression)
	}
}

func TestLoadConfigFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfigFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFromFile(bad); err == nil {
		t.Error("Expected error for malformed file")
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"memory_size": 0}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFromFile(invalid); err == nil {
		t.Error("Expected validation error for zero memory size")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VMSIM_MEMORY_SIZE", "256")
	t.Setenv("VMSIM_POLICIES", "equal,wss")
	t.Setenv("VMSIM_PFF_MIN_FAULTS", "2")
	t.Setenv("VMSIM_PFF_MAX_FAULTS", "8")
	t.Setenv("VMSIM_WSS_PERIOD", "25")
	t.Setenv("VMSIM_PARALLEL", "false")
	t.Setenv("VMSIM_SEED", "99")
	t.Setenv("VMSIM_LOG_LEVEL", "debug")

	config := LoadConfigFromEnv()

	if config.MemorySize != 256 {
		t.Errorf("Expected memory size 256, got %d", config.MemorySize)
	}
	if len(config.Policies) != 2 || config.Policies[0] != "equal" {
		t.Errorf("Unexpected policies %v", config.Policies)
	}
	if config.PFF.MinFaults != 2 || config.PFF.MaxFaults != 8 {
		t.Errorf("Unexpected PFF thresholds %+v", config.PFF)
	}
	if config.WSS.Period != 25 {
		t.Errorf("Expected WSS period 25, got %d", config.WSS.Period)
	}
	if config.Parallel {
		t.Error("Expected parallel to be disabled")
	}
	if config.Generator.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", config.Generator.Seed)
	}
	if config.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", config.LogLevel)
	}

	// Malformed numbers keep the default
	t.Setenv("VMSIM_MEMORY_SIZE", "lots")
	if LoadConfigFromEnv().MemorySize != DefaultConfig().MemorySize {
		t.Error("Malformed memory size should fall back to the default")
	}
}

func TestConfigClone(t *testing.T) {
	config := DefaultConfig()
	clone := config.Clone()

	clone.MemorySize = 1
	clone.Policies[0] = "wss"

	if config.MemorySize == 1 {
		t.Error("Clone should not share scalar fields")
	}
	if config.Policies[0] == "wss" {
		t.Error("Clone should not share the policies slice")
	}
}

func TestConfigPolicyKinds(t *testing.T) {
	config := DefaultConfig()
	config.Policies = []string{"WSS", "equal-allocation", "PageFaultFrequency"}

	kinds, err := config.PolicyKinds()
	if err != nil {
		t.Fatalf("PolicyKinds failed: %v", err)
	}

	expected := []PolicyKind{PolicyWorkingSetSize, PolicyEqual, PolicyPageFaultFrequency}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], kinds[i])
		}
	}
}
