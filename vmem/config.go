package vmem

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PFFConfig holds page-fault-frequency parameters
type PFFConfig struct {
	MinFaults int `json:"min_faults"` // Shrink desired space below this many faults per window
	MaxFaults int `json:"max_faults"` // Grow desired space above this many faults per window
	Period    int `json:"period"`     // Sliding window length in accesses
}

// WSSConfig holds working-set-size parameters
type WSSConfig struct {
	Period int `json:"period"` // Sliding window length in accesses
}

// GeneratorConfig bounds the random workload generator. Every range is inclusive.
type GeneratorConfig struct {
	Seed         int64 `json:"seed"`
	ProcessesMin int   `json:"processes_min"`
	ProcessesMax int   `json:"processes_max"`
	BurstsMin    int   `json:"bursts_min"`    // Bursts per process
	BurstsMax    int   `json:"bursts_max"`
	BurstLenMin  int   `json:"burst_len_min"` // References per burst
	BurstLenMax  int   `json:"burst_len_max"`
	PagesMin     int   `json:"pages_min"` // Size of each process's page range
	PagesMax     int   `json:"pages_max"`
}

// Config holds simulator configuration
type Config struct {
	// Frame pool
	MemorySize int `json:"memory_size"` // Number of frames shared by all processes

	// Policies
	Policies []string  `json:"policies"` // Policies to run (equal, proportional, pff, wss)
	PFF      PFFConfig `json:"pff"`
	WSS      WSSConfig `json:"wss"`
	Parallel bool      `json:"parallel"` // Run policy engines concurrently

	// Workload
	Generator   GeneratorConfig `json:"generator"`
	Compression string          `json:"compression"` // Workload file compression (none, lz4, snappy, best)

	// Observability
	EnableMetrics bool   `json:"enable_metrics"`
	LogLevel      string `json:"log_level"` // Log level (debug, info, warn, error)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MemorySize: 1000,
		Policies:   []string{"equal", "proportional", "pff", "wss"},
		PFF: PFFConfig{
			MinFaults: 5,
			MaxFaults: 15,
			Period:    10,
		},
		WSS: WSSConfig{
			Period: 10,
		},
		Parallel: true,
		Generator: GeneratorConfig{
			Seed:         1,
			ProcessesMin: 10,
			ProcessesMax: 100,
			BurstsMin:    100,
			BurstsMax:    1000,
			BurstLenMin:  10,
			BurstLenMax:  20,
			PagesMin:     10,
			PagesMax:     100,
		},
		Compression:   "snappy",
		EnableMetrics: true,
		LogLevel:      "info",
	}
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromEnv loads configuration from environment variables
// Falls back to default values if environment variables are not set
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	envInt := func(name string, dst *int) {
		if val := os.Getenv(name); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}

	// Frame pool
	envInt("VMSIM_MEMORY_SIZE", &config.MemorySize)

	// Policies
	if val := os.Getenv("VMSIM_POLICIES"); val != "" {
		config.Policies = strings.Split(val, ",")
	}
	envInt("VMSIM_PFF_MIN_FAULTS", &config.PFF.MinFaults)
	envInt("VMSIM_PFF_MAX_FAULTS", &config.PFF.MaxFaults)
	envInt("VMSIM_PFF_PERIOD", &config.PFF.Period)
	envInt("VMSIM_WSS_PERIOD", &config.WSS.Period)
	if val := os.Getenv("VMSIM_PARALLEL"); val != "" {
		config.Parallel = val == "true" || val == "1"
	}

	// Workload
	if val := os.Getenv("VMSIM_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Generator.Seed = seed
		}
	}
	if val := os.Getenv("VMSIM_COMPRESSION"); val != "" {
		config.Compression = val
	}

	// Observability
	if val := os.Getenv("VMSIM_ENABLE_METRICS"); val != "" {
		config.EnableMetrics = val == "true" || val == "1"
	}
	if val := os.Getenv("VMSIM_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	return config
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MemorySize <= 0 {
		return ErrInvalidMemorySize("Validate")
	}

	if len(c.Policies) == 0 {
		return fmt.Errorf("at least one policy must be selected")
	}
	for _, name := range c.Policies {
		if _, err := ParsePolicyKind(name); err != nil {
			return err
		}
	}

	if c.PFF.Period <= 0 {
		return fmt.Errorf("pff period must be greater than 0")
	}
	if c.PFF.MinFaults < 0 || c.PFF.MaxFaults < c.PFF.MinFaults {
		return fmt.Errorf("pff thresholds must satisfy 0 <= min_faults <= max_faults")
	}
	if c.WSS.Period <= 0 {
		return fmt.Errorf("wss period must be greater than 0")
	}

	if err := c.Generator.Validate(); err != nil {
		return err
	}

	if _, err := ParseCompressionType(c.Compression); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// PolicyKinds returns the configured policies in order
func (c *Config) PolicyKinds() ([]PolicyKind, error) {
	kinds := make([]PolicyKind, 0, len(c.Policies))
	for _, name := range c.Policies {
		kind, err := ParsePolicyKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Validate checks that every generator range is non-empty
func (g GeneratorConfig) Validate() error {
	ranges := []struct {
		name     string
		min, max int
	}{
		{"processes", g.ProcessesMin, g.ProcessesMax},
		{"bursts", g.BurstsMin, g.BurstsMax},
		{"burst length", g.BurstLenMin, g.BurstLenMax},
		{"pages", g.PagesMin, g.PagesMax},
	}
	for _, r := range ranges {
		if r.min < 0 || r.max < r.min {
			return fmt.Errorf("invalid %s range [%d, %d]", r.name, r.min, r.max)
		}
	}
	if g.PagesMin == 0 {
		return fmt.Errorf("pages_min must be greater than 0")
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.Policies = append([]string(nil), c.Policies...)
	return &clone
}
