package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every knob of one measurement run.
type Config struct {
	// station population, legacy stations are indexed first
	NLegacy    int `yaml:"nLegacy"`
	NScheduled int `yaml:"nScheduled"`

	// measured run length in seconds, after traffic sources start
	SimTime float64 `yaml:"simTime"`

	// fixed datagram payload size in bytes
	PayloadSize int `yaml:"payloadSize"`

	// comma separated per-station arrival rates; empty means the class
	// defaults apply
	LambdaList      string  `yaml:"lambdaList"`
	LambdaLegacy    float64 `yaml:"lambdaLegacy"`
	LambdaScheduled float64 `yaml:"lambdaScheduled"`

	// AP side contention window bounds
	APCwMin int `yaml:"apCwMin"`
	APCwMax int `yaml:"apCwMax"`

	// multi user access: enable flag and extra gap between trigger rounds
	// in seconds
	EnableMuAccess   bool    `yaml:"enableMuAccess"`
	MuAccessInterval float64 `yaml:"muAccessInterval"`

	Seed uint64 `yaml:"seed"`

	// print every handled event to stderr
	LogEvents bool `yaml:"logEvents"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		NLegacy:         5,
		NScheduled:      5,
		SimTime:         30,
		PayloadSize:     1200,
		LambdaLegacy:    1000,
		LambdaScheduled: 1000,
		APCwMin:         15,
		APCwMax:         1023,
		EnableMuAccess:  true,
		Seed:            1,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects configurations the runner cannot execute.
func (c Config) Validate() error {
	if c.NLegacy < 0 || c.NScheduled < 0 {
		return fmt.Errorf("station counts must be non-negative")
	}
	if c.NLegacy+c.NScheduled == 0 {
		return fmt.Errorf("at least one station is required")
	}
	if c.SimTime <= 0 {
		return fmt.Errorf("simTime must be positive")
	}
	if c.PayloadSize <= 0 {
		return fmt.Errorf("payloadSize must be positive")
	}
	if c.APCwMin < 0 || c.APCwMax < c.APCwMin {
		return fmt.Errorf("contention window bounds must satisfy 0 <= min <= max")
	}
	if c.MuAccessInterval < 0 {
		return fmt.Errorf("muAccessInterval must be non-negative")
	}

	return nil
}
