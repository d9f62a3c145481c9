package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xiaobei/mvd/internal/proposal"
	"github.com/xiaobei/mvd/internal/tequilapi"
)

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// Config is the application configuration.
type Config struct {
	Port      int             `yaml:"port"`
	Tequilapi TequilapiConfig `yaml:"tequilapi"`
	Proposals ProposalsConfig `yaml:"proposals"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Log       LogConfig       `yaml:"log"`
}

// TequilapiConfig locates the node daemon's REST API.
type TequilapiConfig struct {
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProposalsConfig tunes the proposal store and its refresh loop.
type ProposalsConfig struct {
	ServiceType     string        `yaml:"service_type"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	DebounceWindow  time.Duration `yaml:"debounce_window"`
	DecimalPart     float64       `yaml:"decimal_part"`
}

// MonitorConfig tunes daemon status polling.
type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	ProcessName  string        `yaml:"process_name"`
}

// AnalyticsConfig controls user event retention. Keep <= 0 keeps all.
type AnalyticsConfig struct {
	Keep int `yaml:"keep"`
}

// LogConfig controls the application log.
type LogConfig struct {
	MaxSize int64 `yaml:"max_size"`
	Quiet   bool  `yaml:"quiet"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port: 9191,
		Tequilapi: TequilapiConfig{
			Address: tequilapi.DefaultAddress,
			Timeout: tequilapi.DefaultTimeout,
		},
		Proposals: ProposalsConfig{
			ServiceType:     "wireguard",
			RefreshInterval: 10 * time.Second,
			DebounceWindow:  800 * time.Millisecond,
			DecimalPart:     proposal.DefaultDecimalPart,
		},
		Monitor: MonitorConfig{
			PollInterval: 2 * time.Second,
			ProcessName:  "myst",
		},
		Analytics: AnalyticsConfig{
			Keep: 10000,
		},
		Log: LogConfig{
			MaxSize: 10 * 1024 * 1024,
		},
	}
}

// Load reads dataDir/config.yaml over the defaults. A missing file is not
// an error.
func Load(dataDir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dataDir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := decodeStrict(f, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.Tequilapi.Address == "" {
		return errors.New("tequilapi.address is empty")
	}
	if c.Proposals.ServiceType == "" {
		return errors.New("proposals.service_type is empty")
	}
	if c.Proposals.DecimalPart <= 0 {
		return errors.New("proposals.decimal_part must be positive")
	}
	for name, d := range map[string]time.Duration{
		"tequilapi.timeout":          c.Tequilapi.Timeout,
		"proposals.refresh_interval": c.Proposals.RefreshInterval,
		"proposals.debounce_window":  c.Proposals.DebounceWindow,
		"monitor.poll_interval":      c.Monitor.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	return nil
}

func decodeStrict(r io.Reader, out *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// empty file
			return nil
		}
		return err
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return errors.New("multiple YAML documents are not allowed")
	} else if !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
