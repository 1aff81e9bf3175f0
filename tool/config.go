package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l-n-s/QuickShare/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Alias:         NameGenerator(),
		Version:       "1.0",
		Fingerprint:   "", // filled on first load
		RouterAddress: "127.0.0.1:7656",
		ControlPort:   8950,
		TunnelLength:  3,
		OpenTimeout:   120, // tunnel building through the overlay is slow
		ServerRate:    64,
		ServerBurst:   128,
	}
}

// LoadConfig reads the config file at path (or ConfigPath when empty),
// creating it with generated defaults on first run. Missing fields are
// backfilled with defaults and the file is rewritten when anything changed.
func LoadConfig(path string) (types.AppConfig, error) {
	var configChanged bool
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			configChanged = true
		} else {
			return cfg, fmt.Errorf("cannot stat config file %s: %w", path, err)
		}
	} else if info.IsDir() {
		return cfg, fmt.Errorf("config path %s is a directory", path)
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	// backfill anything the file left empty
	def := defaultConfig()
	if cfg.Alias == "" {
		cfg.Alias = def.Alias
		configChanged = true
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = GenerateFingerprint()
		configChanged = true
	}
	if cfg.RouterAddress == "" {
		cfg.RouterAddress = def.RouterAddress
		configChanged = true
	}
	if cfg.ControlPort <= 0 {
		cfg.ControlPort = def.ControlPort
		configChanged = true
	}
	if cfg.TunnelLength <= 0 {
		cfg.TunnelLength = def.TunnelLength
		configChanged = true
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
		configChanged = true
	}
	if cfg.ServerRate <= 0 {
		cfg.ServerRate = def.ServerRate
		configChanged = true
	}
	if cfg.ServerBurst <= 0 {
		cfg.ServerBurst = def.ServerBurst
		configChanged = true
	}

	if configChanged {
		if err := SaveConfig(path, &cfg); err != nil {
			return cfg, err
		}
	}

	CurrentConfig = cfg
	return cfg, nil
}

// SaveConfig writes the config back to disk.
func SaveConfig(path string, cfg *types.AppConfig) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}
	return nil
}
