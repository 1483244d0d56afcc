package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/ir"
)

// Config holds settings read from the TOML config file. Command-line flags
// take precedence over every field.
//
//	verbose = true
//	cache_dir = "/var/tmp/modelir"
//	output_format = "json"
//	keep_unknown_dims = true
type Config struct {
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	// CacheDir overrides the render cache directory.
	CacheDir string `toml:"cache_dir"`

	// OutputFormat is the default format for convert: "binary" or "json".
	OutputFormat string `toml:"output_format"`

	// KeepUnknownDims prints unknown dimensions as -1 instead of dropping them.
	KeepUnknownDims bool `toml:"keep_unknown_dims"`
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{OutputFormat: string(ir.FormatBinary)}
}

// loadConfig reads the config file at path. A missing file yields the
// defaults; unknown keys are rejected so typos do not go unnoticed.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := validateOutputFormat(cfg.OutputFormat); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	return cfg, nil
}

// configPath returns the config file location using XDG standard
// (~/.config/modelir/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
