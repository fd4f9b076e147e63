/*
Package config manages TOML config for KeyServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/keyserve/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Decoder DecoderConfig `toml:"decoder"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// DecoderConfig holds the beam search knobs.
type DecoderConfig struct {
	MaxCacheSize          int  `toml:"max_cache_size"`
	SingleCharCacheSize   int  `toml:"single_char_cache_size"`
	AllowPartialCommit    bool `toml:"allow_partial_commit"`
	CorrectOmission       bool `toml:"correct_omission"`
	CorrectSpaceSub       bool `toml:"correct_space_substitution"`
	CorrectSpaceOmission  bool `toml:"correct_space_omission"`
	MinProbabilityForNext int  `toml:"min_probability_for_next_word"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	MaxInputSize int `toml:"max_input_size"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Decoder: DecoderConfig{
			MaxCacheSize:          170,
			SingleCharCacheSize:   20,
			AllowPartialCommit:    false,
			CorrectOmission:       true,
			CorrectSpaceSub:       true,
			CorrectSpaceOmission:  true,
			MinProbabilityForNext: 40,
		},
		Server: ServerConfig{
			MaxLimit:     18,
			MaxInputSize: 46,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/keyserve
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	return filepath.Join(homeDir, ".config", "keyserve"), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file; missing keys keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
