package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"diamond-node/logger"
	"diamond-node/params"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Tags are used by viper to map
// ENV variables and config file keys.
type Config struct {
	// Node configuration
	DataDir string `mapstructure:"datadir"`
	Network string `mapstructure:"network"` // mainnet, testnet, regtest

	// RPC configuration
	EnableRPC bool   `mapstructure:"enable_rpc"`
	RPCAddr   string `mapstructure:"rpcaddr"`
	RPCPort   int    `mapstructure:"rpcport"`

	// Database configuration
	Cache   int `mapstructure:"cache"`   // LevelDB block cache (MB)
	Handles int `mapstructure:"handles"` // LevelDB open file handles

	// Logging configuration
	LogLevel  string `mapstructure:"log_level"`
	Verbosity int    `mapstructure:"verbosity"` // fallback when log_level is unset, 0-5
}

var defaultConfig = Config{
	DataDir:   "./data",
	Network:   "mainnet",
	EnableRPC: true,
	RPCAddr:   "0.0.0.0",
	RPCPort:   8645,
	Cache:     256,
	Handles:   512,
	LogLevel:  "info",
	Verbosity: 3,
}

// DefaultConfig exposes the defaults so CLI flag definitions can reuse them.
var DefaultConfig = defaultConfig

// LoadConfig resolves the effective configuration from file, environment
// variables, and bound flags, in viper's priority order.
func LoadConfig() (*Config, error) {
	currentConfig := DefaultConfig

	if err := viper.Unmarshal(&currentConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := validateAndCreateDirs(&currentConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %v", err)
	}

	return &currentConfig, nil
}

func validateAndCreateDirs(config *Config) error {
	config.DataDir = strings.TrimSpace(config.DataDir)
	if config.DataDir == "" {
		return fmt.Errorf("datadir cannot be empty")
	}
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory '%s': %v", config.DataDir, err)
	}
	if err := os.MkdirAll(filepath.Join(config.DataDir, "chaindata"), 0755); err != nil {
		return fmt.Errorf("failed to create chaindata directory: %v", err)
	}

	if _, err := params.ByName(config.Network); err != nil {
		return err
	}

	if config.RPCPort <= 0 || config.RPCPort > 65535 {
		return fmt.Errorf("invalid RPC port: %d. Must be between 1 and 65535", config.RPCPort)
	}

	if config.Cache <= 0 {
		logger.Warningf("LevelDB cache size is invalid (%d MB), using default: %d MB", config.Cache, DefaultConfig.Cache)
		config.Cache = DefaultConfig.Cache
	}
	if config.Handles <= 0 {
		logger.Warningf("LevelDB handles count is invalid (%d), using default: %d", config.Handles, DefaultConfig.Handles)
		config.Handles = DefaultConfig.Handles
	}

	return nil
}

// ChainDataDir returns the directory holding the header store.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, "chaindata")
}

// Params resolves the configured network to its consensus parameters.
func (c *Config) Params() (*params.Params, error) {
	return params.ByName(c.Network)
}

func (c *Config) GetLogLevel() logger.LogLevel {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "trace":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warn", "warning":
		return logger.WARNING
	case "error":
		return logger.ERROR
	case "fatal":
		return logger.FATAL
	default:
		switch c.Verbosity {
		case 0, 1:
			return logger.ERROR
		case 2:
			return logger.WARNING
		case 4, 5:
			return logger.DEBUG
		default:
			return logger.INFO
		}
	}
}
