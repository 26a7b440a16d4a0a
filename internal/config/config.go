// Package config loads optional defaults from a config file.
package config

import (
	"runtime"

	"github.com/spf13/viper"
)

// Config holds file-sourced defaults. Command-line flags override
// every field here.
type Config struct {
	Scan struct {
		SampleSize int      `mapstructure:"sample_size"`
		Excludes   []string `mapstructure:"excludes"`
		Workers    int      `mapstructure:"workers"`
	} `mapstructure:"scan"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

var cfg Config

// Load reads the config file, if any, and returns the merged defaults.
// A missing file is not an error.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath("$HOME/.inodestat")
	viper.AddConfigPath(".")

	viper.SetDefault("scan.sample_size", 20)
	viper.SetDefault("scan.excludes", []string{})
	viper.SetDefault("scan.workers", runtime.NumCPU())
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
