package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	PLC     PLCConfig     `mapstructure:"plc"`
	Tags    TagsConfig    `mapstructure:"tags"`
	Polling PollingConfig `mapstructure:"polling"`
}

type PLCConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	UnitID  int           `mapstructure:"unit_id"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TagsConfig struct {
	Filepath string `mapstructure:"filepath"`
}

type PollingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Defaults setzen
	viper.SetDefault("plc.port", 502)
	viper.SetDefault("plc.unit_id", 1)
	viper.SetDefault("plc.timeout", "1s")
	viper.SetDefault("polling.interval", "1s")

	// Environment Variables automatisch binden (Viper Feature)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLC") // Environment Variables mit Prefix PLC_

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Address returns the host:port dial target of the PLC.
func (c *PLCConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
