// Package config loads process configuration: where to listen, where the
// store lives, and the genesis marketplace configuration applied on first
// start.
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Genesis is the marketplace configuration persisted on first start. Later
// changes go through the admin update operation, not this file.
type Genesis struct {
	Admin         string  `mapstructure:"admin"`
	RegistryAddr  string  `mapstructure:"registry_addr"`
	AllowedNative *string `mapstructure:"allowed_native"`
	AllowedAsset  *string `mapstructure:"allowed_asset"`
	FeeRate       string  `mapstructure:"fee_rate"`
	CollectorAddr string  `mapstructure:"collector_addr"`
}

// FeeRateDecimal parses the configured fee rate.
func (g Genesis) FeeRateDecimal() (decimal.Decimal, error) {
	if g.FeeRate == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(g.FeeRate)
}

// AppConfig is the full process configuration.
type AppConfig struct {
	ListenAddr string  `mapstructure:"listen_addr"`
	DataDir    string  `mapstructure:"data_dir"`
	LogLevel   string  `mapstructure:"log_level"`
	Genesis    Genesis `mapstructure:"genesis"`
}

// Load reads configuration from path when given, otherwise from
// marketplace.yaml in the usual search paths, with MARKETPLACE_* environment
// overrides. Missing files fall back to defaults.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("marketplace")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/marketplace")
	}
	v.SetEnvPrefix("MARKETPLACE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
