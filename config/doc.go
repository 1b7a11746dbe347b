// Package config loads service configuration from YAML files and
// environment variables.
//
// It uses Viper for file parsing and godotenv for .env support. Config
// and .env files are discovered in standard locations relative to the
// working directory, or given explicitly through loader options.
//
// # Usage
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    HTTP                 HTTPConfig `yaml:"http" mapstructure:"http"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("my-service", &cfg)
//
// Environment variables override file values. SERVER_PORT binds to both
// server_port and server.port, so flat env vars reach nested keys.
package config
