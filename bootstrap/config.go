package bootstrap

import (
	"github.com/beankit/beankit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig automatically satisfies this
// interface via promoted methods.
//
// Example:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    HTTP                 HTTPConfig `yaml:"http" mapstructure:"http"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
