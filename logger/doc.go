// Package logger provides structured logging for beankit applications
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("container")
//	log.Info("component registered", logger.Fields("component", "UserService"))
package logger
