// Package logger provides structured logging for stagekit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Info("Starting stage", logger.Fields("stage", 0, "tag", "SUP"))
package logger
