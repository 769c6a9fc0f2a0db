// Package config loads service configuration for pipeline hosts.
//
// It uses Viper to load configuration from files and environment variables,
// and godotenv for .env files.
//
// # Usage
//
//	var cfg bootstrap.Config
//	err := config.LoadConfig("camera-pipeline", &cfg)
//
// Environment variables override file values using the APP_ prefix with
// underscore-separated paths (e.g., APP_PIPELINE_CAPACITY). A cfg that
// implements Config has its defaults applied and is validated after loading.
package config
