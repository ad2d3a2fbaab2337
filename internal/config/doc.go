// Package config loads notifier configuration.
//
// Two sources are supported:
//   - a YAML file with ${VAR} environment variable interpolation
//   - the process environment alone (REDIS_URL, TELEGRAM_BOT_TOKEN, ...)
//
// A .env file in the working directory is loaded into the environment first
// in both cases. Configuration is read once at startup and never reloaded.
package config
