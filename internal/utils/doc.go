// Package utils exposes reusable helpers consumed by reposet commands.
//
// ConfigurationLoader layers the embedded defaults, an optional YAML file, and
// REPOSET_* environment variables through Viper. LoggerFactory builds zap
// loggers in structured or console form. FlushingWriter keeps streamed clone
// progress visible on buffered terminals.
package utils
