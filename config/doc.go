// Package config loads a debug session's configuration from command
// line flags, CORTEXDBG_-prefixed environment variables, and an
// optional TOML file, in that order of precedence, using
// github.com/spf13/viper. This replaces the teacher's bespoke prefs
// package, which has no counterpart here: there is no GUI settings
// panel to persist, only a session's static launch configuration.
package config
