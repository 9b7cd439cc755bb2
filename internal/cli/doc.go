// Package cli provides command-line interface setup and configuration
// for the polyglot application. It handles flag parsing, command
// creation, configuration through viper and credential loading from the
// environment.
package cli
