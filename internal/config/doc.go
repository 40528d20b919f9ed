// Package config holds the settings every component is constructed with.
//
// Values come from built-in defaults, then an optional YAML file, then
// environment variables; the CLI applies its flags last. Secrets (API keys
// and tokens) are only ever read from the environment.
package config
