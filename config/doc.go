// Package config loads rpckit client configuration from YAML files and the
// environment.
//
// LoadConfig merges, in order: a config.yml (explicit path or a standard
// search location), a .env file, and RPCKIT_-prefixed environment variables.
// The result is unmarshaled into the caller's struct via mapstructure tags.
package config
