// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. One file serves both binaries: the console client reads
// the server.ws_url and connection sections, the dev game server reads
// server.listen_addr.
package config
