// Package config loads runtime configuration for the countdown CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "secret_key": "",
//	  "refresh_interval": "30s",
//	  "request_timeout": "10s",
//	  "watch": false,
//	  "log_file": ""
//	}
//
// Files ending in .yaml or .yml use the same keys in YAML.
package config
