package config

import "time"

// Config holds runtime settings for the countdown CLI.
//
// Fields:
//   - ServerURL: base URL of the timers HTTP API.
//   - SecretKey: shared HMAC secret used to sign bearer tokens. Empty sends none.
//   - RefreshInterval: how often watch mode reloads timers from the server.
//   - RequestTimeout: per-request HTTP timeout.
//   - Watch: start in watch mode instead of the REPL.
//   - LogFile: rotating log file; when empty, warnings go to stderr.
type Config struct {
	ServerURL       string
	SecretKey       string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	Watch           bool
	LogFile         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SecretKey = ""
	c.RefreshInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.Watch = false
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
