package config

import (
	"os"

	"github.com/dmitrijs2005/countdown/internal/configx"
	"github.com/dmitrijs2005/countdown/internal/flagx"
	"github.com/dmitrijs2005/countdown/internal/timex"
)

// JsonConfig is a DTO used exclusively for config file unmarshalling (JSON
// or YAML, see configx).
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL       string         `json:"server_url" yaml:"server_url"`
	SecretKey       string         `json:"secret_key" yaml:"secret_key"`
	RefreshInterval timex.Duration `json:"refresh_interval" yaml:"refresh_interval"`
	RequestTimeout  timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	Watch           *bool          `json:"watch" yaml:"watch"`
	LogFile         string         `json:"log_file" yaml:"log_file"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Absent keys keep their current value. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := configx.Decode(jsonConfigFile, data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.RefreshInterval.Duration != 0 {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.Watch != nil {
		cfg.Watch = *jc.Watch
	}
}
