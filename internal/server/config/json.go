package config

import (
	"os"

	"github.com/dmitrijs2005/countdown/internal/configx"
	"github.com/dmitrijs2005/countdown/internal/flagx"
	"github.com/dmitrijs2005/countdown/internal/timex"
)

// JsonConfig mirrors Config for config files, JSON or YAML (see configx).
// Pointer fields tell an explicit false or zero apart from an absent key;
// durations use timex.Duration so both "500ms" and integer nanoseconds are
// accepted.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	StorageBackend    string         `json:"storage_backend" yaml:"storage_backend"`
	DatabaseDSN       string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	S3RootUser        string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3UsePathStyle    *bool          `json:"s3_use_path_style" yaml:"s3_use_path_style"`
	TimersKey         string         `json:"timers_key" yaml:"timers_key"`
	PublicRead        *bool          `json:"public_read" yaml:"public_read"`
	ConditionalWrites *bool          `json:"conditional_writes" yaml:"conditional_writes"`
	ReadRetryAttempts *int           `json:"read_retry_attempts" yaml:"read_retry_attempts"`
	ReadRetryBackoff  timex.Duration `json:"read_retry_backoff" yaml:"read_retry_backoff"`
	RequestTimeout    timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogFile           string         `json:"log_file" yaml:"log_file"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Keys missing from the file keep their current value. An unreadable
// file or invalid JSON panics: a broken config must stop startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := configx.Decode(jsonConfigFile, data, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.TimersKey, c.TimersKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)

	if c.S3UsePathStyle != nil {
		config.S3UsePathStyle = *c.S3UsePathStyle
	}
	if c.PublicRead != nil {
		config.PublicRead = *c.PublicRead
	}
	if c.ConditionalWrites != nil {
		config.ConditionalWrites = *c.ConditionalWrites
	}
	if c.ReadRetryAttempts != nil {
		config.ReadRetryAttempts = *c.ReadRetryAttempts
	}
	if c.ReadRetryBackoff.Duration != 0 {
		config.ReadRetryBackoff = c.ReadRetryBackoff.Duration
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
