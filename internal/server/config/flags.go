package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/countdown/internal/flagx"
)

var (
	serverFlags = []string{
		"a", "m", "d", "s", "u", "p", "b", "g", "e", "k", "r", "w", "t", "l", "f",
		"path-style", "public-read", "conditional-writes",
	}
	serverBoolFlags = []string{"path-style", "public-read", "conditional-writes"}
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   storage backend: s3, postgres or memory
//	-d string   PostgreSQL DSN
//	-s string   bearer token HMAC secret (empty disables auth)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string   timers document key
//	-r int      read retry attempts
//	-w int      read retry backoff, milliseconds
//	-t int      HTTP request timeout, seconds
//	-l string   log level
//	-f string   rotating log file
//	-path-style, -public-read, -conditional-writes   booleans
//
// Only the flags above are taken from os.Args (see flagx.FilterArgs), so the
// -c/-config flag of the JSON layer does not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags, serverBoolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (s3, postgres, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "bearer token secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.S3UsePathStyle, "path-style", config.S3UsePathStyle, "use path-style S3 addressing")

	fs.StringVar(&config.TimersKey, "k", config.TimersKey, "timers document key")
	fs.BoolVar(&config.PublicRead, "public-read", config.PublicRead, "store the timers document with a public-read ACL")
	fs.BoolVar(&config.ConditionalWrites, "conditional-writes", config.ConditionalWrites, "send the last-read version with writes and create only if absent")

	fs.IntVar(&config.ReadRetryAttempts, "r", config.ReadRetryAttempts, "read retry attempts")
	readRetryBackoff := fs.Int("w", int(config.ReadRetryBackoff.Milliseconds()), "read retry backoff (in milliseconds)")
	requestTimeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "f", config.LogFile, "log file (rotated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations from the file layer may carry sub-second parts, so they are
	// replaced only by flags that were given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			config.ReadRetryBackoff = time.Duration(*readRetryBackoff) * time.Millisecond
		case "t":
			config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
}
