package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/countdown/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the timers server
//	-s string   shared secret for bearer tokens
//	-i int      watch mode refresh interval in seconds
//	-t int      request timeout in seconds
//	-w          start in watch mode
//	-f string   rotating log file
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"a", "s", "i", "t", "w", "f"}, "w")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the timers server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "shared secret for bearer tokens")
	refreshInterval := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "watch refresh interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Watch, "w", cfg.Watch, "watch timers with a live countdown")
	fs.StringVar(&cfg.LogFile, "f", cfg.LogFile, "log file (rotated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only given flags replace durations, which may be sub-second in a file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
}
