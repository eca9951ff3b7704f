package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   server base URL (e.g., "http://127.0.0.1:3001")
//	-t int      request timeout, seconds
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server base URL")
	requestTimeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
