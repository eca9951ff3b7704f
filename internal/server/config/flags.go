package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":3001")
//	-d string    PostgreSQL DSN
//	-s string    session token HMAC secret
//	-t int       session token validity, minutes
//	-w string    wallet daemon base URL
//	-wt int      wallet call timeout, seconds
//	-pr string   prover daemon base URL
//	-pt int      prover call timeout, seconds
//	-gu string   Gemini API base URL
//	-gk string   Gemini API key
//	-gm string   Gemini model name
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-w", "-wt", "-pr", "-pt",
		"-gu", "-gk", "-gm", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session token secret")

	tokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&config.WalletDaemonURL, "w", config.WalletDaemonURL, "wallet daemon base URL")
	walletTimeout := fs.Int("wt", int(config.WalletTimeout.Seconds()), "wallet call timeout (in seconds)")

	fs.StringVar(&config.ProverURL, "pr", config.ProverURL, "prover daemon base URL")
	proverTimeout := fs.Int("pt", int(config.ProverTimeout.Seconds()), "prover call timeout (in seconds)")

	fs.StringVar(&config.GeminiBaseURL, "gu", config.GeminiBaseURL, "Gemini API base URL")
	fs.StringVar(&config.GeminiAPIKey, "gk", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.GeminiModel, "gm", config.GeminiModel, "Gemini model name")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.WalletTimeout = time.Duration(*walletTimeout) * time.Second
	config.ProverTimeout = time.Duration(*proverTimeout) * time.Second
}
