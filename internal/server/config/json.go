package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/flagx"
	"github.com/dmitrijs2005/proofpay/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, non-empty fields are copied
// into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SessionSecret                string         `json:"session_secret"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	WalletDaemonURL              string         `json:"wallet_daemon_url"`
	WalletTimeout                timex.Duration `json:"wallet_timeout"`
	ProverURL                    string         `json:"prover_url"`
	ProverTimeout                timex.Duration `json:"prover_timeout"`
	GeminiBaseURL                string         `json:"gemini_base_url"`
	GeminiAPIKey                 string         `json:"gemini_api_key"`
	GeminiModel                  string         `json:"gemini_model"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. Fields absent from the file keep
// their current values. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	applyDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	applyString(&config.EndpointAddr, c.EndpointAddr)
	applyString(&config.DatabaseDSN, c.DatabaseDSN)
	applyString(&config.SessionSecret, c.SessionSecret)
	applyDuration(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration)
	applyString(&config.WalletDaemonURL, c.WalletDaemonURL)
	applyDuration(&config.WalletTimeout, c.WalletTimeout)
	applyString(&config.ProverURL, c.ProverURL)
	applyDuration(&config.ProverTimeout, c.ProverTimeout)
	applyString(&config.GeminiBaseURL, c.GeminiBaseURL)
	applyString(&config.GeminiAPIKey, c.GeminiAPIKey)
	applyString(&config.GeminiModel, c.GeminiModel)
	applyString(&config.S3RootUser, c.S3RootUser)
	applyString(&config.S3RootPassword, c.S3RootPassword)
	applyString(&config.S3Bucket, c.S3Bucket)
	applyString(&config.S3Region, c.S3Region)
	applyString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
