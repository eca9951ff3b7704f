package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/proofpay/internal/flagx"
	"github.com/dmitrijs2005/proofpay/internal/timex"
)

// JsonConfig is the DTO for reading the optional JSON configuration file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags. Fields absent from the file keep their current values.
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

	if c.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}
