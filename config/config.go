package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// a type with service configuration parameters
type serviceConfig struct {
	// Port on which the service listens
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"maxConnections" yaml:"max_connections"`
}

// global config variables
var Service serviceConfig
var ENA enaConfig
var Logging loggingConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service serviceConfig `yaml:"service"`
	ENA     enaConfig     `yaml:"ena"`
	Logging loggingConfig `yaml:"logging"`
}

// returns a configuration with all defaults in place
func defaultConfig() configFile {
	var conf configFile
	conf.Service.Port = 8080
	conf.Service.MaxConnections = 100
	conf.ENA.SummaryURL = defaultSummaryURL
	conf.ENA.Timeout = defaultTimeout
	conf.Logging.Level = "info"
	return conf
}

// This helper reads configuration data, returning an error indicating success
// or failure. All environment variables of the form ${ENV_VAR} are expanded.
// Unknown fields are rejected.
func readConfig(data []byte) error {
	// Before we do anything else, expand any provided environment variables.
	data = []byte(os.ExpandEnv(string(data)))

	conf := defaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&conf)
	if err != nil && !errors.Is(err, io.EOF) { // empty input gives defaults
		slog.Error("Couldn't parse configuration data", "error", err)
		return err
	}

	// copy the config data into place
	Service = conf.Service
	ENA = conf.ENA
	Logging = conf.Logging

	return nil
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid max_connections: %d (must be positive)",
			params.MaxConnections)
	}
	return nil
}

// This helper validates the configuration, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}
	err = validateENAParameters(ENA)
	if err != nil {
		return err
	}
	return validateLoggingParameters(Logging)
}

// Initializes the configuration using the given YAML byte data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
