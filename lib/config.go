package lib

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/units"
)

/* This file implements the 'user controlled' configuration of each module of the node */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath  = "config.json"  // the file path for the node configuration
	GenesisFilePath = "genesis.json" // the file path for the deployment (administrator) file
)

// Config is the structure of the user configuration options for a voting node
type Config struct {
	MainConfig         // main options spanning over all modules
	RPCConfig          // rpc API options
	StateMachineConfig // contract options
	StoreConfig        // persistence options
	ControllerConfig   // local ledger host options
	MetricsConfig      // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:         DefaultMainConfig(),
		RPCConfig:          DefaultRPCConfig(),
		StateMachineConfig: DefaultStateMachineConfig(),
		StoreConfig:        DefaultStoreConfig(),
		ControllerConfig:   DefaultControllerConfig(),
		MetricsConfig:      DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel string `json:"logLevel"` // any level includes the levels above it: debug < info < warning < error
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{LogLevel: "info"}
}

// GetLogLevel() parses the log string in the config file into a log level
func (m *MainConfig) GetLogLevel() int32 {
	switch l := strings.ToLower(m.LogLevel); {
	case strings.Contains(l, "deb"):
		return DebugLevel
	case strings.Contains(l, "inf"):
		return InfoLevel
	case strings.Contains(l, "war"):
		return WarnLevel
	case strings.Contains(l, "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// RPC CONFIG BELOW

type RPCConfig struct {
	RPCPort     string `json:"rpcPort"`     // the port where the rpc server is hosted
	AdminPort   string `json:"adminPort"`   // the port where the admin rpc server is hosted, only reachable from localhost
	RPCUrl      string `json:"rpcURL"`      // the url where the rpc server is hosted
	AdminRPCUrl string `json:"adminRPCUrl"` // the url where the admin rpc server is hosted
	TimeoutS    int    `json:"timeoutS"`    // the rpc request timeout in seconds
	RetryMaxS   int    `json:"retryMaxS"`   // how long a client keeps retrying an unreachable server in seconds
}

// DefaultRPCConfig() serves the rpc on localhost:50002 and the admin rpc on localhost:50003
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCPort:     "50002",
		AdminPort:   "50003",
		RPCUrl:      "http://localhost:50002",
		AdminRPCUrl: "http://localhost:50003",
		TimeoutS:    3,
		RetryMaxS:   10,
	}
}

// STATE MACHINE CONFIG BELOW

// StateMachineConfig holds contract level options that are not part of the on-chain state
type StateMachineConfig struct {
	EligibleVoters uint64 `json:"eligibleVoters"` // the size of the electorate used for turnout; 0 means unknown
}

// DefaultStateMachineConfig() leaves the electorate size unknown
func DefaultStateMachineConfig() StateMachineConfig { return StateMachineConfig{} }

// STORE CONFIG BELOW

// StoreConfig is user configurations for the key value database
type StoreConfig struct {
	DataDirPath      string `json:"dataDirPath"`      // path of the designated folder where the application stores its data
	DBName           string `json:"dbName"`           // name of the database
	InMemory         bool   `json:"inMemory"`         // non-disk database, only for testing
	MemTableSize     int64  `json:"memTableSize"`     // badger memtable size in bytes
	ValueLogFileSize int64  `json:"valueLogFileSize"` // badger value log file size in bytes
}

// DefaultDataDirPath() is $USERHOME/.ballot
func DefaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".ballot")
}

// DefaultStoreConfig() returns the developer recommended store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DataDirPath:      DefaultDataDirPath(),
		DBName:           "ballot",
		InMemory:         false,
		MemTableSize:     int64(16 * units.MiB),
		ValueLogFileSize: int64(64 * units.MiB),
	}
}

// CONTROLLER CONFIG BELOW

// ControllerConfig configures the local host that supplies block heights to the contract
type ControllerConfig struct {
	BlockTimeMS int `json:"blockTimeMS"` // how often the local block clock advances the height; 0 disables the clock
}

// DefaultControllerConfig() advances one block every 10 seconds
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{BlockTimeMS: 10000}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled"`           // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           true,
		PrometheusAddress: "0.0.0.0:9090",
	}
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, jsonBytes, os.ModePerm)
}

// NewConfigFromFile() populates a Config object from a JSON file, using defaults for any missing field
func NewConfigFromFile(filepath string) (Config, error) {
	fileBytes, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, err
	}
	c := DefaultConfig()
	if err = json.Unmarshal(fileBytes, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
