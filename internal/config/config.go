// Package config loads, validates, and logs a node's YAML configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chordfs/chordfs/internal/logger"
)

// NodeConfig identifies this node's own address, and optionally pins its
// ring ID instead of deriving it from Host:Port.
type NodeConfig struct {
	Host string  `yaml:"host"`
	Port int     `yaml:"port"`
	ID   *uint64 `yaml:"id"`
}

// BootstrapConfig names a peer to join through. Both fields empty means
// this node forms a solo ring.
type BootstrapConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DHTConfig holds the ring protocol's tunables.
type DHTConfig struct {
	MBits             uint          `yaml:"mBits"`
	StabilizeInterval time.Duration `yaml:"stabilizeInterval"`
	JoinRetryInterval time.Duration `yaml:"joinRetryInterval"`
	RPCTimeout        time.Duration `yaml:"rpcTimeout"`
	PredecessorCheck  bool          `yaml:"predecessorCheck"`
	MaxLookupHops     int           `yaml:"maxLookupHops"`
}

// StorageConfig points at the local blob store's root directory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// FileLoggerConfig configures lumberjack-backed file rotation, used when
// LoggerConfig.Mode == "file".
type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// LoggerConfig configures the zap-backed logger adapter.
type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

// TransportConfig selects which concrete Transport a node boots with.
type TransportConfig struct {
	Kind string `yaml:"kind"` // "http" or "grpc"
}

// Config is the full node configuration, as loaded from YAML.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	DHT       DHTConfig       `yaml:"dht"`
	Storage   StorageConfig   `yaml:"storage"`
	Logger    LoggerConfig    `yaml:"logger"`
	Transport TransportConfig `yaml:"transport"`
}

// HasBootstrap reports whether a bootstrap peer was configured; when false
// the node forms a solo ring.
func (cfg Config) HasBootstrap() bool {
	return cfg.Bootstrap.Host != "" && cfg.Bootstrap.Port != 0
}

// LoadConfig reads and parses the YAML file at path. It performs only
// syntactic parsing; call ApplyEnvOverrides then ValidateConfig before use.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnvOverrides overrides selected fields from CHORDFS_<SECTION>_<FIELD>
// environment variables, for the fields a deployment is most likely to need
// to override without editing the YAML file on disk.
//
//	CHORDFS_NODE_HOST              -> Node.Host
//	CHORDFS_NODE_PORT              -> Node.Port
//	CHORDFS_BOOTSTRAP_HOST         -> Bootstrap.Host
//	CHORDFS_BOOTSTRAP_PORT         -> Bootstrap.Port
//	CHORDFS_DHT_MBITS              -> DHT.MBits
//	CHORDFS_DHT_STABILIZE_INTERVAL -> DHT.StabilizeInterval
//	CHORDFS_DHT_RPC_TIMEOUT        -> DHT.RPCTimeout
//	CHORDFS_STORAGE_PATH           -> Storage.Path
//	CHORDFS_LOGGER_LEVEL           -> Logger.Level
//	CHORDFS_LOGGER_MODE            -> Logger.Mode
//	CHORDFS_LOGGER_FILE_PATH       -> Logger.File.Path
//	CHORDFS_TRANSPORT_KIND         -> Transport.Kind
func (cfg *Config) ApplyEnvOverrides() {
	overrideString(&cfg.Node.Host, "CHORDFS_NODE_HOST")
	overrideInt(&cfg.Node.Port, "CHORDFS_NODE_PORT")
	overrideString(&cfg.Bootstrap.Host, "CHORDFS_BOOTSTRAP_HOST")
	overrideInt(&cfg.Bootstrap.Port, "CHORDFS_BOOTSTRAP_PORT")
	overrideUint(&cfg.DHT.MBits, "CHORDFS_DHT_MBITS")
	overrideDuration(&cfg.DHT.StabilizeInterval, "CHORDFS_DHT_STABILIZE_INTERVAL")
	overrideDuration(&cfg.DHT.RPCTimeout, "CHORDFS_DHT_RPC_TIMEOUT")
	overrideString(&cfg.Storage.Path, "CHORDFS_STORAGE_PATH")
	overrideString(&cfg.Logger.Level, "CHORDFS_LOGGER_LEVEL")
	overrideString(&cfg.Logger.Mode, "CHORDFS_LOGGER_MODE")
	overrideString(&cfg.Logger.File.Path, "CHORDFS_LOGGER_FILE_PATH")
	overrideString(&cfg.Transport.Kind, "CHORDFS_TRANSPORT_KIND")
}

func overrideString(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = v
	}
}

func overrideInt(field *int, env string) {
	if v := os.Getenv(env); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*field = i
		}
	}
}

func overrideUint(field *uint, env string) {
	if v := os.Getenv(env); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			*field = uint(i)
		}
	}
}

func overrideDuration(field *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*field = d
		}
	}
}

// ValidateConfig performs structural validation: required fields, ranges,
// and enum-like values. It does not second-guess protocol parameters (e.g.
// whether MBits is "large enough" for the cluster) beyond what would make
// the ring arithmetic ill-defined.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	if cfg.Node.Host == "" {
		errs = append(errs, "node.host is required")
	}
	if cfg.Node.Port <= 0 || cfg.Node.Port > 65535 {
		errs = append(errs, fmt.Sprintf("node.port must be in (0,65535], got %d", cfg.Node.Port))
	}

	if cfg.Bootstrap.Host != "" || cfg.Bootstrap.Port != 0 {
		if cfg.Bootstrap.Host == "" || cfg.Bootstrap.Port <= 0 {
			errs = append(errs, "bootstrap.host and bootstrap.port must both be set, or both left empty")
		}
	}

	// MBits's upper bound is 63, not 64: ring coordinates are plain
	// uint64, and m=64 would require computing 1<<64, which Go defines
	// as 0 for a uint64 shift count equal to its width.
	if cfg.DHT.MBits == 0 || cfg.DHT.MBits > 63 {
		errs = append(errs, fmt.Sprintf("dht.mBits must be in [1,63], got %d", cfg.DHT.MBits))
	}
	if cfg.DHT.StabilizeInterval <= 0 {
		errs = append(errs, "dht.stabilizeInterval must be > 0")
	}
	if cfg.DHT.JoinRetryInterval <= 0 {
		errs = append(errs, "dht.joinRetryInterval must be > 0")
	}
	if cfg.DHT.RPCTimeout <= 0 {
		errs = append(errs, "dht.rpcTimeout must be > 0")
	}
	if cfg.DHT.MaxLookupHops < 0 {
		errs = append(errs, "dht.maxLookupHops must be >= 0")
	}

	if cfg.Storage.Path == "" {
		errs = append(errs, "storage.path is required")
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when logger.mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	switch cfg.Transport.Kind {
	case "http", "grpc":
	default:
		errs = append(errs, fmt.Sprintf("invalid transport.kind: %s (must be http or grpc)", cfg.Transport.Kind))
	}

	if cfg.Bootstrap.Host != "" {
		if _, _, err := net.SplitHostPort(net.JoinHostPort(cfg.Bootstrap.Host, strconv.Itoa(cfg.Bootstrap.Port))); err != nil {
			errs = append(errs, fmt.Sprintf("invalid bootstrap address: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig logs the fully resolved configuration at debug level, useful
// for diagnosing startup issues without guessing what was actually loaded.
func (cfg *Config) LogConfig(log logger.Logger) {
	log.Debug("loaded configuration",
		logger.F("node.host", cfg.Node.Host),
		logger.F("node.port", cfg.Node.Port),
		logger.F("node.id", cfg.Node.ID),
		logger.F("bootstrap.host", cfg.Bootstrap.Host),
		logger.F("bootstrap.port", cfg.Bootstrap.Port),
		logger.F("dht.mBits", cfg.DHT.MBits),
		logger.F("dht.stabilizeInterval", cfg.DHT.StabilizeInterval.String()),
		logger.F("dht.joinRetryInterval", cfg.DHT.JoinRetryInterval.String()),
		logger.F("dht.rpcTimeout", cfg.DHT.RPCTimeout.String()),
		logger.F("dht.predecessorCheck", cfg.DHT.PredecessorCheck),
		logger.F("dht.maxLookupHops", cfg.DHT.MaxLookupHops),
		logger.F("storage.path", cfg.Storage.Path),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("logger.file.path", cfg.Logger.File.Path),
		logger.F("transport.kind", cfg.Transport.Kind),
	)
}
