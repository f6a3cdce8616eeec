package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Node:      NodeConfig{Host: "n0", Port: 5000},
		DHT:       DHTConfig{MBits: 10, StabilizeInterval: time.Second, JoinRetryInterval: time.Second, RPCTimeout: time.Second},
		Storage:   StorageConfig{Path: "/tmp/chordfs"},
		Logger:    LoggerConfig{Level: "info", Encoding: "json", Mode: "stdout"},
		Transport: TransportConfig{Kind: "http"},
	}
}

func TestValidateConfigAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() = %v, want nil", err)
	}
}

func TestValidateConfigRejectsMBitsOutOfRange(t *testing.T) {
	for _, m := range []uint{0, 64, 200} {
		cfg := validConfig()
		cfg.DHT.MBits = m
		if err := cfg.ValidateConfig(); err == nil {
			t.Errorf("ValidateConfig() with MBits=%d = nil, want error", m)
		}
	}
}

func TestValidateConfigRejectsMissingStoragePath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Path = ""
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("ValidateConfig() with empty storage.path = nil, want error")
	}
}

func TestValidateConfigRejectsPartialBootstrap(t *testing.T) {
	cfg := validConfig()
	cfg.Bootstrap = BootstrapConfig{Host: "peer", Port: 0}
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("ValidateConfig() with partial bootstrap = nil, want error")
	}
}

func TestValidateConfigAcceptsEmptyBootstrapAsSoloRing(t *testing.T) {
	cfg := validConfig()
	if cfg.HasBootstrap() {
		t.Fatal("empty bootstrap should not report HasBootstrap")
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() with empty bootstrap = %v, want nil", err)
	}
}

func TestValidateConfigRejectsBadLoggerMode(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Mode = "carrier-pigeon"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("ValidateConfig() with invalid logger.mode = nil, want error")
	}
}

func TestValidateConfigRequiresFilePathWhenModeIsFile(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Mode = "file"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("ValidateConfig() with logger.mode=file and empty path = nil, want error")
	}
	cfg.Logger.File.Path = "/var/log/chordfs.log"
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() with logger.mode=file and a path set = %v, want nil", err)
	}
}

func TestValidateConfigRejectsBadTransportKind(t *testing.T) {
	cfg := validConfig()
	cfg.Transport.Kind = "carrier-pigeon"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("ValidateConfig() with invalid transport.kind = nil, want error")
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordnode.yaml")
	yamlDoc := `
node:
  host: n0
  port: 5000
dht:
  mBits: 10
  stabilizeInterval: 1s
  joinRetryInterval: 2s
  rpcTimeout: 3s
storage:
  path: /tmp/chordfs
logger:
  level: info
  encoding: json
  mode: stdout
transport:
  kind: http
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Node.Host != "n0" || cfg.Node.Port != 5000 {
		t.Fatalf("Node = %+v, want host n0 port 5000", cfg.Node)
	}
	if cfg.DHT.MBits != 10 {
		t.Fatalf("DHT.MBits = %d, want 10", cfg.DHT.MBits)
	}
	if cfg.DHT.RPCTimeout != 3*time.Second {
		t.Fatalf("DHT.RPCTimeout = %v, want 3s", cfg.DHT.RPCTimeout)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() on loaded config = %v, want nil", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := validConfig()
	t.Setenv("CHORDFS_NODE_HOST", "overridden-host")
	t.Setenv("CHORDFS_NODE_PORT", "6000")
	t.Setenv("CHORDFS_DHT_MBITS", "12")
	t.Setenv("CHORDFS_STORAGE_PATH", "/override/path")
	t.Setenv("CHORDFS_TRANSPORT_KIND", "grpc")

	cfg.ApplyEnvOverrides()

	if cfg.Node.Host != "overridden-host" {
		t.Errorf("Node.Host = %q, want %q", cfg.Node.Host, "overridden-host")
	}
	if cfg.Node.Port != 6000 {
		t.Errorf("Node.Port = %d, want 6000", cfg.Node.Port)
	}
	if cfg.DHT.MBits != 12 {
		t.Errorf("DHT.MBits = %d, want 12", cfg.DHT.MBits)
	}
	if cfg.Storage.Path != "/override/path" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "/override/path")
	}
	if cfg.Transport.Kind != "grpc" {
		t.Errorf("Transport.Kind = %q, want %q", cfg.Transport.Kind, "grpc")
	}
}

func TestApplyEnvOverridesIgnoresInvalidIntegers(t *testing.T) {
	cfg := validConfig()
	original := cfg.Node.Port
	t.Setenv("CHORDFS_NODE_PORT", "not-a-number")
	cfg.ApplyEnvOverrides()
	if cfg.Node.Port != original {
		t.Fatalf("Node.Port = %d, want unchanged %d when env value is not an integer", cfg.Node.Port, original)
	}
}
