package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server configuration for the operator surface.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WatcherConfig holds the core watching parameters.
type WatcherConfig struct {
	IntervalSeconds           int      `yaml:"interval_seconds"`
	DeltaUSD                  float64  `yaml:"delta_usd"`
	MaxConcurrentWallets      int      `yaml:"max_concurrent_wallets"`
	ErrorTolerant             bool     `yaml:"error_tolerant"`
	TrackedNetworkIdentifiers []string `yaml:"tracked_networks"`
	WalletsFilePath           string   `yaml:"wallets_file"`
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// NotificationConfig holds notification delivery configuration.
type NotificationConfig struct {
	Mode             string     `yaml:"mode"` // "smtp", "webhook" or "noop"
	DefaultRecipient string     `yaml:"default_recipient"`
	SMTP             SMTPConfig `yaml:"smtp"`
	WebhookURL       string     `yaml:"webhook_url"`
}

// PerformanceConfig holds RPC timing and rate-limit configuration.
type PerformanceConfig struct {
	RPCCallTimeoutSeconds int               `yaml:"rpc_call_timeout_seconds"`
	ProbeTimeoutSeconds   int               `yaml:"probe_timeout_seconds"`
	DialTimeoutSeconds    int               `yaml:"dial_timeout_seconds"`
	RPCRatePerSecond      float64           `yaml:"rpc_rate_per_second"`
	RPCOverrides          map[string]string `yaml:"rpc_overrides"` // network identifier -> preferred URL
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Watcher      WatcherConfig      `yaml:"watcher"`
	Notification NotificationConfig `yaml:"notification"`
	Performance  PerformanceConfig  `yaml:"performance"`
}

const (
	// MinIntervalSeconds is the floor for the polling interval; anything lower
	// hammers public RPC endpoints into rate limiting.
	MinIntervalSeconds = 5

	defaultIntervalSeconds  = 60
	defaultDeltaUSD         = 1.0
	defaultMaxConcurrent    = 50
	defaultRPCCallTimeout   = 8
	defaultProbeTimeout     = 4
	defaultDialTimeout      = 6
	defaultRPCRatePerSecond = 10.0
)

// Load reads the YAML configuration file from the given path and unmarshals it,
// filling defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = defaultIntervalSeconds
	}
	if cfg.Watcher.IntervalSeconds < MinIntervalSeconds {
		cfg.Watcher.IntervalSeconds = MinIntervalSeconds
	}
	if cfg.Watcher.DeltaUSD <= 0 {
		cfg.Watcher.DeltaUSD = defaultDeltaUSD
	}
	if cfg.Watcher.MaxConcurrentWallets <= 0 {
		cfg.Watcher.MaxConcurrentWallets = defaultMaxConcurrent
	}
	if cfg.Watcher.WalletsFilePath == "" {
		cfg.Watcher.WalletsFilePath = "data/wallets.txt"
	}

	if cfg.Notification.Mode == "" {
		cfg.Notification.Mode = "noop"
	}
	if cfg.Notification.SMTP.Port == 0 {
		cfg.Notification.SMTP.Port = 587
	}

	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = defaultRPCCallTimeout
	}
	if cfg.Performance.ProbeTimeoutSeconds <= 0 {
		cfg.Performance.ProbeTimeoutSeconds = defaultProbeTimeout
	}
	if cfg.Performance.DialTimeoutSeconds <= 0 {
		cfg.Performance.DialTimeoutSeconds = defaultDialTimeout
	}
	if cfg.Performance.RPCRatePerSecond <= 0 {
		cfg.Performance.RPCRatePerSecond = defaultRPCRatePerSecond
	}
}
