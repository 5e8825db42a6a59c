package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the bridge daemon configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Indexer    IndexerConfig    `mapstructure:"indexer"`
	Signer     SignerConfig     `mapstructure:"signer"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Chains     []ChainRPCConfig `mapstructure:"chains"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// IndexerConfig contains settings for the bridge indexer REST API
type IndexerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SignerConfig contains settings for the external (EOA) signer
type SignerConfig struct {
	PrivateKey     string        `mapstructure:"private_key"`
	GasLimit       uint64        `mapstructure:"gas_limit"`
	MaxGasPrice    string        `mapstructure:"max_gas_price"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
}

// BridgeConfig contains bridge flow settings
type BridgeConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	ActivityPageSize int           `mapstructure:"activity_page_size"`
}

// ChainRPCConfig overrides the RPC endpoint for a registered chain
type ChainRPCConfig struct {
	ChainID uint64 `mapstructure:"chain_id"`
	RPCURL  string `mapstructure:"rpc_url"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "zchain_bridge")

	// Indexer defaults
	viper.SetDefault("indexer.request_timeout", "30s")

	// Signer defaults
	viper.SetDefault("signer.gas_limit", 500000)
	viper.SetDefault("signer.receipt_timeout", "5m")

	// Bridge defaults
	viper.SetDefault("bridge.poll_interval", "5s")
	viper.SetDefault("bridge.activity_page_size", 20)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_port", 9090)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Indexer.BaseURL == "" {
		return fmt.Errorf("indexer.base_url is required")
	}
	if config.Bridge.PollInterval <= 0 {
		return fmt.Errorf("bridge.poll_interval must be positive")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
