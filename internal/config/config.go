package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source names accepted by dashboard.source
const (
	SourceGraph   = "graph"   // enriched multi-hop traversal over the graph
	SourceCounts  = "counts"  // count-based fallback over the graph
	SourceBackend = "backend" // rows reshaped from the external backend
)

// Config holds all configuration settings
type Config struct {
	Neo4j     Neo4jConfig     `yaml:"neo4j" mapstructure:"neo4j"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Backend   BackendConfig   `yaml:"backend" mapstructure:"backend"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Broadcast BroadcastConfig `yaml:"broadcast" mapstructure:"broadcast"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

type Neo4jConfig struct {
	URI         string `yaml:"uri" mapstructure:"uri"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	Database    string `yaml:"database" mapstructure:"database"`
	MaxPoolSize int    `yaml:"max_pool_size" mapstructure:"max_pool_size"`
}

type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	CORSOrigins    []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
}

type BackendConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit int           `yaml:"rate_limit" mapstructure:"rate_limit"` // Requests per second
}

type DashboardConfig struct {
	Source string `yaml:"source" mapstructure:"source"` // "graph", "counts", "backend"
}

type BroadcastConfig struct {
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"` // Empty = in-process only
	Channel   string `yaml:"channel" mapstructure:"channel"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			Database:    "neo4j",
			MaxPoolSize: 50,
		},
		Server: ServerConfig{
			Port:           3001,
			RequestTimeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			Timeout:   15 * time.Second,
			RateLimit: 10,
		},
		Dashboard: DashboardConfig{
			Source: SourceGraph,
		},
		Broadcast: BroadcastConfig{
			Channel: "chaindash:summary",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env files and the environment.
// Missing config files are not an error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("neo4j", cfg.Neo4j)
	v.SetDefault("server", cfg.Server)
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("dashboard", cfg.Dashboard)
	v.SetDefault("broadcast", cfg.Broadcast)
	v.SetDefault("log", cfg.Log)

	v.SetEnvPrefix("CHAINDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("chaindash")
		v.AddConfigPath(".chaindash")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".chaindash"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence.
// godotenv never overrides variables that are already set.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// applyEnvOverrides applies the conventional environment variable names on top of
// whatever viper resolved
func applyEnvOverrides(cfg *Config) {
	cfg.Neo4j.URI = GetString("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.Username = GetString("NEO4J_USERNAME", GetString("NEO4J_USER", cfg.Neo4j.Username))
	cfg.Neo4j.Password = GetString("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = GetString("NEO4J_DATABASE", cfg.Neo4j.Database)
	cfg.Neo4j.MaxPoolSize = GetInt("NEO4J_MAX_POOL_SIZE", cfg.Neo4j.MaxPoolSize)

	cfg.Server.Port = GetInt("SERVER_PORT", cfg.Server.Port)
	if secs := GetInt("REQUEST_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.Server.RequestTimeout = time.Duration(secs) * time.Second
	}
	if origins := GetString("CORS_ORIGINS", ""); origins != "" {
		cfg.Server.CORSOrigins = SplitList(origins)
	}

	cfg.Backend.BaseURL = strings.TrimRight(GetString("BACKEND_BASE_URL", cfg.Backend.BaseURL), "/")
	cfg.Backend.Timeout = GetDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)
	cfg.Backend.RateLimit = GetInt("BACKEND_RATE_LIMIT", cfg.Backend.RateLimit)

	cfg.Dashboard.Source = strings.ToLower(GetString("DASHBOARD_SOURCE", cfg.Dashboard.Source))

	cfg.Broadcast.RedisAddr = GetString("REDIS_ADDR", cfg.Broadcast.RedisAddr)

	cfg.Log.Level = GetString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.JSON = GetBool("LOG_JSON", cfg.Log.JSON)
	cfg.Log.File = GetString("LOG_FILE", cfg.Log.File)
}

// Masked returns a copy of the config that is safe to print
func (c *Config) Masked() *Config {
	cp := *c
	if cp.Neo4j.Password != "" {
		cp.Neo4j.Password = "********"
	}
	return &cp
}
