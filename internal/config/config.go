package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Sources   SourcesConfig   `mapstructure:"sources"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// AnalysisConfig tunes the scanning pipeline
type AnalysisConfig struct {
	ExpandShortened  bool          `mapstructure:"expand_shortened"`
	ExpandTimeout    time.Duration `mapstructure:"expand_timeout"`
	DecodeAPIEnabled bool          `mapstructure:"decode_api_enabled"`
	DecodeAPIURL     string        `mapstructure:"decode_api_url"`
	DecodeAPITimeout time.Duration `mapstructure:"decode_api_timeout"`
}

// SourcesConfig holds external reputation source settings
type SourcesConfig struct {
	CacheTTL     time.Duration      `mapstructure:"cache_ttl"`
	VirusTotal   VirusTotalConfig   `mapstructure:"virustotal"`
	SafeBrowsing SafeBrowsingConfig `mapstructure:"safebrowsing"`
	URLhaus      URLhausConfig      `mapstructure:"urlhaus"`
}

type VirusTotalConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	PollDelay time.Duration `mapstructure:"poll_delay"`
}

type SafeBrowsingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

type URLhausConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	AuthKey string `mapstructure:"auth_key"`
}

// Load reads configuration from the given file, falling back to the
// default search path and built-in defaults when the file is absent
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/qrshield")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("QRSHIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("app.environment", "QRSHIELD_APP_ENVIRONMENT")
	v.BindEnv("server.host", "QRSHIELD_SERVER_HOST")
	v.BindEnv("server.http_port", "QRSHIELD_SERVER_HTTP_PORT")
	v.BindEnv("logger.level", "QRSHIELD_LOGGER_LEVEL")
	v.BindEnv("redis.enabled", "QRSHIELD_REDIS_ENABLED")
	v.BindEnv("redis.host", "QRSHIELD_REDIS_HOST")
	v.BindEnv("redis.port", "QRSHIELD_REDIS_PORT")
	v.BindEnv("redis.password", "QRSHIELD_REDIS_PASSWORD")
	v.BindEnv("auth.enabled", "QRSHIELD_AUTH_ENABLED")
	v.BindEnv("sources.virustotal.api_key", "QRSHIELD_SOURCES_VIRUSTOTAL_API_KEY")
	v.BindEnv("sources.safebrowsing.api_key", "QRSHIELD_SOURCES_SAFEBROWSING_API_KEY")
	v.BindEnv("sources.urlhaus.auth_key", "QRSHIELD_SOURCES_URLHAUS_AUTH_KEY")

	// A missing config file on the search path is fine; explicitly named
	// files must exist
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "qrshield")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-API-Key"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 60)

	v.SetDefault("auth.enabled", false)

	v.SetDefault("analysis.expand_shortened", true)
	v.SetDefault("analysis.expand_timeout", "10s")
	v.SetDefault("analysis.decode_api_enabled", false)
	v.SetDefault("analysis.decode_api_timeout", "15s")

	v.SetDefault("sources.cache_ttl", "1h")
	v.SetDefault("sources.virustotal.enabled", false)
	v.SetDefault("sources.virustotal.poll_delay", "3s")
	v.SetDefault("sources.safebrowsing.enabled", false)
	v.SetDefault("sources.urlhaus.enabled", false)
}
