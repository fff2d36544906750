package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Engine     EngineConfig     `mapstructure:"engine"`
	LTI        LTIConfig        `mapstructure:"lti"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Storage    StorageConfig
	CORS       CORSConfig      `mapstructure:"cors"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Tracing    TracingConfig   `mapstructure:"tracing"`

	// Runtime flags (set from command line, not the config file).
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig describes the adaptive engine the dashboard reports learner
// mastery data to.
type EngineConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	// InstanceDomain identifies the host learning platform to the engine
	// (sent as tool_consumer_instance_guid).
	InstanceDomain string `mapstructure:"instance_domain"`
}

// LTIConfig covers launches from the host learning platform.
type LTIConfig struct {
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
	// PasswordNonce is the secret mixed into derived learner passwords.
	// Changing it locks every derived account out.
	PasswordNonce string `mapstructure:"password_nonce"`
	// LaunchURL is the externally visible launch endpoint URL. Signature
	// verification needs it because proxies rewrite the request URL.
	LaunchURL string `mapstructure:"launch_url"`
}

// ClassifierConfig points at the pretrained artifacts used to derive group
// membership from qualitative answers. Artifacts are loaded once at startup.
type ClassifierConfig struct {
	ArtifactsPath string `mapstructure:"artifacts_path"`
	// GroupKCs lists group knowledge component ids in the exact order of the
	// topic model's outputs.
	GroupKCs []string `mapstructure:"group_kcs"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LPD")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Adaptive engine
	viper.BindEnv("engine.base_url", "ADAPTIVE_ENGINE_URL")
	viper.BindEnv("engine.token", "ADAPTIVE_ENGINE_TOKEN")
	viper.BindEnv("engine.instance_domain", "OPENEDX_INSTANCE_DOMAIN")

	// LTI
	viper.BindEnv("lti.consumer_key", "LTI_CONSUMER_KEY")
	viper.BindEnv("lti.consumer_secret", "LTI_CONSUMER_SECRET")
	viper.BindEnv("lti.password_nonce", "PASSWORD_GENERATOR_NONCE")
	viper.BindEnv("lti.launch_url", "LTI_LAUNCH_URL")

	// Classifier
	viper.BindEnv("classifier.artifacts_path", "CLASSIFIER_ARTIFACTS_PATH")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}
	if cfg.Server.Mode == "release" && cfg.LTI.PasswordNonce == "" {
		return nil, fmt.Errorf("lti.password_nonce must be set in release mode")
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
