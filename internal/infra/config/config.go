package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig aggregates all deployment configuration sections.
type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Security SecuritySettings `mapstructure:"security"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
}

type AppSettings struct {
	Name               string   `mapstructure:"name"`
	Env                string   `mapstructure:"env"`
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// SecuritySettings configures credential hashing and session token issuance.
type SecuritySettings struct {
	HashAlgorithm    string        `mapstructure:"hash_algorithm"`
	HashIterations   int           `mapstructure:"hash_iterations"`
	JWTSigningSecret string        `mapstructure:"jwt_signing_secret"`
	SessionTokenTTL  time.Duration `mapstructure:"session_token_ttl"`
}

// KafkaSettings configures the event publisher. An empty broker list selects
// the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// Load reads configuration from environment variables with defaults applied,
// then validates the result.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DEMO")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.cors_allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"security.hash_algorithm",
		"security.hash_iterations",
		"security.jwt_signing_secret",
		"security.session_token_ttl",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the numeric bounds the deployment contract fixes:
// iteration count in [1000, 1_000_000), token lifetime of at least ten
// minutes, and a usable listen port. Algorithm-name validation happens when
// the password hasher is constructed.
func (c *AppConfig) Validate() error {
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("config: app port %d out of range", c.App.Port)
	}
	if c.Security.HashIterations < 1000 || c.Security.HashIterations >= 1_000_000 {
		return fmt.Errorf("config: hash iterations %d not in [1000, 1000000)", c.Security.HashIterations)
	}
	if c.Security.SessionTokenTTL < 10*time.Minute {
		return fmt.Errorf("config: session token ttl %s below minimum of 10m", c.Security.SessionTokenTTL)
	}
	if strings.TrimSpace(c.Security.JWTSigningSecret) == "" {
		return fmt.Errorf("config: jwt signing secret is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "resource-demo-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.cors_allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "demo")
	v.SetDefault("postgres.password", "demo_password")
	v.SetDefault("postgres.database", "demo")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)

	v.SetDefault("security.hash_algorithm", "sha3-256")
	v.SetDefault("security.hash_iterations", 500_000)
	v.SetDefault("security.jwt_signing_secret", "")
	v.SetDefault("security.session_token_ttl", time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "demo")
	v.SetDefault("kafka.async", true)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
