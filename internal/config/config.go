// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const minSecretKeyLength = 16

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Token     TokenConfig     `koanf:"token"`
	Password  PasswordConfig  `koanf:"password"`
	Mail      MailConfig      `koanf:"mail"`
	Blog      BlogConfig      `koanf:"blog"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	PublicURL   string `koanf:"public_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// TokenConfig holds the signing secret shared by every signed token and
// the lifetime of each token intent.
type TokenConfig struct {
	SecretKey         string        `koanf:"secret_key"`
	Issuer            string        `koanf:"issuer"`
	AuthExpire        time.Duration `koanf:"auth_expire"`
	ConfirmExpire     time.Duration `koanf:"confirm_expire"`
	ResetExpire       time.Duration `koanf:"reset_expire"`
	ChangeEmailExpire time.Duration `koanf:"change_email_expire"`
}

type PasswordConfig struct {
	Memory      uint32 `koanf:"memory"`
	Iterations  uint32 `koanf:"iterations"`
	Parallelism uint8  `koanf:"parallelism"`
}

type MailConfig struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	Username      string        `koanf:"username"`
	Password      string        `koanf:"password"`
	Sender        string        `koanf:"sender"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	Admin         string        `koanf:"admin"`
	Workers       int           `koanf:"workers"`
	QueueSize     int           `koanf:"queue_size"`
	SendTimeout   time.Duration `koanf:"send_timeout"`
}

type BlogConfig struct {
	PostsPerPage     int           `koanf:"posts_per_page"`
	CommentsPerPage  int           `koanf:"comments_per_page"`
	FollowersPerPage int           `koanf:"followers_per_page"`
	LastSeenInterval time.Duration `koanf:"last_seen_interval"`
}

type RateLimitConfig struct {
	Requests     int           `koanf:"requests"`
	Window       time.Duration `koanf:"window"`
	Burst        int           `koanf:"burst"`
	AuthRequests int           `koanf:"auth_requests"`
	AuthBurst    int           `koanf:"auth_burst"`
	IPRequests   int           `koanf:"ip_requests"`
	IPBurst      int           `koanf:"ip_burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load reads the process configuration once: defaults, then the YAML file
// at configPath, then environment variables.
func Load(configPath string) (*Config, error) {
	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Blog API",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.public_url":  "http://localhost:3000",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"token.issuer":              "blog-api",
		"token.auth_expire":         "1h",
		"token.confirm_expire":      "1h",
		"token.reset_expire":        "1h",
		"token.change_email_expire": "1h",

		"password.memory":      64 * 1024,
		"password.iterations":  1,
		"password.parallelism": 4,

		"mail.host":           "",
		"mail.port":           587,
		"mail.sender":         "Blog Admin <blog@example.com>",
		"mail.subject_prefix": "[Blog]",
		"mail.workers":        2,
		"mail.queue_size":     100,
		"mail.send_timeout":   "30s",

		"blog.posts_per_page":     20,
		"blog.comments_per_page":  30,
		"blog.followers_per_page": 50,
		"blog.last_seen_interval": "1m",

		"rate_limit.requests":      100,
		"rate_limit.window":        "1m",
		"rate_limit.burst":         20,
		"rate_limit.auth_requests": 10,
		"rate_limit.auth_burst":    5,
		"rate_limit.ip_requests":   120,
		"rate_limit.ip_burst":      30,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "blog-api",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"PUBLIC_URL":                  "app.public_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"SECRET_KEY":                  "token.secret_key",
	"TOKEN_ISSUER":                "token.issuer",
	"TOKEN_AUTH_EXPIRE":           "token.auth_expire",
	"TOKEN_CONFIRM_EXPIRE":        "token.confirm_expire",
	"TOKEN_RESET_EXPIRE":          "token.reset_expire",
	"TOKEN_CHANGE_EMAIL_EXPIRE":   "token.change_email_expire",
	"MAIL_SERVER":                 "mail.host",
	"MAIL_PORT":                   "mail.port",
	"MAIL_USERNAME":               "mail.username",
	"MAIL_PASSWORD":               "mail.password",
	"MAIL_SENDER":                 "mail.sender",
	"MAIL_SUBJECT_PREFIX":         "mail.subject_prefix",
	"BLOG_ADMIN":                  "mail.admin",
	"POSTS_PER_PAGE":              "blog.posts_per_page",
	"COMMENTS_PER_PAGE":           "blog.comments_per_page",
	"FOLLOWERS_PER_PAGE":          "blog.followers_per_page",
	"LAST_SEEN_INTERVAL":          "blog.last_seen_interval",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_IP_REQUESTS":      "rate_limit.ip_requests",
	"RATE_LIMIT_IP_BURST":         "rate_limit.ip_burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if len(c.Token.SecretKey) < minSecretKeyLength {
		return fmt.Errorf(
			"SECRET_KEY must be at least %d characters",
			minSecretKeyLength,
		)
	}

	if c.Token.AuthExpire <= 0 {
		return fmt.Errorf("token.auth_expire must be positive")
	}

	if c.Mail.Workers < 1 {
		return fmt.Errorf("mail.workers must be at least 1")
	}

	if c.Mail.QueueSize < 1 {
		return fmt.Errorf("mail.queue_size must be at least 1")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}

	if c.RateLimit.IPRequests < 1 || c.RateLimit.IPBurst < 1 {
		return fmt.Errorf("rate_limit.ip_requests and ip_burst must be positive")
	}

	if c.Blog.PostsPerPage < 1 || c.Blog.CommentsPerPage < 1 ||
		c.Blog.FollowersPerPage < 1 {
		return fmt.Errorf("blog page sizes must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Mail.Host == "" {
			return fmt.Errorf("MAIL_SERVER is required in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
