package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	Telemetry   TelemetryConfig
	OCR         OCRConfig
	Browser     BrowserConfig
	Automation  AutomationConfig
	Merchants   MerchantsConfig
	Storage     StorageConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Swagger     SwaggerConfig
	Maintenance MaintenanceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. An empty Host disables Redis
// and the token blacklist falls back to memory.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool

	// Pyroscope continuous profiling
	ProfilingEnabled           bool
	ProfilingServerAddress     string
	ProfilingApplicationName   string
	ProfilingBasicAuthUser     string
	ProfilingBasicAuthPassword string
	ProfilingTypes             []string
	ProfilingSpanProfiles      bool
}

// OCRConfig holds text recognition settings
type OCRConfig struct {
	MaxConcurrent  int
	TessdataPrefix string
	MinHeight      int
	TargetHeight   int
	MaxPixels      int
	Contrast       float64
}

// BrowserConfig holds headless browser settings
type BrowserConfig struct {
	RemoteURL    string // DevTools websocket URL; empty launches a local browser
	ExecPath     string
	Headless     bool
	NoSandbox    bool
	UserAgent    string
	Timezone     string // IANA zone the portal pages observe
	WindowWidth  int
	WindowHeight int
}

// AutomationConfig holds invoice automation policy
type AutomationConfig struct {
	StepTimeout                 time.Duration
	RunTimeout                  time.Duration
	RetryAttempts               uint
	RetryDelay                  time.Duration
	RetryableKinds              []string
	OptionNotFoundAsClientError bool
	ConsumeCredits              bool
}

// MerchantsConfig holds merchant definition settings
type MerchantsConfig struct {
	DefinitionsDir string // extra *.yaml definitions loaded on top of the built-ins
}

// StorageConfig holds S3 document archive settings. An empty Bucket
// disables archiving.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Prefix          string
	FetchTimeout    time.Duration
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled      bool
	Requests     int
	Window       time.Duration
	AuthRequests int
	AuthWindow   time.Duration
}

// MaintenanceConfig holds background job settings. A negative interval
// disables the job.
type MaintenanceConfig struct {
	SessionSweepInterval time.Duration
	LockSweepInterval    time.Duration
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FSNAP_ prefix (e.g., FSNAP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/facturasnap")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),

			ProfilingEnabled:           v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress:     v.GetString("telemetry.profiling_server_address"),
			ProfilingApplicationName:   v.GetString("telemetry.profiling_application_name"),
			ProfilingBasicAuthUser:     v.GetString("telemetry.profiling_basic_auth_user"),
			ProfilingBasicAuthPassword: v.GetString("telemetry.profiling_basic_auth_password"),
			ProfilingTypes:             v.GetStringSlice("telemetry.profiling_types"),
			ProfilingSpanProfiles:      v.GetBool("telemetry.profiling_span_profiles"),
		},
		OCR: OCRConfig{
			MaxConcurrent:  v.GetInt("ocr.max_concurrent"),
			TessdataPrefix: v.GetString("ocr.tessdata_prefix"),
			MinHeight:      v.GetInt("ocr.min_height"),
			TargetHeight:   v.GetInt("ocr.target_height"),
			MaxPixels:      v.GetInt("ocr.max_pixels"),
			Contrast:       v.GetFloat64("ocr.contrast"),
		},
		Browser: BrowserConfig{
			RemoteURL:    v.GetString("browser.remote_url"),
			ExecPath:     v.GetString("browser.exec_path"),
			Headless:     true,
			NoSandbox:    v.GetBool("browser.no_sandbox"),
			UserAgent:    v.GetString("browser.user_agent"),
			Timezone:     v.GetString("browser.timezone"),
			WindowWidth:  v.GetInt("browser.window_width"),
			WindowHeight: v.GetInt("browser.window_height"),
		},
		Automation: AutomationConfig{
			StepTimeout:                 v.GetDuration("automation.step_timeout"),
			RunTimeout:                  v.GetDuration("automation.run_timeout"),
			RetryAttempts:               v.GetUint("automation.retry_attempts"),
			RetryDelay:                  v.GetDuration("automation.retry_delay"),
			RetryableKinds:              v.GetStringSlice("automation.retryable_kinds"),
			OptionNotFoundAsClientError: v.GetBool("automation.option_not_found_as_client_error"),
			ConsumeCredits:              v.GetBool("automation.consume_credits"),
		},
		Merchants: MerchantsConfig{
			DefinitionsDir: v.GetString("merchants.definitions_dir"),
		},
		Storage: StorageConfig{
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			Prefix:          v.GetString("storage.prefix"),
			FetchTimeout:    v.GetDuration("storage.fetch_timeout"),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetStringSlice("cors.allow_origins"),
			AllowMethods: v.GetStringSlice("cors.allow_methods"),
			AllowHeaders: v.GetStringSlice("cors.allow_headers"),
		},
		RateLimit: RateLimitConfig{
			Enabled:      v.GetBool("rate_limit.enabled"),
			Requests:     v.GetInt("rate_limit.requests"),
			Window:       v.GetDuration("rate_limit.window"),
			AuthRequests: v.GetInt("rate_limit.auth_requests"),
			AuthWindow:   v.GetDuration("rate_limit.auth_window"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Maintenance: MaintenanceConfig{
			SessionSweepInterval: v.GetDuration("maintenance.session_sweep_interval"),
			LockSweepInterval:    v.GetDuration("maintenance.lock_sweep_interval"),
		},
	}
	if v.IsSet("browser.headless") {
		cfg.Browser.Headless = v.GetBool("browser.headless")
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "facturasnap-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	// Automation runs take several page loads.
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 3 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 50 << 20
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "facturasnap"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "facturasnap"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "facturasnap-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.ProfilingApplicationName == "" {
		cfg.Telemetry.ProfilingApplicationName = cfg.Telemetry.ServiceName
	}
	if len(cfg.Telemetry.ProfilingTypes) == 0 {
		cfg.Telemetry.ProfilingTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
	if cfg.OCR.MaxConcurrent == 0 {
		cfg.OCR.MaxConcurrent = 4
	}
	if cfg.OCR.MinHeight == 0 {
		cfg.OCR.MinHeight = 800
	}
	if cfg.OCR.TargetHeight == 0 {
		cfg.OCR.TargetHeight = 1200
	}
	if cfg.OCR.MaxPixels == 0 {
		cfg.OCR.MaxPixels = 40_000_000
	}
	if cfg.OCR.Contrast == 0 {
		cfg.OCR.Contrast = 20
	}
	if cfg.Browser.WindowWidth == 0 {
		cfg.Browser.WindowWidth = 1920
	}
	if cfg.Browser.WindowHeight == 0 {
		cfg.Browser.WindowHeight = 1080
	}
	if cfg.Browser.Timezone == "" {
		cfg.Browser.Timezone = "America/Mexico_City"
	}
	if cfg.Automation.StepTimeout == 0 {
		cfg.Automation.StepTimeout = 10 * time.Second
	}
	if cfg.Automation.RunTimeout == 0 {
		cfg.Automation.RunTimeout = 2 * time.Minute
	}
	if cfg.Automation.RetryAttempts == 0 {
		cfg.Automation.RetryAttempts = 1
	}
	if cfg.Automation.RetryDelay == 0 {
		cfg.Automation.RetryDelay = 2 * time.Second
	}
	if len(cfg.Automation.RetryableKinds) == 0 {
		cfg.Automation.RetryableKinds = []string{"NAVIGATION_FAILED"}
	}
	if cfg.Maintenance.SessionSweepInterval == 0 {
		cfg.Maintenance.SessionSweepInterval = time.Hour
	}
	if cfg.Maintenance.LockSweepInterval == 0 {
		cfg.Maintenance.LockSweepInterval = 5 * time.Minute
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "invoices/"
	}
	if cfg.Storage.FetchTimeout == 0 {
		cfg.Storage.FetchTimeout = 30 * time.Second
	}
	// No default origins: cross-origin access must be configured explicitly.
	if len(cfg.CORS.AllowMethods) == 0 {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.CORS.AllowHeaders) == 0 {
		cfg.CORS.AllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.AuthRequests == 0 {
		cfg.RateLimit.AuthRequests = 5
	}
	if cfg.RateLimit.AuthWindow == 0 {
		cfg.RateLimit.AuthWindow = time.Minute
	}
}

var knownKinds = map[string]bool{
	"NAVIGATION_FAILED":     true,
	"BROWSER_LAUNCH_FAILED": true,
	"ELEMENT_NOT_FOUND":     true,
	"ELEMENT_TIMEOUT":       true,
	"OPTION_NOT_FOUND":      true,
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}
	if c.OCR.MinHeight > c.OCR.TargetHeight {
		return fmt.Errorf("ocr.min_height (%d) cannot exceed ocr.target_height (%d)", c.OCR.MinHeight, c.OCR.TargetHeight)
	}
	if c.Automation.StepTimeout > c.Automation.RunTimeout {
		return fmt.Errorf("automation.step_timeout cannot exceed automation.run_timeout")
	}
	for _, kind := range c.Automation.RetryableKinds {
		if !knownKinds[strings.ToUpper(kind)] {
			return fmt.Errorf("automation.retryable_kinds: unknown kind %q", kind)
		}
	}
	if c.Storage.Bucket != "" && (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("storage.access_key_id and storage.secret_access_key must be set together")
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Log.Level == "debug" {
			return fmt.Errorf("log.level cannot be 'debug' in production")
		}
		for _, origin := range c.CORS.AllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors.allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or IP restricted in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port, or "" when Redis is not configured.
func (r *RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
