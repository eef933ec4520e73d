package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Identity  IdentityConfig
	OpenAI    OpenAIConfig
	Shopify   ShopifyConfig
	Guardrail GuardrailConfig
	Widget    WidgetConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	CORS      CORSConfig
	Server    ServerConfig
}

type AppConfig struct {
	Env   string
	Port  int
	Name  string
	Debug bool
}

type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnectionLifetime time.Duration
}

type RedisConfig struct {
	URL        string
	Password   string
	MaxRetries int
	PoolSize   int
}

type SecurityConfig struct {
	EncryptionKey string
	JWTSecret     string
	JWTExpiry     time.Duration
	RefreshExpiry time.Duration
}

// IdentityConfig holds settings for the hosted identity provider whose
// tokens the /auth/sync endpoint accepts.
type IdentityConfig struct {
	ProviderURL string
	JWTSecret   string
	Audience    string
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// ShopifyConfig holds app-level Shopify credentials for the OAuth
// install flow. Per-shop tokens live encrypted on Integration records.
type ShopifyConfig struct {
	ClientID       string
	ClientSecret   string
	APIVersion     string
	Scopes         []string
	RedirectURL    string
	RequestTimeout time.Duration
	MaxRetries     int
}

type GuardrailConfig struct {
	Enabled  bool
	Model    string
	CacheTTL time.Duration
}

// WidgetConfig controls the embeddable widget session token flow.
type WidgetConfig struct {
	TokenTTL          time.Duration
	SessionsPerMinute int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	MaxHeaderBytes int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config

	config.App = AppConfig{
		Env:   viper.GetString("APP_ENV"),
		Port:  viper.GetInt("APP_PORT"),
		Name:  viper.GetString("APP_NAME"),
		Debug: viper.GetBool("APP_DEBUG"),
	}

	config.Database = DatabaseConfig{
		URL:                viper.GetString("DATABASE_URL"),
		MaxConnections:     viper.GetInt("DB_MAX_CONNECTIONS"),
		MaxIdleConnections: viper.GetInt("DB_MAX_IDLE_CONNECTIONS"),
		ConnectionLifetime: time.Duration(viper.GetInt("DB_CONNECTION_LIFETIME_SECONDS")) * time.Second,
	}

	config.Redis = RedisConfig{
		URL:        viper.GetString("REDIS_URL"),
		Password:   viper.GetString("REDIS_PASSWORD"),
		MaxRetries: viper.GetInt("REDIS_MAX_RETRIES"),
		PoolSize:   viper.GetInt("REDIS_POOL_SIZE"),
	}

	config.Security = SecurityConfig{
		EncryptionKey: viper.GetString("ENCRYPTION_KEY"),
		JWTSecret:     viper.GetString("JWT_SECRET"),
		JWTExpiry:     time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		RefreshExpiry: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_DAYS")) * 24 * time.Hour,
	}

	config.Identity = IdentityConfig{
		ProviderURL: viper.GetString("IDENTITY_PROVIDER_URL"),
		JWTSecret:   viper.GetString("IDENTITY_JWT_SECRET"),
		Audience:    viper.GetString("IDENTITY_AUDIENCE"),
	}

	config.OpenAI = OpenAIConfig{
		APIKey:      viper.GetString("OPENAI_API_KEY"),
		Model:       viper.GetString("OPENAI_MODEL"),
		MaxTokens:   viper.GetInt("OPENAI_MAX_TOKENS"),
		Temperature: float32(viper.GetFloat64("OPENAI_TEMPERATURE")),
	}

	config.Shopify = ShopifyConfig{
		ClientID:       viper.GetString("SHOPIFY_CLIENT_ID"),
		ClientSecret:   viper.GetString("SHOPIFY_CLIENT_SECRET"),
		APIVersion:     viper.GetString("SHOPIFY_API_VERSION"),
		Scopes:         viper.GetStringSlice("SHOPIFY_SCOPES"),
		RedirectURL:    viper.GetString("SHOPIFY_REDIRECT_URL"),
		RequestTimeout: time.Duration(viper.GetInt("SHOPIFY_REQUEST_TIMEOUT_SECONDS")) * time.Second,
		MaxRetries:     viper.GetInt("SHOPIFY_MAX_RETRIES"),
	}

	config.Guardrail = GuardrailConfig{
		Enabled:  viper.GetBool("GUARDRAIL_ENABLED"),
		Model:    viper.GetString("GUARDRAIL_MODEL"),
		CacheTTL: time.Duration(viper.GetInt("GUARDRAIL_CACHE_TTL_SECONDS")) * time.Second,
	}

	config.Widget = WidgetConfig{
		TokenTTL:          time.Duration(viper.GetInt("WIDGET_TOKEN_TTL_MINUTES")) * time.Minute,
		SessionsPerMinute: viper.GetInt("WIDGET_SESSIONS_PER_MINUTE"),
	}

	config.RateLimit = RateLimitConfig{
		Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
		RequestsPerMinute: viper.GetInt("RATE_LIMIT_REQUESTS_PER_MINUTE"),
		Burst:             viper.GetInt("RATE_LIMIT_BURST"),
	}

	config.Log = LogConfig{
		Level:  viper.GetString("LOG_LEVEL"),
		Format: viper.GetString("LOG_FORMAT"),
		Output: viper.GetString("LOG_OUTPUT"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
		AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		ExposeHeaders:    viper.GetStringSlice("CORS_EXPOSE_HEADERS"),
		AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
		MaxAge:           viper.GetInt("CORS_MAX_AGE"),
	}

	config.Server = ServerConfig{
		ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT_SECONDS"),
		WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT_SECONDS"),
		IdleTimeout:    viper.GetInt("SERVER_IDLE_TIMEOUT_SECONDS"),
		MaxHeaderBytes: viper.GetInt("SERVER_MAX_HEADER_BYTES"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate fails fast on settings the process cannot run without.
// Secrets have no defaults, so a missing one is a deployment error,
// not something to limp along with.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.EncryptionKey) < 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be at least 32 bytes, got %d", len(c.Security.EncryptionKey))
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.App.Env == "production" {
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
		if c.App.Debug {
			return fmt.Errorf("APP_DEBUG must be disabled in production")
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_NAME", "agent-cs-api")
	viper.SetDefault("APP_DEBUG", false)

	viper.SetDefault("DB_MAX_CONNECTIONS", 100)
	viper.SetDefault("DB_MAX_IDLE_CONNECTIONS", 10)
	viper.SetDefault("DB_CONNECTION_LIFETIME_SECONDS", 300)

	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)

	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_DAYS", 7)

	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_MAX_TOKENS", 2000)
	viper.SetDefault("OPENAI_TEMPERATURE", 0.7)

	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	viper.SetDefault("SHOPIFY_SCOPES", []string{"read_products", "read_orders"})
	viper.SetDefault("SHOPIFY_REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SHOPIFY_MAX_RETRIES", 3)

	viper.SetDefault("GUARDRAIL_ENABLED", true)
	viper.SetDefault("GUARDRAIL_MODEL", "text-moderation-latest")
	viper.SetDefault("GUARDRAIL_CACHE_TTL_SECONDS", 300)

	viper.SetDefault("WIDGET_TOKEN_TTL_MINUTES", 30)
	viper.SetDefault("WIDGET_SESSIONS_PER_MINUTE", 20)

	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_MINUTE", 60)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_OUTPUT", "stdout")

	viper.SetDefault("CORS_MAX_AGE", 300)

	viper.SetDefault("SERVER_READ_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SERVER_IDLE_TIMEOUT_SECONDS", 60)
	viper.SetDefault("SERVER_MAX_HEADER_BYTES", 1048576)
}
