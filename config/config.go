package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisPendingDB int    `mapstructure:"REDIS_PENDING_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Backends: "memory", "redis" or "mongo" for PENDING_STORE; "file" or "mongo" for
	// TENANT_SOURCE; "memory" or "redis" for LOCK_BACKEND; "inline" or "queue" for
	// INBOUND_MODE.
	PendingStore string        `mapstructure:"PENDING_STORE"`
	TenantSource string        `mapstructure:"TENANT_SOURCE"`
	TenantsFile  string        `mapstructure:"TENANTS_FILE"`
	LockBackend  string        `mapstructure:"LOCK_BACKEND"`
	LockTTL      time.Duration `mapstructure:"LOCK_TTL"`
	InboundMode  string        `mapstructure:"INBOUND_MODE"`

	// Intent classifier.
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	ClassifierTimeout time.Duration `mapstructure:"CLASSIFIER_TIMEOUT"`

	// Google Calendar service account or OAuth client file shared by all tenants.
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`

	// WhatsApp Cloud API.
	WhatsAppVerifyToken string `mapstructure:"WHATSAPP_VERIFY_TOKEN"`
	AppSecret           string `mapstructure:"APP_SECRET"`
	GraphAPIBase        string `mapstructure:"GRAPH_API_BASE"`

	// Admin API.
	AdminAPIKeys      string `mapstructure:"ADMIN_API_KEYS"`
	AdminAllowOrigins string `mapstructure:"ADMIN_ALLOW_ORIGINS"`

	// Slot search.
	SlotLimit        int `mapstructure:"SLOT_LIMIT"`
	SlotWindowDays   int `mapstructure:"SLOT_WINDOW_DAYS"`
	SlotGraceMinutes int `mapstructure:"SLOT_GRACE_MINUTES"`

	// OwnerEmail is invited to tentative events of tenants that set none.
	OwnerEmail string `mapstructure:"OWNER_EMAIL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_PENDING_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "chatbook")
	v.SetDefault("PENDING_STORE", "memory")
	v.SetDefault("TENANT_SOURCE", "file")
	v.SetDefault("TENANTS_FILE", "config/tenants.yaml")
	v.SetDefault("LOCK_BACKEND", "memory")
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("INBOUND_MODE", "inline")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	v.SetDefault("CLASSIFIER_TIMEOUT", "8s")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("WHATSAPP_VERIFY_TOKEN", "")
	v.SetDefault("APP_SECRET", "")
	v.SetDefault("GRAPH_API_BASE", "https://graph.facebook.com")
	v.SetDefault("ADMIN_API_KEYS", "")
	v.SetDefault("ADMIN_ALLOW_ORIGINS", "*")
	v.SetDefault("SLOT_LIMIT", 3)
	v.SetDefault("SLOT_WINDOW_DAYS", 3)
	v.SetDefault("SLOT_GRACE_MINUTES", 5)
	v.SetDefault("OWNER_EMAIL", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AdminKeys splits ADMIN_API_KEYS on commas, dropping blanks.
func (c Config) AdminKeys() []string {
	return splitList(c.AdminAPIKeys)
}

// AllowedOrigins splits ADMIN_ALLOW_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	origins := splitList(c.AdminAllowOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
