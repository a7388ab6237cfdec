package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Backend  BackendConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Admin    AdminConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token      string // storefront bot
	AdminToken string // admin panel bot
	Login      string // admin password for the admin bot
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig is optional: an empty Addr disables the menu cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	MenuTTL  time.Duration
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// Enabled reports whether enough is set to upload menu images.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != "" && s.PublicBaseURL != ""
}

type AdminConfig struct {
	ChatID       int64 // always notified about new orders, 0 = only logged-in admins
	PollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	adminChat, _ := strconv.ParseInt(getEnv("ADMIN_CHAT_ID", "0"), 10, 64)

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "momostreet"),
		},
		Telegram: TelegramConfig{
			Token:      getEnv("TOKEN", ""),
			AdminToken: getEnv("ADMIN_TOKEN", ""),
			Login:      getEnv("LOGIN", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "https://momostreet-backend.onrender.com"),
			Timeout: getDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			MenuTTL:  getDuration("MENU_CACHE_TTL", 2*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("R2_ENDPOINT", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			Bucket:        getEnv("R2_BUCKET_NAME", "menu-images"),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Admin: AdminConfig{
			ChatID:       adminChat,
			PollInterval: getDuration("ORDER_POLL_INTERVAL", 5*time.Second),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("5s") or plain seconds ("5").
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
