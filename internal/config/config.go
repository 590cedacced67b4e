package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Bot      BotConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// BotConfig holds messaging platform settings
type BotConfig struct {
	Token            string
	Username         string
	PublicChannel    string
	PrivateChannelID int64
	AdminIDs         []int64
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret     string
	GatewaySecret string
	InviteTarget  int
	Timezone      *time.Location
}

// Load loads configuration from environment variables. Every required value
// is validated here so the process aborts before any core operation runs.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DATABASE_PATH", "bot.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "referral_bot"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Bot: BotConfig{
			Token:         strings.TrimSpace(os.Getenv("BOT_TOKEN")),
			Username:      strings.TrimSpace(os.Getenv("BOT_USERNAME")),
			PublicChannel: strings.TrimSpace(os.Getenv("PUBLIC_CHANNEL")),
		},
		App: AppConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			GatewaySecret: getEnv("GATEWAY_SECRET", ""),
		},
	}

	if config.Bot.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if config.Bot.Username == "" {
		return nil, fmt.Errorf("BOT_USERNAME is required")
	}
	if !strings.HasPrefix(config.Bot.PublicChannel, "@") {
		return nil, fmt.Errorf("PUBLIC_CHANNEL must look like '@username'")
	}

	privRaw := strings.TrimSpace(os.Getenv("PRIVATE_CHANNEL_ID"))
	if privRaw == "" {
		return nil, fmt.Errorf("PRIVATE_CHANNEL_ID is required (e.g. -100...)")
	}
	priv, err := strconv.ParseInt(privRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_CHANNEL_ID must be numeric: %w", err)
	}
	config.Bot.PrivateChannelID = priv

	config.Bot.AdminIDs = parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if len(config.Bot.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS is required (e.g. ADMIN_IDS=5037587016)")
	}

	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.App.GatewaySecret == "" {
		return nil, fmt.Errorf("GATEWAY_SECRET is required")
	}

	target, err := strconv.Atoi(getEnv("INVITE_TARGET", "5"))
	if err != nil || target < 1 || target > 1000 {
		return nil, fmt.Errorf("INVITE_TARGET must be an integer in 1..1000")
	}
	config.App.InviteTarget = target

	tz, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	config.App.Timezone = tz

	return config, nil
}

// IsAdmin reports whether the given user id is in the configured admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(strings.ReplaceAll(raw, " ", ""), ",") {
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
