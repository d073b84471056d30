package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port      int
	APIKey    string // API key protecting the ops HTTP API
	LogLevel  string
	LogFormat string

	Environment string
	ServiceName string
	Version     string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	DiscordToken     string
	DiscordGuildID   string
	AnnounceChannel  string // channel for breakthrough/eligibility announcements
	BoosterRoleID    string
	BoosterBonusPct  int
	VIPRoleBonuses   map[string]int // role ID -> additive exp bonus percent
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:          getEnv("API_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		Environment:     getEnv("ENVIRONMENT", "dev"),
		ServiceName:     getEnv("SERVICE_NAME", "tutienbot"),
		Version:         getEnv("VERSION", "dev"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBName:          getEnv("DB_NAME", "tutienbot"),
		DiscordToken:    getEnv("DISCORD_TOKEN", ""),
		DiscordGuildID:  getEnv("DISCORD_GUILD_ID", ""),
		AnnounceChannel: getEnv("DISCORD_ANNOUNCE_CHANNEL", ""),
		BoosterRoleID:   getEnv("BOOSTER_ROLE_ID", ""),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.BoosterBonusPct, err = getEnvInt("BOOSTER_BONUS_PERCENT", 10)
	if err != nil {
		return nil, err
	}

	cfg.VIPRoleBonuses, err = parseRoleBonuses(getEnv("VIP_ROLE_BONUSES", ""))
	if err != nil {
		return nil, err
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable must be set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// parseRoleBonuses parses "roleID:percent,roleID:percent" pairs.
func parseRoleBonuses(raw string) (map[string]int, error) {
	bonuses := make(map[string]int)
	if raw == "" {
		return bonuses, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid VIP_ROLE_BONUSES entry: %q", pair)
		}
		pct, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid VIP_ROLE_BONUSES percent in %q: %w", pair, err)
		}
		bonuses[parts[0]] = pct
	}
	return bonuses, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
