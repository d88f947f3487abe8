package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"whooded/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers          int
	MaxPlayers          int
	NightSeconds        int
	DaySeconds          int
	VotingSeconds       int
	ResultsDelaySeconds int
	RoomCodeLength      int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from a .env file (if present) and environment
// variables with defaults
func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3001"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			MinPlayers:          getEnvInt("MIN_PLAYERS", 5),
			MaxPlayers:          getEnvInt("MAX_PLAYERS", 12),
			NightSeconds:        getEnvInt("NIGHT_SECONDS", 30),
			DaySeconds:          getEnvInt("DAY_SECONDS", 60),
			VotingSeconds:       getEnvInt("VOTING_SECONDS", 30),
			ResultsDelaySeconds: getEnvInt("RESULTS_DELAY_SECONDS", 3),
			RoomCodeLength:      getEnvInt("ROOM_CODE_LENGTH", 6),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Settings converts the game configuration into room settings
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		MinPlayers:     c.Game.MinPlayers,
		MaxPlayers:     c.Game.MaxPlayers,
		NightDuration:  time.Duration(c.Game.NightSeconds) * time.Second,
		DayDuration:    time.Duration(c.Game.DaySeconds) * time.Second,
		VotingDuration: time.Duration(c.Game.VotingSeconds) * time.Second,
		ResultsDelay:   time.Duration(c.Game.ResultsDelaySeconds) * time.Second,
		RoomCodeLength: c.Game.RoomCodeLength,
		TickInterval:   time.Second,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
