package config

import "github.com/spf13/viper"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Redis   RedisConfig
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
	CodeLength int
}

// RedisConfig holds Redis-related configuration. An empty Addr selects
// the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load builds the configuration from a viper instance that already has
// flags and environment variables bound.
func Load(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("port"),
			Host: v.GetString("host"),
			Env:  v.GetString("env"),
		},
		Game: GameConfig{
			CodeLength: v.GetInt("code-length"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
		},
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
