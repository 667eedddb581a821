package config

import (
	"github.com/spf13/viper"

	"github.com/medipos/rms-api/internal/db"
)

// Config holds everything the server needs at startup. Values come from
// config.yaml when present, overridden by RMS_-prefixed environment
// variables (RMS_SERVER_ADDR, RMS_DATABASE_HOST, ...).
type Config struct {
	ServerAddr     string
	MigrationsPath string
	Database       db.Config
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AdminUsername  string
	AdminPassword  string
}

func Load(configPath string) (Config, error) {
	cfg := Config{
		ServerAddr:     ":8080",
		MigrationsPath: "migrations",
		Database:       db.DefaultConfig(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("RMS")

	v.BindEnv("server.addr", "RMS_SERVER_ADDR")
	v.BindEnv("server.migrations_path", "RMS_MIGRATIONS_PATH")
	v.BindEnv("database.host", "RMS_DATABASE_HOST")
	v.BindEnv("database.port", "RMS_DATABASE_PORT")
	v.BindEnv("database.user", "RMS_DATABASE_USER")
	v.BindEnv("database.password", "RMS_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "RMS_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "RMS_DATABASE_SSLMODE")
	v.BindEnv("redis.addr", "RMS_REDIS_ADDR")
	v.BindEnv("redis.password", "RMS_REDIS_PASSWORD")
	v.BindEnv("redis.db", "RMS_REDIS_DB")
	v.BindEnv("admin.username", "RMS_ADMIN_USERNAME")
	v.BindEnv("admin.password", "RMS_ADMIN_PASSWORD")

	// Config file is optional, defaults plus env are enough to boot.
	_ = v.ReadInConfig()

	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("server.migrations_path") {
		cfg.MigrationsPath = v.GetString("server.migrations_path")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("redis.addr") {
		cfg.RedisAddr = v.GetString("redis.addr")
	}
	if v.IsSet("redis.password") {
		cfg.RedisPassword = v.GetString("redis.password")
	}
	if v.IsSet("redis.db") {
		cfg.RedisDB = v.GetInt("redis.db")
	}
	if v.IsSet("admin.username") {
		cfg.AdminUsername = v.GetString("admin.username")
	}
	if v.IsSet("admin.password") {
		cfg.AdminPassword = v.GetString("admin.password")
	}

	return cfg, nil
}
