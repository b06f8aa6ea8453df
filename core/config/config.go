package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	Port     int
	LogLevel string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	WorkerEnabled     bool
	WorkerConcurrency int
}

var cfg *Config

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", 7070)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "family_calendar")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("WORKER_ENABLED", true)
	viper.SetDefault("WORKER_CONCURRENCY", 5)
	viper.SetDefault("S3_REGION", "us-east-1")

	cfg = &Config{
		AppEnv:            viper.GetString("APP_ENV"),
		Port:              viper.GetInt("PORT"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		DBHost:            viper.GetString("DB_HOST"),
		DBPort:            viper.GetInt("DB_PORT"),
		DBUser:            viper.GetString("DB_USER"),
		DBPassword:        viper.GetString("DB_PASSWORD"),
		DBName:            viper.GetString("DB_NAME"),
		RedisAddr:         viper.GetString("REDIS_ADDR"),
		RedisPassword:     viper.GetString("REDIS_PASSWORD"),
		JWTSecret:         viper.GetString("JWT_SECRET"),
		S3Region:          viper.GetString("S3_REGION"),
		S3Bucket:          viper.GetString("S3_BUCKET"),
		S3Endpoint:        viper.GetString("S3_ENDPOINT"),
		S3AccessKey:       viper.GetString("S3_ACCESS_KEY"),
		S3SecretKey:       viper.GetString("S3_SECRET_KEY"),
		WorkerEnabled:     viper.GetBool("WORKER_ENABLED"),
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),
	}

	return cfg, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	return cfg
}
