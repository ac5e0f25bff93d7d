package config

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"time"
)

type Server struct {
	Port         int
	CookieSecure bool
}

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
	Migrations string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Session struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

type Media struct {
	Backend         string // "local" or "minio"
	Root            string
	MaxRequestBytes int64
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

type Log struct {
	Level string
	File  string
}

type Config struct {
	Server  Server
	DB      DB
	Redis   Redis
	Session Session
	Media   Media
	MinIO   MinIO
	Log     Log
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseDuration falls back to the given default when the value is malformed or not positive.
func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "ssipfix"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
		Migrations: getEnv("DB_MIGRATIONS", "migrations/001_create_tables.sql"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func LoadSession() Session {
	return Session{
		TTL:         parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
		RememberTTL: parseDuration(getEnv("REMEMBER_ME_TTL", "720h"), 30*24*time.Hour),
	}
}

func LoadMedia() Media {
	return Media{
		Backend:         getEnv("STORAGE_BACKEND", "local"),
		Root:            getEnv("MEDIA_ROOT", "assets/uploads"),
		MaxRequestBytes: getEnvAsInt64("MAX_REQUEST_BYTES", 25*1024*1024),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "media"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: Server{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			CookieSecure: getEnvBool("COOKIE_SECURE", false),
		},
		DB:      LoadDB(),
		Redis:   LoadRedis(),
		Session: LoadSession(),
		Media:   LoadMedia(),
		MinIO:   LoadMinIO(),
		Log: Log{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "server.log"),
		},
	}
}
