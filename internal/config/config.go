package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	DatabaseDSN string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	LogLevel    string

	// DefaultTenant is used by unauthenticated display clients and by the seeder.
	DefaultTenant string
	SeedDefaults  bool
	ResetDB       bool

	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64
	MaxImageWidth   int

	SweepInterval  time.Duration
	SweepTimeout   time.Duration
	RequestTimeout time.Duration

	CORSOrigins       []string
	LoginRateLimit    int
	LoginRateInterval time.Duration
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN: getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/signage?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),
		SeedDefaults:  getEnvBool("SEED_DEFAULTS", false),
		ResetDB:       getEnvBool("RESET_DB", false),

		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		MaxImageWidth:   getEnvInt("MAX_IMAGE_WIDTH", 1920),

		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", time.Minute),
		SweepTimeout:   getEnvDuration("SWEEP_TIMEOUT", 30*time.Second),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LoginRateLimit:    getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateInterval: getEnvDuration("LOGIN_RATE_INTERVAL", 15*time.Minute),
	}
}

// DisplayConfig configures the headless display client.
type DisplayConfig struct {
	ServerURL    string
	Username     string
	Password     string
	PollInterval time.Duration
	LogLevel     string
}

// LoadDisplay builds DisplayConfig from environment. Without credentials the
// display runs anonymously against the server's default tenant.
func LoadDisplay() *DisplayConfig {
	_ = godotenv.Load()

	return &DisplayConfig{
		ServerURL:    getEnv("DISPLAY_SERVER_URL", "http://localhost:8080"),
		Username:     os.Getenv("DISPLAY_USERNAME"),
		Password:     os.Getenv("DISPLAY_PASSWORD"),
		PollInterval: getEnvDuration("DISPLAY_POLL_INTERVAL", 5*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
