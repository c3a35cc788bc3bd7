package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	defaultJWTSecret        = "default_jwt_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	LogLevel                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	ShutdownTimeout           time.Duration
	Database                  DatabaseConfig
	Redis                     RedisConfig
	Scheduling                SchedulingConfig
	RateLimit                 RateLimitConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
	LogLevel string
}

// RedisConfig holds the connection used for the distributed schedule lock.
// An empty Addr means locks are kept in process.
type RedisConfig struct {
	Addr          string
	Username      string
	Password      string
	LockTTL       time.Duration
	LockWait      time.Duration
	RetryInterval time.Duration
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// SchedulingConfig holds appointment validation settings
type SchedulingConfig struct {
	ReasonMaxLen int
	NotesMaxLen  int
	StatusPolicy string
}

// RateLimitConfig limits unauthenticated auth requests per client IP
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool { return c.Environment == "production" }

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	redisConfig, err := loadRedis()
	if err != nil {
		return nil, err
	}

	jwtExpMinutes, err := getInt("JWT_EXPIRATION_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	jwtRefreshExpHours, err := getInt("JWT_REFRESH_EXPIRATION_HOURS", 168) // 7 days
	if err != nil {
		return nil, err
	}

	reasonMax, err := getInt("APPOINTMENT_REASON_MAX_LEN", 250)
	if err != nil {
		return nil, err
	}
	notesMax, err := getInt("APPOINTMENT_NOTES_MAX_LEN", 2000)
	if err != nil {
		return nil, err
	}

	rps, err := getFloat("AUTH_RATE_LIMIT_RPS", 1)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("AUTH_RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", defaultJWTSecret),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		ShutdownTimeout:           shutdownTimeout,
		Database:                  dbConfig,
		Redis:                     redisConfig,
		Scheduling: SchedulingConfig{
			ReasonMaxLen: reasonMax,
			NotesMaxLen:  notesMax,
			StatusPolicy: getEnv("APPOINTMENT_STATUS_POLICY", "permissive"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret {
			return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
		}
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTExpirationMinutes <= 0 || c.JWTRefreshExpirationHours <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func loadDatabase() (DatabaseConfig, error) {
	driver := getEnv("DB_DRIVER", "mysql")
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	dbConfig := DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", defaultPort),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinic"),
		LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dbConfig.DSN = dsn
		return dbConfig, nil
	}

	switch driver {
	case "mysql":
		// Times are stored and read back in UTC.
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	case "postgres":
		dbConfig.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			dbConfig.Host, dbConfig.Username, dbConfig.Password, dbConfig.Name, dbConfig.Port)
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER %q: want mysql or postgres", driver)
	}
	return dbConfig, nil
}

func loadRedis() (RedisConfig, error) {
	cfg := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}

	if raw := os.Getenv("REDIS_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return RedisConfig{}, fmt.Errorf("invalid REDIS_URL %q", raw)
		}
		cfg.Addr = u.Host
		if u.User != nil {
			cfg.Username = u.User.Username()
			if pw, ok := u.User.Password(); ok {
				cfg.Password = pw
			}
		}
	}

	var err error
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 5*time.Second); err != nil {
		return RedisConfig{}, err
	}
	if cfg.LockWait, err = getDuration("LOCK_WAIT", 2*time.Second); err != nil {
		return RedisConfig{}, err
	}
	if cfg.RetryInterval, err = getDuration("LOCK_RETRY_INTERVAL", 25*time.Millisecond); err != nil {
		return RedisConfig{}, err
	}
	return cfg, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
