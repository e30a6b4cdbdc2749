package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Booking  BookingConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// QueueConfig Redis Stream 的逾時與重試設定
type QueueConfig struct {
	// redis 或 memory
	Driver             string
	ConsumerID         string
	ClaimMinIdleTime   time.Duration
	MaxRetryCount      int
	ReadGroupBlockTime time.Duration
}

// BookingConfig 預約流程的業務上限
type BookingConfig struct {
	DefaultMaxPerOrder int
	MaxVIPGuests       int
}

// GatewayConfig 前端核心呼叫預約服務時使用
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Queue:    GetQueueConfig(),
		Booking:  GetBookingConfig(),
		Gateway:  GetGatewayConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "8081", GinMode: "test"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Queue: QueueConfig{
			Driver:             "memory",
			ConsumerID:         "test",
			ClaimMinIdleTime:   time.Second,
			MaxRetryCount:      3,
			ReadGroupBlockTime: 200 * time.Millisecond,
		},
		Booking: BookingConfig{DefaultMaxPerOrder: 10, MaxVIPGuests: 10},
		Gateway: GatewayConfig{BaseURL: "http://localhost:8081/api/v1", Timeout: 5 * time.Second},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetQueueConfig() QueueConfig {
	return QueueConfig{
		Driver:             getEnv("QUEUE_DRIVER", "redis"),
		ConsumerID:         getEnv("QUEUE_CONSUMER_ID", ""),
		ClaimMinIdleTime:   getEnvDuration("QUEUE_CLAIM_MIN_IDLE", 5*time.Second),
		MaxRetryCount:      getEnvInt("QUEUE_MAX_RETRY", 5),
		ReadGroupBlockTime: getEnvDuration("QUEUE_BLOCK_TIME", 2*time.Second),
	}
}

func GetBookingConfig() BookingConfig {
	return BookingConfig{
		DefaultMaxPerOrder: getEnvInt("BOOKING_DEFAULT_MAX_PER_ORDER", 10),
		MaxVIPGuests:       getEnvInt("BOOKING_MAX_VIP_GUESTS", 10),
	}
}

func GetGatewayConfig() GatewayConfig {
	return GatewayConfig{
		BaseURL: getEnv("RESERVATION_API_URL", "http://localhost:8080/api/v1"),
		Timeout: getEnvDuration("RESERVATION_API_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
