package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы хранилища заказов
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config содержит конфигурацию сервиса, считанную из переменных окружения
type Config struct {
	// HTTP сервер, например :8000
	ServerAddr string `validate:"required"`

	// Хранилище заказов
	DBDriver    string `validate:"required,oneof=postgres sqlite"`
	PostgresDSN string `validate:"required_if=DBDriver postgres"`
	SQLitePath  string `validate:"required_if=DBDriver sqlite"`

	// Путь к JSON файлу меню
	MenuPath string `validate:"required"`

	// Кэш заказов: время жизни и сколько последних заказов загружать при старте
	CacheTTL         time.Duration `validate:"gt=0"`
	CacheWarmUpLimit int           `validate:"gte=0"`

	// Kafka: входящие заказы, события о принятых заказах и DLQ
	KafkaEnabled     bool
	KafkaBrokers     []string `validate:"required_if=KafkaEnabled true,dive,required"`
	KafkaOrdersTopic string   `validate:"required_if=KafkaEnabled true"`
	KafkaEventsTopic string   `validate:"required_if=KafkaEnabled true"`
	KafkaDLQTopic    string   `validate:"required_if=KafkaEnabled true"`
	KafkaGroupID     string   `validate:"required_if=KafkaEnabled true"`
}

var validate = validator.New()

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Автозагрузка .env, если файл есть в рабочей директории
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:       stringEnv("SERVER_ADDR", ":8000"),
		DBDriver:         strings.ToLower(stringEnv("DB_DRIVER", DriverPostgres)),
		PostgresDSN:      stringEnv("POSTGRES_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=restaurant sslmode=disable"),
		SQLitePath:       stringEnv("SQLITE_PATH", "./data/restaurant.db"),
		MenuPath:         stringEnv("MENU_PATH", "./data/menu.json"),
		KafkaBrokers:     listEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaOrdersTopic: stringEnv("KAFKA_ORDERS_TOPIC", "orders"),
		KafkaEventsTopic: stringEnv("KAFKA_EVENTS_TOPIC", "order-events"),
		KafkaDLQTopic:    stringEnv("KAFKA_DLQ_TOPIC", "orders-dlq"),
		KafkaGroupID:     stringEnv("KAFKA_GROUP_ID", "restaurant-service-group"),
	}

	var err error
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheWarmUpLimit, err = intEnv("CACHE_WARMUP_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = boolEnv("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}

	// Валидация
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("Некорректная конфигурация: %w", err)
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// listEnv читает список через запятую, разрешая пробелы после запятой
func listEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
