package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the dashboard service settings.
type Config struct {
	Port        string
	SecretKey   string
	CORSOrigins []string

	Mongo struct {
		URL      string
		Database string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		Stream   string // accepted-order events; empty disables publishing
	}

	Collections struct {
		Rooms           string
		ServiceRequests string
		FoodOrders      string
		OrderTracking   string
		GuestOrders     string
		Admins          string
	}

	// ErrorAlertWindow suppresses repeated error alerts with the same title.
	ErrorAlertWindow time.Duration

	Log struct {
		Level  string
		Format string
	}
}

// Load reads an optional env file and then the process environment.
// A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Port = getEnv("PORT", "8000")
	cfg.SecretKey = getEnv("SECRET_KEY", "")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:9000"))

	cfg.Mongo.URL = getEnv("MONGODB_URL", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnv("MONGODB_DATABASE", "hotel")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.Stream = getEnv("EVENTS_STREAM", "orders:accepted")

	cfg.Collections.Rooms = getEnv("COLLECTION_ROOMS", "rooms")
	cfg.Collections.ServiceRequests = getEnv("COLLECTION_SERVICE_REQUESTS", "serviceRequests")
	cfg.Collections.FoodOrders = getEnv("COLLECTION_FOOD_ORDERS", "foodOrders")
	cfg.Collections.OrderTracking = getEnv("COLLECTION_ORDER_TRACKING", "orderTracking")
	cfg.Collections.GuestOrders = getEnv("COLLECTION_GUEST_ORDERS", "guestOrders")
	cfg.Collections.Admins = getEnv("COLLECTION_ADMINS", "admins")

	window, err := time.ParseDuration(getEnv("ERROR_ALERT_WINDOW", "4s"))
	if err != nil {
		return nil, err
	}
	cfg.ErrorAlertWindow = window

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
