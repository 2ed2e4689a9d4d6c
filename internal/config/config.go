package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingCredentials = errors.New("either ACQUIRING_USERNAME/ACQUIRING_PASSWORD or ACQUIRING_TOKEN must be set")

type Config struct {
	AppEnv string

	GatewayBaseURI  string
	GatewayUserName string
	GatewayPassword string
	GatewayToken    string
	GatewayTimeout  time.Duration
	ReturnURL       string
	FailURL         string
	MerchantLogin   string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	PaymentsTable   string
	OperationsTable string

	AMQPURL      string
	AMQPExchange string

	// Gateway calls per second during a status refresh run, 0 disables pacing.
	StatusRefreshRPS float64
	PushgatewayURL   string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          os.Getenv("APP_ENV"),
		GatewayBaseURI:  os.Getenv("ACQUIRING_BASE_URI"),
		GatewayUserName: os.Getenv("ACQUIRING_USERNAME"),
		GatewayPassword: os.Getenv("ACQUIRING_PASSWORD"),
		GatewayToken:    os.Getenv("ACQUIRING_TOKEN"),
		ReturnURL:       os.Getenv("ACQUIRING_RETURN_URL"),
		FailURL:         os.Getenv("ACQUIRING_FAIL_URL"),
		MerchantLogin:   os.Getenv("ACQUIRING_MERCHANT_LOGIN"),
		DBHost:          os.Getenv("DB_HOST"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          getEnv("DB_PORT", "5432"),
		PaymentsTable:   getEnv("PAYMENTS_TABLE", "acquiring_payments"),
		OperationsTable: getEnv("OPERATIONS_TABLE", "acquiring_payment_operations"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "acquiring"),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
	}

	timeout, err := time.ParseDuration(getEnv("ACQUIRING_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACQUIRING_TIMEOUT: %w", err)
	}
	cfg.GatewayTimeout = timeout

	if v := os.Getenv("STATUS_REFRESH_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("invalid STATUS_REFRESH_RPS: %q", v)
		}
		cfg.StatusRefreshRPS = rps
	}

	hasPair := cfg.GatewayUserName != "" && cfg.GatewayPassword != ""
	if !hasPair && cfg.GatewayToken == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
