package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	ServiceName string `yaml:"SERVICE_NAME"`
	ServerPort  int    `yaml:"SERVER_PORT"`
	LogLevel    string `yaml:"LOG_LEVEL"`

	KVDriver    string `yaml:"KV_DRIVER"`
	DatabaseURL string `yaml:"DATABASE_URL"`
	RedisAddr   string `yaml:"REDIS_ADDR"`

	ProfileSecret []byte `yaml:"-"`

	RemoteAPIURL  string        `yaml:"REMOTE_API_URL"`
	RemoteTimeout time.Duration `yaml:"-"`

	PaymentURL         string `yaml:"PAYMENT_URL"`
	PaymentProvider    string `yaml:"PAYMENT_PROVIDER"`
	PaymentService     string `yaml:"PAYMENT_SERVICE"`
	MidtransServerKey  string `yaml:"MIDTRANS_SERVER_KEY"`
	MidtransProduction bool   `yaml:"MIDTRANS_PRODUCTION"`

	KafkaBrokers []string `yaml:"-"`

	ESURL      string `yaml:"ES_URL"`
	ESUser     string `yaml:"ES_USER"`
	ESPassword string `yaml:"ES_PASSWORD"`
	ESIndex    string `yaml:"ES_INDEX"`

	S3Bucket    string `yaml:"S3_BUCKET"`
	S3Region    string `yaml:"S3_REGION"`
	S3AccessKey string `yaml:"S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"S3_SECRET_KEY"`

	SMTPHost     string `yaml:"SMTP_HOST"`
	SMTPPort     int    `yaml:"SMTP_PORT"`
	SMTPUser     string `yaml:"SMTP_USER"`
	SMTPPassword string `yaml:"SMTP_PASSWORD"`
	SMTPFrom     string `yaml:"SMTP_FROM"`
	Inbox        string `yaml:"CANTEEN_INBOX"`
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := Config{
		ServiceName: EnvDefault("SERVICE_NAME", "canteen"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		KVDriver:    EnvDefault("KV_DRIVER", "sqlite"),
		DatabaseURL: EnvDefault("DATABASE_URL", "canteen.db"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		ProfileSecret: []byte(os.Getenv("PROFILE_SECRET")),

		RemoteAPIURL:  os.Getenv("REMOTE_API_URL"),
		RemoteTimeout: EnvDurationDefault("REMOTE_TIMEOUT", 0),

		PaymentURL:         EnvDefault("PAYMENT_URL", "https://pay.sibsiu.ru/"),
		PaymentProvider:    EnvDefault("PAYMENT_PROVIDER", "link"),
		PaymentService:     EnvDefault("PAYMENT_SERVICE", "canteen"),
		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: EnvBoolDefault("MIDTRANS_PRODUCTION", false),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "dishes"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    EnvDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     EnvIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		Inbox:        os.Getenv("CANTEEN_INBOX"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.Overlay(path); err != nil {
			log.Printf("warning: config file %s ignored: %v", path, err)
		}
	}

	return cfg
}

// Overlay replaces fields with the non-zero values found in a YAML file.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.overlayBytes(data)
}

func (c *Config) overlayBytes(data []byte) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	setString(&c.ServiceName, file.ServiceName)
	setString(&c.LogLevel, file.LogLevel)
	setString(&c.KVDriver, file.KVDriver)
	setString(&c.DatabaseURL, file.DatabaseURL)
	setString(&c.RedisAddr, file.RedisAddr)
	setString(&c.RemoteAPIURL, file.RemoteAPIURL)
	setString(&c.PaymentURL, file.PaymentURL)
	setString(&c.PaymentProvider, file.PaymentProvider)
	setString(&c.PaymentService, file.PaymentService)
	setString(&c.MidtransServerKey, file.MidtransServerKey)
	setString(&c.ESURL, file.ESURL)
	setString(&c.ESUser, file.ESUser)
	setString(&c.ESPassword, file.ESPassword)
	setString(&c.ESIndex, file.ESIndex)
	setString(&c.S3Bucket, file.S3Bucket)
	setString(&c.S3Region, file.S3Region)
	setString(&c.S3AccessKey, file.S3AccessKey)
	setString(&c.S3SecretKey, file.S3SecretKey)
	setString(&c.SMTPHost, file.SMTPHost)
	setString(&c.SMTPUser, file.SMTPUser)
	setString(&c.SMTPPassword, file.SMTPPassword)
	setString(&c.SMTPFrom, file.SMTPFrom)
	setString(&c.Inbox, file.Inbox)

	if file.ServerPort != 0 {
		c.ServerPort = file.ServerPort
	}
	if file.SMTPPort != 0 {
		c.SMTPPort = file.SMTPPort
	}
	if file.MidtransProduction {
		c.MidtransProduction = true
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
