package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string  `yaml:"env" env:"ENV" env-default:"local"`
	Storage    Storage `yaml:"storage"`
	Redis      Redis   `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Auth       Auth `yaml:"auth"`
	Mail       Mail `yaml:"mail"`
	Jobs       Jobs `yaml:"jobs"`
}

type Storage struct {
	DSN         string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"STORAGE_AUTO_MIGRATE" env-default:"true"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	AllowedOrigin   string        `yaml:"allowed_origin" env:"HTTP_ALLOWED_ORIGIN" env-default:"*"`
}

type Auth struct {
	Secret       string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
	ResetTTL     time.Duration `yaml:"reset_ttl" env-default:"30m"`
	CookieName   string        `yaml:"cookie_name" env-default:"access_token"`
	CookieSecure bool          `yaml:"cookie_secure" env-default:"false"`
}

type Mail struct {
	SendGridKey string `yaml:"sendgrid_key" env:"SENDGRID_API_KEY"`
	FromName    string `yaml:"from_name" env-default:"Tutor Service"`
	FromEmail   string `yaml:"from_email" env-default:"no-reply@localhost"`
	ResetURL    string `yaml:"reset_url" env-default:"http://localhost:3000/reset-password"`
}

type Jobs struct {
	ReconcileSpec string `yaml:"reconcile_spec" env:"JOBS_RECONCILE_SPEC" env-default:"@hourly"`
}

// MustLoad reads the file named by CONFIG_PATH (./config/local.yaml by
// default). A .env file in the working directory is loaded first when present.
func MustLoad() *Config {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return &cfg, nil
}
