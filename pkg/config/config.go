package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/aboragab2030/barada-booking-server/pkg/types"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// JWT configuration (staff tokens)
	JWT JWTConfig `mapstructure:"jwt"`

	// Clinic configuration
	Clinic ClinicConfig `mapstructure:"clinic"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// JWTConfig holds JWT configuration for staff authentication
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Issuer    string `mapstructure:"issuer"`
}

// ClinicConfig holds clinic-level settings that gate booking acceptance
// and reminder content.
type ClinicConfig struct {
	Name         string             `mapstructure:"name"`
	WorkingHours types.WorkingHours `mapstructure:"working_hours"`
	Reminders    ReminderConfig     `mapstructure:"reminders"`
}

// ReminderConfig holds reminder template text. Templates use {name},
// {doctor}, {date} and {time} placeholders.
type ReminderConfig struct {
	SMSBody       string `mapstructure:"sms_body"`
	WhatsAppBody  string `mapstructure:"whatsapp_body"`
	EmailSubject  string `mapstructure:"email_subject"`
	EmailBody     string `mapstructure:"email_body"`
	IntervalHours int    `mapstructure:"interval_hours"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/barada")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "barada")
	viper.SetDefault("database.user", "barada")
	viper.SetDefault("database.ssl_mode", "require")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// JWT defaults
	viper.SetDefault("jwt.issuer", "barada-booking-server")

	// Clinic defaults. Working-hours text matches the form staff edit in the
	// admin panel: Saturday-Thursday window, separate Friday window.
	viper.SetDefault("clinic.name", "مركز براده للعيون")
	viper.SetDefault("clinic.working_hours.weekdays", "9:00 صباحاً - 9:00 مساءً")
	viper.SetDefault("clinic.working_hours.friday", "4:00 مساءً - 9:00 مساءً")
	viper.SetDefault("clinic.reminders.sms_body", "تذكير بموعدك في {date} الساعة {time} مع {doctor}")
	viper.SetDefault("clinic.reminders.whatsapp_body", "مرحباً {name}، نذكركم بموعدكم يوم {date} الساعة {time} مع {doctor}")
	viper.SetDefault("clinic.reminders.email_subject", "تذكير بالموعد")
	viper.SetDefault("clinic.reminders.email_body", "مرحباً {name}، موعدكم يوم {date} الساعة {time} مع {doctor}.")
	viper.SetDefault("clinic.reminders.interval_hours", 24)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("monitoring.health_path", "/health")

	// Logging defaults
	viper.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if jwtSecret := os.Getenv("JWT_SECRET_KEY"); jwtSecret != "" {
		config.JWT.SecretKey = jwtSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.JWT.SecretKey == "" {
		return fmt.Errorf("JWT secret key is required")
	}

	if config.Database.Password == "" {
		return fmt.Errorf("database password is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Clinic.WorkingHours.Weekdays == "" || config.Clinic.WorkingHours.Friday == "" {
		return fmt.Errorf("clinic working hours are required")
	}

	return nil
}
