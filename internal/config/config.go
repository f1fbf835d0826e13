package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/cache"
	"github.com/teranga-stays/service-rental/internal/platform/database"
	"github.com/teranga-stays/service-rental/internal/storage"
)

const envPrefix = "RENTAL"

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret          string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}

// KafkaConfig holds broker settings. Disabled means events are logged only.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	GroupID string
}

// RedisConfig enables the listing read cache.
type RedisConfig struct {
	Enabled bool
	TTL     time.Duration
	cache.RedisConfig
}

// SMTPConfig enables outgoing email. Disabled means emails are logged only.
type SMTPConfig struct {
	Enabled bool
	notification.SMTPConfig
}

// StorageConfig enables listing image uploads.
type StorageConfig struct {
	Enabled bool
	storage.Config
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	PublicBaseURL string
	MigrationsDir string
	DBConfig      database.PostgresConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	SMTPConfig    SMTPConfig
	StorageConfig StorageConfig
	PaymentConfig payment.Config
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Warnings lists settings that allow startup but disable a feature.
func (c *ServiceConfig) Warnings() []string {
	var out []string
	if c.PaymentConfig.WebhookSecret == "" {
		out = append(out, "RENTAL_STRIPE_WEBHOOK_SECRET is not set; payment webhooks will be rejected")
	}
	if c.PaymentConfig.SecretKey == "" {
		out = append(out, "RENTAL_STRIPE_SECRET_KEY is not set; checkout sessions will fail")
	}
	if c.JWTConfig.Secret == defaultJWTSecret {
		out = append(out, "RENTAL_JWT_SECRET is set to its insecure default")
	}
	return out
}

const defaultJWTSecret = "change-me"

// Load reads configuration from an optional .env file and RENTAL_* environment variables.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &ServiceConfig{
		Port:          v.GetString("SERVICE_PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessDuration:  v.GetDuration("JWT_ACCESS_DURATION"),
			RefreshDuration: v.GetDuration("JWT_REFRESH_DURATION"),
		},
		KafkaConfig: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		RedisConfig: RedisConfig{
			Enabled: v.GetBool("REDIS_ENABLED"),
			TTL:     v.GetDuration("REDIS_LISTING_TTL"),
			RedisConfig: cache.RedisConfig{
				Addr:     v.GetString("REDIS_ADDR"),
				Password: v.GetString("REDIS_PASSWORD"),
				DB:       v.GetInt("REDIS_DB"),
			},
		},
		SMTPConfig: SMTPConfig{
			Enabled: v.GetBool("SMTP_ENABLED"),
			SMTPConfig: notification.SMTPConfig{
				Host:        v.GetString("SMTP_HOST"),
				Port:        v.GetInt("SMTP_PORT"),
				Username:    v.GetString("SMTP_USERNAME"),
				Password:    v.GetString("SMTP_PASSWORD"),
				SenderEmail: v.GetString("SMTP_SENDER"),
				Encryption:  v.GetString("SMTP_ENCRYPTION"),
			},
		},
		StorageConfig: StorageConfig{
			Enabled: v.GetBool("STORAGE_ENABLED"),
			Config: storage.Config{
				Endpoint:      v.GetString("MINIO_ENDPOINT"),
				AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
				SecretKey:     v.GetString("MINIO_SECRET_KEY"),
				Bucket:        v.GetString("MINIO_BUCKET"),
				UseSSL:        v.GetBool("MINIO_USE_SSL"),
				PublicBaseURL: v.GetString("MINIO_PUBLIC_BASE_URL"),
			},
		},
		PaymentConfig: payment.Config{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      v.GetString("PAYMENT_CURRENCY"),
			SuccessURL:    v.GetString("PAYMENT_SUCCESS_URL"),
			CancelURL:     v.GetString("PAYMENT_CANCEL_URL"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_DURATION", "15m")
	v.SetDefault("JWT_REFRESH_DURATION", "168h")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_ID", "service-rental")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_LISTING_TTL", "5m")

	v.SetDefault("SMTP_ENABLED", false)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_ENCRYPTION", "starttls")
	v.SetDefault("SMTP_SENDER", "no-reply@localhost")

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_BUCKET", "listing-images")

	v.SetDefault("PAYMENT_CURRENCY", "xof")
	v.SetDefault("PAYMENT_SUCCESS_URL", "http://localhost:3000/bookings/{BOOKING_ID}?payment=success")
	v.SetDefault("PAYMENT_CANCEL_URL", "http://localhost:3000/bookings/{BOOKING_ID}?payment=cancelled")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
