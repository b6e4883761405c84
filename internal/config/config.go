package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProfileStorePostgREST = "postgrest"
	ProfileStorePostgres  = "postgres"
)

type Config struct {
	Env              string        `env:"ENV" env-default:"production"`
	ServerPort       string        `env:"SERVER_PORT" env-default:"8080"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	WebhookJWTSecret string        `env:"WEBHOOK_JWT_SECRET"` // Пусто - проверка вебхука отключена
	FCM              FCMConfig
	Supabase         SupabaseConfig
	ProfileStore     ProfileStoreConfig
	Log              LogConfig
}

// FCMConfig - учетные данные сервис-аккаунта Firebase. Все три поля обязательны.
type FCMConfig struct {
	PrivateKey  string `env:"FIREBASE_PRIVATE_KEY"`
	ClientEmail string `env:"FIREBASE_CLIENT_EMAIL"`
	ProjectID   string `env:"FIREBASE_PROJECT_ID"`
	DryRun      bool   `env:"FCM_DRY_RUN" env-default:"false"`
}

// SupabaseConfig проверяется при каждом запросе, а не при старте.
type SupabaseConfig struct {
	URL            string `env:"SUPABASE_URL"`
	ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
}

type ProfileStoreConfig struct {
	Driver      string `env:"PROFILE_STORE_DRIVER" env-default:"postgrest"`
	DatabaseURL string `env:"PROFILE_STORE_DATABASE_URL"`
	AutoMigrate bool   `env:"PROFILE_STORE_AUTO_MIGRATE" env-default:"false"`
	Table       string `env:"PROFILES_TABLE" env-default:"profiles"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// LoadConfig читает .env (если есть) и переменные окружения.
// Отсутствие любой из переменных FIREBASE_* - фатальная ошибка с именем переменной.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Предупреждение: не удалось прочитать %s: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные при старте значения.
func (c *Config) Validate() error {
	if err := c.FCM.Validate(); err != nil {
		return err
	}
	switch c.ProfileStore.Driver {
	case ProfileStorePostgREST:
	case ProfileStorePostgres:
		if c.ProfileStore.DatabaseURL == "" {
			return &MissingEnvError{Name: "PROFILE_STORE_DATABASE_URL"}
		}
	default:
		return fmt.Errorf("unknown PROFILE_STORE_DRIVER %q (expected %q or %q)",
			c.ProfileStore.Driver, ProfileStorePostgREST, ProfileStorePostgres)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c FCMConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"FIREBASE_PRIVATE_KEY", c.PrivateKey},
		{"FIREBASE_CLIENT_EMAIL", c.ClientEmail},
		{"FIREBASE_PROJECT_ID", c.ProjectID},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingEnvError{Name: r.name}
		}
	}
	return nil
}

// Missing возвращает имя первой незаданной переменной Supabase или пустую строку.
func (c SupabaseConfig) Missing() string {
	if c.URL == "" {
		return "SUPABASE_URL"
	}
	if c.ServiceRoleKey == "" {
		return "SUPABASE_SERVICE_ROLE_KEY"
	}
	return ""
}

// MissingEnvError - обязательная переменная окружения не задана.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("configuration error: required environment variable %s is not set", e.Name)
}
