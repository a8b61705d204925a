package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string
	// Timezone — зона для reportTime без смещения (значение datetime-local из формы).
	Timezone string

	StoreDriver string

	Firestore struct {
		ProjectID       string
		Collection      string
		CredentialsJSON string
		CredentialsFile string
		EmulatorHost    string

		ClientEmail  string
		PrivateKey   string
		PrivateKeyID string
		ClientID     string
		TokenURI     string
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	SMS struct {
		APIURL         string
		APIKey         string
		PartnerID      string
		SenderID       string
		Recipients     []string
		DuplicateCheck string
		Timeout        time.Duration
		Concurrency    int
	}

	KafkaBrokers     []string
	KafkaTopicTicket string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:          getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:         firstEnv("PORT", "APP_PORT", "HTTP_PORT", "3000"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Timezone:         getEnv("TIMEZONE", "UTC"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),
		KafkaBrokers:     SplitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicTicket: getEnv("KAFKA_TOPIC_TICKET", ""),
	}

	cfg.Firestore.ProjectID = getEnv("FIREBASE_PROJECT_ID", "")
	cfg.Firestore.Collection = getEnv("FIRESTORE_COLLECTION", "tickets")
	cfg.Firestore.CredentialsJSON = getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	cfg.Firestore.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	cfg.Firestore.EmulatorHost = getEnv("FIRESTORE_EMULATOR_HOST", "")
	cfg.Firestore.ClientEmail = getEnv("FIREBASE_CLIENT_EMAIL", "")
	// ключ в .env хранится одной строкой с литеральными \n
	cfg.Firestore.PrivateKey = strings.ReplaceAll(getEnv("FIREBASE_PRIVATE_KEY", ""), `\n`, "\n")
	cfg.Firestore.PrivateKeyID = getEnv("FIREBASE_PRIVATE_KEY_ID", "")
	cfg.Firestore.ClientID = getEnv("FIREBASE_CLIENT_ID", "")
	cfg.Firestore.TokenURI = getEnv("FIREBASE_TOKEN_URI", "https://oauth2.googleapis.com/token")

	cfg.DB.Host = getEnv("DB_HOST", "")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "")
	cfg.DB.Database = getEnv("DB_DATABASE", "")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.SMS.APIURL = getEnv("SMS_API_URL", "")
	cfg.SMS.APIKey = getEnv("SMS_API_KEY", "")
	cfg.SMS.PartnerID = getEnv("SMS_PARTNER_ID", "")
	cfg.SMS.SenderID = getEnv("SMS_SENDER_ID", "")
	cfg.SMS.Recipients = SplitList(getEnv("SMS_RECIPIENTS", ""))
	cfg.SMS.DuplicateCheck = getEnv("SMS_DUPLICATE_CHECK", "1")

	timeout, err := getInt("SMS_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.SMS.Timeout = time.Duration(timeout) * time.Second
	if cfg.SMS.Concurrency, err = getInt("SMS_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет, что заданы все обязательные параметры. Сервис без хранилища
// или SMS-шлюза не запускается.
func (c *Config) Validate() error {
	var missing []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	need("PORT", c.HTTPPort)

	switch c.StoreDriver {
	case StoreFirestore:
		need("FIREBASE_PROJECT_ID", c.Firestore.ProjectID)
		need("FIRESTORE_COLLECTION", c.Firestore.Collection)
		if !c.hasFirestoreCredentials() {
			missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_CLIENT_EMAIL+FIREBASE_PRIVATE_KEY")
		}
	case StorePostgres:
		need("DB_HOST", c.DB.Host)
		need("DB_DATABASE", c.DB.Database)
		need("DB_USER", c.DB.User)
		if c.AppEnv == "production" {
			need("DB_PASSWORD", c.DB.Password)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, StoreFirestore, StorePostgres)
	}

	need("SMS_API_URL", c.SMS.APIURL)
	need("SMS_API_KEY", c.SMS.APIKey)
	need("SMS_PARTNER_ID", c.SMS.PartnerID)
	need("SMS_SENDER_ID", c.SMS.SenderID)
	if len(c.SMS.Recipients) == 0 {
		missing = append(missing, "SMS_RECIPIENTS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	if _, err := url.ParseRequestURI(c.SMS.APIURL); err != nil {
		return fmt.Errorf("config: SMS_API_URL: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: TIMEZONE: %w", err)
	}
	if c.SMS.Concurrency < 1 {
		return errors.New("config: SMS_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) hasFirestoreCredentials() bool {
	f := c.Firestore
	return f.EmulatorHost != "" || f.CredentialsJSON != "" || f.CredentialsFile != "" ||
		(f.ClientEmail != "" && f.PrivateKey != "")
}

// ServiceAccountJSON собирает JSON сервисного аккаунта из FIREBASE_* переменных.
// Возвращает nil, если ключ не задан.
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	f := c.Firestore
	if f.ClientEmail == "" || f.PrivateKey == "" {
		return nil, nil
	}
	return json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     f.ProjectID,
		"private_key_id": f.PrivateKeyID,
		"private_key":    f.PrivateKey,
		"client_email":   f.ClientEmail,
		"client_id":      f.ClientID,
		"token_uri":      f.TokenURI,
	})
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// SplitList разбивает "a, b,,c" на ["a" "b" "c"] с сохранением порядка.
func SplitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
