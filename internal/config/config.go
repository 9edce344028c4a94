package config

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeInMemory DBType = "inMemory"
)

type SessionStoreType string

const (
	SessionStoreDB    SessionStoreType = "db"
	SessionStoreRedis SessionStoreType = "redis"
)

const generatedSecretBytes = 32

type Config struct {
	// Адрес, на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS" validate:"required,hostname_port"`
	// Базовый адрес результирующего сокращенного URL
	BaseURL *url.URL `env:"BASE_URL" validate:"-"`
	// Тип хранилища. Через флаги не настраивается, DATABASE_DSN подразумевает postgres.
	DBType      DBType `env:"DB_TYPE"      validate:"oneof=sqlite postgres inMemory"`
	SQLitePath  string `env:"SQLITE_PATH"  validate:"required_if=DBType sqlite"`
	DatabaseDSN string `env:"DATABASE_DSN" validate:"required_if=DBType postgres"`

	SessionStore  SessionStoreType `env:"SESSION_STORE"  validate:"oneof=db redis"`
	RedisAddr     string           `env:"REDIS_ADDR"     validate:"required_if=SessionStore redis"`
	RedisPassword string           `env:"REDIS_PASSWORD"`
	RedisDB       int              `env:"REDIS_DB"       validate:"gte=0"`

	// Ключ подписи токенов сессии. Обязателен в release режиме.
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    validate:"gt=0"`
	BcryptCost    int           `env:"BCRYPT_COST"    validate:"gte=4,lte=31"`

	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warning error"`

	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_if=EnableHTTPS true"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"  validate:"required_if=EnableHTTPS true"`

	// Сколько попыток входа и регистрации разрешено одному IP за окно. 0 отключает ограничение.
	LoginRateLimit   int           `env:"LOGIN_RATE_LIMIT"   validate:"gte=0"`
	LoginRateWindow  time.Duration `env:"LOGIN_RATE_WINDOW"  validate:"gt=0"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	// IP или CIDR прокси, чьим X-Forwarded-For можно верить. Пусто - IP клиента берется из соединения.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,ip|cidr"`

	// Release выставляется по GIN_MODE=release.
	Release bool           `env:"-"`
	Logger  *logrus.Logger `env:"-" validate:"-"`
}

// MustLoadConfig загружает конфиг из аргументов процесса и паникует при ошибке.
func MustLoadConfig() *Config {
	conf, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig собирает конфигурацию. Приоритет: переменные окружения, затем .env, затем флаги,
// затем значения по умолчанию.
func LoadConfig(args []string) (*Config, error) {
	release := os.Getenv("GIN_MODE") == "release"

	// .env не перезаписывает уже выставленные переменные окружения.
	dotenvErr := godotenv.Load()

	conf := defaultConfig()
	flagBaseURL, err := loadFlags(conf, args)
	if err != nil {
		return nil, errors.Wrap(err, "parse flags error")
	}

	if err = env.Parse(conf); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	if conf.DatabaseDSN != "" && os.Getenv("DB_TYPE") == "" {
		conf.DBType = DBTypePostgres
	}
	if conf.BaseURL == nil {
		conf.BaseURL = flagBaseURL
	}
	if conf.BaseURL != nil {
		// отсекаем Path и Query, если они заданы в базовом урле.
		conf.BaseURL = &url.URL{Scheme: conf.BaseURL.Scheme, Host: conf.BaseURL.Host}
	}

	conf.Release = release
	conf.Logger = initLogger(release, conf.LogLevel)
	if dotenvErr != nil {
		conf.Logger.Debugf("skip .env: %s", dotenvErr.Error())
	}

	if err = validator.New().Struct(conf); err != nil {
		return nil, errors.Wrap(err, "validate config error")
	}

	if conf.SessionSecret == "" {
		if release {
			return nil, errors.New("SESSION_SECRET is required in release mode")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		conf.SessionSecret = secret
		conf.Logger.Warn("SESSION_SECRET is not set, generated a random one: sessions will not survive restart")
	}

	return conf, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:   "localhost:8080",
		DBType:          DBTypeSQLite,
		SQLitePath:      "shortener.db",
		SessionStore:    SessionStoreDB,
		SessionTTL:      24 * time.Hour,
		BcryptCost:      10,
		LogLevel:        "info",
		TLSCertFile:     "cert.pem",
		TLSKeyFile:      "key.pem",
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
	}
}

// loadFlags парсит флаги командной строки поверх значений по умолчанию.
// Базовый URL возвращается отдельно, чтобы переменная BASE_URL имела приоритет.
func loadFlags(conf *Config, args []string) (*url.URL, error) {
	var baseURL *url.URL
	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)

	fs.StringVar(&conf.ServerAddress, "a", conf.ServerAddress, "Адрес сервера")

	bDesc := "Базовый адрес результирующего сокращенного URL (по умолчанию Scheme://Host запущенного сервера)"
	fs.Func("b", bDesc, func(rawURL string) error {
		parsedURL, err := url.ParseRequestURI(rawURL)
		if err != nil {
			return errors.Wrap(err, "failed to parse base url")
		}
		baseURL = parsedURL
		return nil
	})

	fs.StringVar(&conf.SQLitePath, "f", conf.SQLitePath, "Путь к файлу базы sqlite")
	fs.Func("d", "Строка подключения к PostgreSQL", func(dsn string) error {
		conf.DatabaseDSN = dsn
		conf.DBType = DBTypePostgres
		return nil
	})
	fs.BoolVar(&conf.EnableHTTPS, "s", conf.EnableHTTPS, "Включить HTTPS")

	if err := fs.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return baseURL, nil
}

func randomSecret() (string, error) {
	b := make([]byte, generatedSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate session secret")
	}
	return hex.EncodeToString(b), nil
}
