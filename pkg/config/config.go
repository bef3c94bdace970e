package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TELESHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Features FeatureFlagsConfig
	YooKassa YooKassaConfig
	CDEK     CDEKConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.CDEK.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TELESHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"TELESHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TELESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TELESHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TELESHOP_DB_DSN"`
	Driver string `envconfig:"TELESHOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TELESHOP_DB_HOST"`
	Port     int    `envconfig:"TELESHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"TELESHOP_DB_USER"`
	Password string `envconfig:"TELESHOP_DB_PASSWORD"`
	Name     string `envconfig:"TELESHOP_DB_NAME"`
	SSLMode  string `envconfig:"TELESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TELESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TELESHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TELESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TELESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles the DSN from the discrete host/user/name variables when
// TELESHOP_DB_DSN is not provided directly.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	if db.Host == "" {
		missing = append(missing, "TELESHOP_DB_HOST")
	}
	if db.User == "" {
		missing = append(missing, "TELESHOP_DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "TELESHOP_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database configuration incomplete: set TELESHOP_DB_DSN or %s", strings.Join(missing, ", "))
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	query := dsn.Query()
	query.Set("sslmode", db.SSLMode)
	dsn.RawQuery = query.Encode()

	db.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TELESHOP_REDIS_URL"`
	Address      string        `envconfig:"TELESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"TELESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"TELESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TELESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TELESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TELESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TELESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TELESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TELESHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TELESHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TELESHOP_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"TELESHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TELESHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TELESHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TELESHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TELESHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TELESHOP_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TELESHOP_AUTO_MIGRATE" default:"false"`
}

type YooKassaConfig struct {
	ShopID    string        `envconfig:"TELESHOP_YOOKASSA_SHOP_ID"`
	SecretKey string        `envconfig:"TELESHOP_YOOKASSA_SECRET_KEY"`
	ReturnURL string        `envconfig:"TELESHOP_YOOKASSA_RETURN_URL"`
	BaseURL   string        `envconfig:"TELESHOP_YOOKASSA_BASE_URL" default:"https://api.yookassa.ru/v3"`
	Timeout   time.Duration `envconfig:"TELESHOP_YOOKASSA_TIMEOUT" default:"30s"`
}

type CDEKConfig struct {
	Account        string        `envconfig:"TELESHOP_CDEK_ACCOUNT"`
	SecurePassword string        `envconfig:"TELESHOP_CDEK_SECURE_PASSWORD"`
	Environment    string        `envconfig:"TELESHOP_CDEK_ENV" default:"test"`
	TariffCode     int           `envconfig:"TELESHOP_CDEK_TARIFF_CODE" default:"136"`
	FromCityCode   int           `envconfig:"TELESHOP_CDEK_FROM_CITY_CODE" default:"44"`
	FromAddress    string        `envconfig:"TELESHOP_CDEK_FROM_ADDRESS"`
	Timeout        time.Duration `envconfig:"TELESHOP_CDEK_TIMEOUT" default:"30s"`

	// Carrier-side package dimensions in cm used when a variation carries no
	// physical dimensions of its own.
	DefaultLengthCM int `envconfig:"TELESHOP_CDEK_DEFAULT_LENGTH_CM" default:"1"`
	DefaultWidthCM  int `envconfig:"TELESHOP_CDEK_DEFAULT_WIDTH_CM" default:"1"`
	DefaultHeightCM int `envconfig:"TELESHOP_CDEK_DEFAULT_HEIGHT_CM" default:"1"`
}

const (
	CDEKEnvTest = "test"
	CDEKEnvProd = "prod"
)

var cdekBaseURLs = map[string]string{
	CDEKEnvTest: "https://api.edu.cdek.ru/v2",
	CDEKEnvProd: "https://api.cdek.ru/v2",
}

func (c *CDEKConfig) validate() error {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	if env == "" {
		env = CDEKEnvTest
	}
	if _, ok := cdekBaseURLs[env]; !ok {
		return fmt.Errorf("cdek environment must be %q or %q", CDEKEnvTest, CDEKEnvProd)
	}
	c.Environment = env
	return nil
}

// BaseURL resolves the carrier API root for the configured environment.
func (c CDEKConfig) BaseURL() string {
	if base, ok := cdekBaseURLs[strings.ToLower(c.Environment)]; ok {
		return base
	}
	return cdekBaseURLs[CDEKEnvTest]
}
