package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации ноды.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Hardware HardwareConfig `mapstructure:"hardware"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Лимит анонимного трафика на один IP (запросов в секунду). 0 — выключено.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	// Адреса/CIDR прокси, которым доверяем X-Forwarded-For. Пусто — клиентом считается адрес сокета.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Addr собирает адрес для http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig описывает подключение к хранилищу аттестаций.
// URL определяет диалект: postgres://, mysql://, sqlite://
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig описывает подключение к Redis (кэш first_attest). Пустой Addr — кэш выключен.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	FirstAttestTTL time.Duration `mapstructure:"first_attest_ttl"`
}

// AuthConfig — единственный админский ключ. Загружается один раз при старте.
type AuthConfig struct {
	AdminKey string `mapstructure:"admin_key"`
}

// ChainConfig — константы слотов/эпох и денежной единицы.
type ChainConfig struct {
	GenesisTimestamp int64         `mapstructure:"genesis_timestamp"`
	BlockTime        time.Duration `mapstructure:"block_time"`
	EpochSlots       int64         `mapstructure:"epoch_slots"`
	PerEpochRTC      float64       `mapstructure:"per_epoch_rtc"`
	Unit             int64         `mapstructure:"unit"`
}

// HardwareConfig позволяет переопределить таблицу множителей древности.
// Список, а не мапа: viper приводит ключи мап к нижнему регистру, а сравнение у нас регистрозависимое.
type HardwareConfig struct {
	Weights []WeightEntry `mapstructure:"weights"`
}

type WeightEntry struct {
	Family     string  `mapstructure:"family"`
	Arch       string  `mapstructure:"arch"`
	Multiplier float64 `mapstructure:"multiplier"`
}

// EngineConfig содержит настройки журнала доступа и предохранителя кэша.
type EngineConfig struct {
	AuditBufferSize    int           `mapstructure:"audit_buffer_size"`
	AuditFlushInterval time.Duration `mapstructure:"audit_flush_interval"`

	// Circuit Breaker для Redis
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBMaxFailures uint32        `mapstructure:"cb_max_failures"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Старое имя переменной ноды тоже поддерживаем
	if err := v.BindEnv("auth.admin_key", "AUTH_ADMIN_KEY", "RC_ADMIN_KEY"); err != nil {
		return nil, fmt.Errorf("bind admin key env: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, без которых арифметика эпох и баланса ломается.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("config: database.url is required")
	}
	if c.Chain.BlockTime <= 0 {
		return errors.New("config: chain.block_time must be positive")
	}
	if c.Chain.EpochSlots <= 0 {
		return errors.New("config: chain.epoch_slots must be positive")
	}
	if c.Chain.Unit <= 0 {
		return errors.New("config: chain.unit must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8099)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 20)

	v.SetDefault("database.url", "sqlite://rustchain.db")
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.migrate", false)

	v.SetDefault("redis.first_attest_ttl", 10*time.Minute)

	v.SetDefault("chain.genesis_timestamp", 1764706927)
	v.SetDefault("chain.block_time", 600*time.Second)
	v.SetDefault("chain.epoch_slots", 144)
	v.SetDefault("chain.per_epoch_rtc", 1.5)
	v.SetDefault("chain.unit", 1_000_000)

	v.SetDefault("engine.audit_buffer_size", 1000)
	v.SetDefault("engine.audit_flush_interval", 1*time.Second)
	v.SetDefault("engine.cb_max_requests", 1)
	v.SetDefault("engine.cb_interval", 30*time.Second)
	v.SetDefault("engine.cb_timeout", 15*time.Second)
	v.SetDefault("engine.cb_max_failures", 5)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
