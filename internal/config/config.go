package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Auth      AuthConfig      `toml:"auth"`
	Parking   ParkingConfig   `toml:"parking"`
	Sweep     SweepConfig     `toml:"sweep"`
	Redis     RedisConfig     `toml:"redis"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	CORS      CORSConfig      `toml:"cors"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
	RequestTimeout  int `toml:"request_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	TxMaxAttempts   int    `toml:"tx_max_attempts"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AuthConfig настройки выдачи JWT
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
	BcryptCost    int    `toml:"bcrypt_cost"`

	// AllowAdminRegistration разрешает регистрацию с ролью admin
	AllowAdminRegistration bool `toml:"allow_admin_registration"`
}

// TokenTTL время жизни токена
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// ParkingConfig тариф, часовой пояс и разметка площадок
type ParkingConfig struct {
	HourlyRate int64          `toml:"hourly_rate"`
	Timezone   string         `toml:"timezone"`
	Areas      []AreaLayout   `toml:"areas"`
	Location   *time.Location `toml:"-"`
}

// AreaLayout разметка одной площадки
type AreaLayout struct {
	Area       string          `toml:"area"`
	Car        PartitionLayout `toml:"car"`
	Motorcycle PartitionLayout `toml:"motorcycle"`
}

// PartitionLayout разметка одного класса транспорта на площадке
type PartitionLayout struct {
	Total       int `toml:"total"`
	SlotsPerRow int `toml:"slots_per_row"`
	PWDSlots    int `toml:"pwd_slots"`
}

// SweepConfig настройки фоновой проверки истекших бронирований
type SweepConfig struct {
	Disabled  bool   `toml:"disabled"`
	Schedule  string `toml:"schedule"`
	BatchSize int    `toml:"batch_size"`
}

// RedisConfig настройки redis (idempotency keys). Пустой Addr отключает redis.
type RedisConfig struct {
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	IdempotencyTTL int    `toml:"idempotency_ttl"`
}

// RabbitMQConfig настройки публикации событий. Пустой URL отключает брокер.
type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// RateLimitConfig ограничение запросов на IP клиента
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// CORSConfig настройки CORS для браузерного клиента
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Load читает конфигурацию из toml файла и переопределяет секреты из окружения (.env подхватывается, если есть)
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrReadConfig, err)
	}
	cfg.applyEnv()

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Parking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: parking.timezone %q: %v", ErrInvalidConfig, cfg.Parking.Timezone, err)
	}
	cfg.Parking.Location = loc

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
}

func (c *Config) setDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 5
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.TxMaxAttempts == 0 {
		c.Database.TxMaxAttempts = 3
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "parking-service"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Parking.HourlyRate == 0 {
		c.Parking.HourlyRate = 50
	}
	if c.Parking.Timezone == "" {
		c.Parking.Timezone = "UTC"
	}
	if len(c.Parking.Areas) == 0 {
		c.Parking.Areas = DefaultAreas()
	}
	if c.Sweep.Schedule == "" {
		c.Sweep.Schedule = "@every 1m"
	}
	if c.Sweep.BatchSize == 0 {
		c.Sweep.BatchSize = 100
	}
	if c.Redis.IdempotencyTTL == 0 {
		c.Redis.IdempotencyTTL = 86400
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "parking.booking.events"
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret (or JWT_SECRET) is required", ErrInvalidConfig)
	}
	if c.Parking.HourlyRate < 0 {
		return fmt.Errorf("%w: parking.hourly_rate must be positive", ErrInvalidConfig)
	}
	for _, a := range c.Parking.Areas {
		for _, p := range []PartitionLayout{a.Car, a.Motorcycle} {
			if p.Total < 0 || p.SlotsPerRow <= 0 || p.PWDSlots < 0 || p.PWDSlots > p.Total {
				return fmt.Errorf("%w: parking area %q has invalid layout", ErrInvalidConfig, a.Area)
			}
		}
	}
	return nil
}

// DefaultAreas разметка площадок по умолчанию
func DefaultAreas() []AreaLayout {
	car := PartitionLayout{Total: 142, SlotsPerRow: 10, PWDSlots: 10}
	return []AreaLayout{
		{Area: "parking3", Car: car, Motorcycle: PartitionLayout{Total: 59, SlotsPerRow: 15}},
		{Area: "parking4", Car: car, Motorcycle: PartitionLayout{Total: 59, SlotsPerRow: 15}},
		{Area: "roofdeck", Car: car, Motorcycle: PartitionLayout{Total: 90, SlotsPerRow: 15}},
	}
}

// Layout переводит разметку из конфига в доменную модель
func (p ParkingConfig) Layout() (domain.ParkingLayout, error) {
	layout := domain.ParkingLayout{}
	for _, a := range p.Areas {
		area, err := domain.ParseArea(a.Area)
		if err != nil {
			return layout, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		layout.Partitions = append(layout.Partitions,
			domain.Partition{Area: area, VehicleClass: domain.VehicleCar, Total: a.Car.Total, SlotsPerRow: a.Car.SlotsPerRow, PWDSlots: a.Car.PWDSlots},
			domain.Partition{Area: area, VehicleClass: domain.VehicleMotorcycle, Total: a.Motorcycle.Total, SlotsPerRow: a.Motorcycle.SlotsPerRow, PWDSlots: a.Motorcycle.PWDSlots},
		)
	}
	return layout, nil
}
