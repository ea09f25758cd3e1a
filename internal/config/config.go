package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"storefront/internal/domain"
)

type Config struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	MySQL             MySQL         `envconfig:"MYSQL"`
	Redis             Redis         `envconfig:"REDIS"`
	ProductCacheTTL   time.Duration `envconfig:"PRODUCT_CACHE_TTL" default:"1m"`
	RabbitMQ          RabbitMQ      `envconfig:"RABBITMQ"`
	Log               Log           `envconfig:"LOG"`
	LowStockThreshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	Company           Company       `envconfig:"COMPANY"`
}

// Nested sections read only their prefixed keys, e.g. MYSQL_HOST.
type MySQL struct {
	User            string        `default:"root"`
	Password        string
	Host            string        `default:"localhost"`
	Port            string        `default:"3306"`
	Database        string        `default:"storefront"`
	MaxOpenConns    int           `split_words:"true" default:"50"`
	MaxIdleConns    int           `split_words:"true" default:"10"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"5m"`
	AutoMigrate     bool          `split_words:"true" default:"false"`
}

// DSN is the go-sql-driver form. multiStatements is needed by the SQL migrations.
func (m MySQL) DSN() string {
	q := url.Values{}
	q.Set("charset", "utf8mb4")
	q.Set("parseTime", "True")
	q.Set("loc", "Local")
	q.Set("multiStatements", "true")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", m.User, m.Password, m.Host, m.Port, m.Database, q.Encode())
}

type Redis struct {
	Host string
	Port string `default:"6379"`
	DB   int    `default:"0"`
}

// Addr is empty when Redis is not configured.
func (r Redis) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RabbitMQ struct {
	URL      string
	Exchange string `default:"storefront.exchange"`
}

type Log struct {
	Level  string `default:"info"`
	Format string `default:"text"`
}

type Company struct {
	Name    string `default:"Storefront"`
	Address string
	Phone   string
	Email   string
}

func (c Company) Domain() domain.Company {
	return domain.Company{Name: c.Name, Address: c.Address, Phone: c.Phone, Email: c.Email}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
