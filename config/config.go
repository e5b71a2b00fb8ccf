package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Nipap    NipapConfig    `mapstructure:"nipap"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
	File   string `mapstructure:"file"`
}

// NipapConfig: параметры XML-RPC API сервера NIPAP.
type NipapConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	URI          string        `mapstructure:"uri"`
	ClientName   string        `mapstructure:"client_name"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// DatabaseConfig: прямое подключение к БД NIPAP (таблица psb_vlan).
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres | mysql | ""
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// setDefaults регистрирует все ключи, иначе AutomaticEnv не попадёт в Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("nipap.host", "localhost")
	v.SetDefault("nipap.port", "1337")
	v.SetDefault("nipap.user", "")
	v.SetDefault("nipap.password", "")
	v.SetDefault("nipap.uri", "")
	v.SetDefault("nipap.client_name", "nipaputil")
	v.SetDefault("nipap.probe_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "nipap")
	v.SetDefault("database.sslmode", "disable")
}

// Load читает конфиг: файл (опционально) + переменные окружения NIPAPUTIL_*.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NIPAPUTIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("nipaputil")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nipaputil")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.fill()
	return &cfg, nil
}

// Addr: host:port сервера NIPAP для проверки доступности.
func (n NipapConfig) Addr() string {
	if _, _, err := net.SplitHostPort(n.Host); err == nil || n.Port == "" {
		return n.Host
	}
	return net.JoinHostPort(n.Host, n.Port)
}

// fill выводит URI и DSN из отдельных полей, если они не заданы явно.
func (c *Config) fill() {
	if c.Nipap.URI == "" {
		u := url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(c.Nipap.Host, c.Nipap.Port),
			Path:   "/XMLRPC",
		}
		if c.Nipap.User != "" {
			u.User = url.UserPassword(c.Nipap.User, c.Nipap.Password)
		}
		c.Nipap.URI = u.String()
	}

	if c.Database.DSN == "" && c.Database.Driver != "" {
		host := c.Database.Host
		if host == "" {
			host = c.Nipap.Host
		}
		switch c.Database.Driver {
		case "postgres":
			c.Database.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
		case "mysql":
			c.Database.DSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4",
				c.Database.User, c.Database.Password, net.JoinHostPort(host, c.Database.Port), c.Database.Name)
		}
	}
}
