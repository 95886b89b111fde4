// Package config loads server settings from defaults, an optional config
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/campusfound/campusfound/internal/notify"
)

// EnvPrefix prefixes every environment variable, e.g. CAMPUSFOUND_SERVER_PORT
// for server.port.
const EnvPrefix = "CAMPUSFOUND"

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig `mapstructure:"server"`
	Mail      MailConfig   `mapstructure:"mail"`
	ClientURL string       `mapstructure:"client_url"`
}

// ServerConfig holds listener, storage and bootstrap settings.
type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	Port       int    `mapstructure:"port"`
	DB         string `mapstructure:"db"`
	Log        string `mapstructure:"log"`
	AdminName  string `mapstructure:"admin_name"`
	AdminEmail string `mapstructure:"admin_email"`
}

// MailConfig selects the outgoing mail account.
type MailConfig struct {
	Service           string `mapstructure:"service"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	FromName          string `mapstructure:"from_name"`
	RecipientOverride string `mapstructure:"recipient_override"`
	MonitorAddress    string `mapstructure:"monitor_address"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       5000,
			DB:         "campusfound.sqlite3",
			AdminName:  "Admin",
			AdminEmail: "admin@campusfound.local",
		},
		Mail: MailConfig{
			Service:  "gmail",
			FromName: "CampusFound",
		},
		ClientURL: notify.DefaultClientURL,
	}
}

// legacyEnv maps keys to the unprefixed variable names older deployments use.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"mail.service":         "EMAIL_SERVICE",
	"mail.username":        "EMAIL_USER",
	"mail.password":        "EMAIL_PASS",
	"mail.monitor_address": "ADMIN_EMAIL",
	"client_url":           "CLIENT_URL",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.db", d.Server.DB)
	v.SetDefault("server.log", d.Server.Log)
	v.SetDefault("server.admin_name", d.Server.AdminName)
	v.SetDefault("server.admin_email", d.Server.AdminEmail)

	v.SetDefault("mail.service", d.Mail.Service)
	v.SetDefault("mail.host", d.Mail.Host)
	v.SetDefault("mail.port", d.Mail.Port)
	v.SetDefault("mail.username", d.Mail.Username)
	v.SetDefault("mail.password", d.Mail.Password)
	v.SetDefault("mail.from_name", d.Mail.FromName)
	v.SetDefault("mail.recipient_override", d.Mail.RecipientOverride)
	v.SetDefault("mail.monitor_address", d.Mail.MonitorAddress)

	v.SetDefault("client_url", d.ClientURL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The prefixed name wins over the legacy one.
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// Load reads the optional .env file at envFile, then the config file (an
// explicit path must exist; otherwise campusfound.yaml is looked up in the
// working directory), and returns the merged, validated configuration.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("campusfound")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.DB == "" {
		errs = append(errs, errors.New("server.db must not be empty"))
	}
	if c.Mail.Port < 0 || c.Mail.Port > 65535 {
		errs = append(errs, fmt.Errorf("mail.port must be between 0 and 65535, got %d", c.Mail.Port))
	}
	if u, err := url.Parse(c.ClientURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("client_url must be an absolute URL, got %q", c.ClientURL))
	}
	return errors.Join(errs...)
}

// ListenAddr returns the HTTP listen address. An explicit addr wins over
// the port.
func (c *Config) ListenAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Notify converts the mail settings for the notification dispatcher.
func (c *Config) Notify() notify.Config {
	return notify.Config{
		Service:           c.Mail.Service,
		Host:              c.Mail.Host,
		Port:              c.Mail.Port,
		Username:          c.Mail.Username,
		Password:          c.Mail.Password,
		FromName:          c.Mail.FromName,
		RecipientOverride: c.Mail.RecipientOverride,
		MonitorAddress:    c.Mail.MonitorAddress,
		ClientURL:         c.ClientURL,
	}
}
