// Package config loads service settings from configs/config.yml, environment
// variables (PANEL_ prefix) and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configKey  = "config"
	configFlag = "config"

	// placeholderSigningKey ships in configs/config.yml and must be replaced.
	placeholderSigningKey = "change-me"
)

const (
	envPrefix         = "PANEL"
	defaultConfigDir  = "configs"
	defaultConfigName = "config"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Security SecurityConfig `mapstructure:"security"`
	Panel    PanelConfig    `mapstructure:"panel"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Keypad   KeypadConfig   `mapstructure:"keypad"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// SecurityConfig tells a control panel where its security service lives.
type SecurityConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type PanelConfig struct {
	Port       string        `mapstructure:"port"`
	CodeLength int           `mapstructure:"code_length"`
	Heartbeat  time.Duration `mapstructure:"heartbeat"`
	Panels     []PanelEntry  `mapstructure:"panels"`
}

// PanelEntry binds a physical panel to the subject it acts for.
type PanelEntry struct {
	ID        string `mapstructure:"id"`
	SubjectID string `mapstructure:"subject_id"`
}

type FeedbackConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig enables the Redis feedback sink when Addr is set.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Channel   string `mapstructure:"channel"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type KeypadConfig struct {
	SerialPort string `mapstructure:"serial_port"`
	Baud       int    `mapstructure:"baud"`
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault(configKey, "")
	v.SetDefault("log.level", "info")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("db.path", "security.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("security.base_url", "http://127.0.0.1:8080")
	v.SetDefault("security.username", "")
	v.SetDefault("security.password", "")
	v.SetDefault("security.timeout", 5*time.Second)
	v.SetDefault("panel.port", "8081")
	v.SetDefault("panel.code_length", 4)
	v.SetDefault("panel.heartbeat", 30*time.Second)
	v.SetDefault("feedback.redis.addr", "")
	v.SetDefault("feedback.redis.password", "")
	v.SetDefault("feedback.redis.db", 0)
	v.SetDefault("feedback.redis.channel", "panel:feedback")
	v.SetDefault("feedback.redis.key_prefix", "panel:")
	v.SetDefault("keypad.serial_port", "")
	v.SetDefault("keypad.baud", 9600)
}

// Load reads the config file at path, or configs/config.yml when path is empty.
// A missing default file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	return load(newViper(), path)
}

// LoadFlags is Load for commands: the --config flag (or PANEL_CONFIG) picks the
// file, and each entry of bind maps a config key to the flag that overrides it.
// Precedence is flag, environment, file, default.
func LoadFlags(flags *pflag.FlagSet, bind map[string]string) (*Config, error) {
	v := newViper()
	if err := bindFlag(v, configKey, flags, configFlag); err != nil {
		return nil, err
	}
	for key, name := range bind {
		if err := bindFlag(v, key, flags, name); err != nil {
			return nil, err
		}
	}
	return load(v, v.GetString(configKey))
}

func bindFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) error {
	f := flags.Lookup(name)
	if f == nil {
		return fmt.Errorf("bind %s: flag --%s is not defined", key, name)
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(defaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateSecurityService checks the settings the security service cannot run without.
func (c *Config) ValidateSecurityService() error {
	if err := c.validateSigningKey(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// validateSigningKey is shared by both services: the security service signs
// operator tokens with the key and the control panel verifies them.
func (c *Config) validateSigningKey() error {
	key := strings.TrimSpace(c.Auth.SigningKey)
	if key == "" {
		return errors.New("auth.signing_key is required")
	}
	if key == placeholderSigningKey {
		return fmt.Errorf("auth.signing_key is still the %q placeholder", placeholderSigningKey)
	}
	return nil
}

// ValidatePanels checks the control panel runtime settings.
func (c *Config) ValidatePanels() error {
	if c.Security.BaseURL == "" {
		return errors.New("security.base_url is required")
	}
	if err := c.validateSigningKey(); err != nil {
		return err
	}
	if len(c.Panel.Panels) == 0 {
		return errors.New("panel.panels must list at least one panel")
	}
	seen := make(map[string]bool, len(c.Panel.Panels))
	for i, p := range c.Panel.Panels {
		if p.ID == "" || p.SubjectID == "" {
			return fmt.Errorf("panel.panels[%d]: id and subject_id are required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("panel.panels[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	if c.Panel.Port == "" {
		return errors.New("panel.port is required")
	}
	if c.Panel.CodeLength < 0 {
		return errors.New("panel.code_length must not be negative")
	}
	return nil
}
