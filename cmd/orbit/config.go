package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tinytelemetry/orbit/internal/model"
)

const (
	defaultBindHost  = "0.0.0.0"
	defaultEnv       = "development"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultCORS      = "http://localhost:5173"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Addr        string        `mapstructure:"addr" validate:"required,hostname_port"`
	Env         string        `mapstructure:"env" validate:"oneof=development production"`
	JWTSecret   string        `mapstructure:"jwt-secret" validate:"required,min=16"`
	TokenTTL    time.Duration `mapstructure:"token-ttl" validate:"min=1s"`
	Auth        authConfig    `mapstructure:"auth"`
	CORSOrigins []string      `mapstructure:"cors-origins" validate:"min=1,dive,url"`
	LogLevel    string        `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	LogFormat   string        `mapstructure:"log-format" validate:"oneof=console json"`
	ConfigPath  string        `mapstructure:"-"` // not from config file
}

type authConfig struct {
	Username     string `mapstructure:"username" validate:"required_with=PasswordHash"`
	PasswordHash string `mapstructure:"password-hash" validate:"required_with=Username"`
}

func (c appConfig) production() bool { return c.Env == "production" }

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":       "addr",
	"env":        "env",
	"log-level":  "log-level",
	"log-format": "log-format",
}

func loadConfig(configPath string, flags *pflag.FlagSet) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ORBIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("addr", net.JoinHostPort(defaultBindHost, strconv.Itoa(model.DefaultAPIPort)))
	v.SetDefault("env", defaultEnv)
	v.SetDefault("jwt-secret", "")
	v.SetDefault("token-ttl", model.DefaultTokenTTL)
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password-hash", "")
	v.SetDefault("cors-origins", []string{defaultCORS})
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)

	if flags != nil {
		for flag, k := range flagKeys {
			if f := flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(k, f); err != nil {
					return cfg, err
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "orbit", "config.yml"))
	}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
		found = false
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if found {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their configuration key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateConfig reports the first invalid key by its configuration name.
func validateConfig(cfg appConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required (set ORBIT_%s)", key, envName(key))
	case "required_with":
		return fmt.Errorf("auth.username and auth.password-hash must be set together (missing %s)", key)
	case "min":
		return fmt.Errorf("invalid %s: must be at least %s", key, fe.Param())
	case "oneof":
		return fmt.Errorf("invalid %s %q: want one of %s", key, fe.Value(), fe.Param())
	default:
		return fmt.Errorf("invalid %s %v (%s)", key, fe.Value(), fe.Tag())
	}
}

// configKey drops the struct name from a namespace such as
// appConfig.auth.password-hash.
func configKey(ns string) string {
	_, key, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return key
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}
