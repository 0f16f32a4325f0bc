package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "TOURNAMENTS"

	keyDatabasePath = "database_path"
	keyHTTPAddr     = "http_addr"
	keyLogLevel     = "log_level"
	keyCORSOrigins  = "cors_origins"

	defaultDatabasePath = "main_sports.db"
	defaultHTTPAddr     = ":8080"
	defaultLogLevel     = "info"
)

type Config struct {
	DatabasePath string
	HTTPAddr     string
	LogLevel     slog.Level
	CORSOrigins  []string
}

// Load reads .env (if any), then an optional YAML file, then TOURNAMENTS_*
// environment variables. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	v := viper.New()
	v.SetDefault(keyDatabasePath, defaultDatabasePath)
	v.SetDefault(keyHTTPAddr, defaultHTTPAddr)
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyCORSOrigins, []string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	dbPath := strings.TrimSpace(v.GetString(keyDatabasePath))
	if dbPath == "" {
		return nil, fmt.Errorf("%s must not be empty", keyDatabasePath)
	}

	level, err := parseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabasePath: dbPath,
		HTTPAddr:     v.GetString(keyHTTPAddr),
		LogLevel:     level,
		CORSOrigins:  v.GetStringSlice(keyCORSOrigins),
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid %s %q: %w", keyLogLevel, s, err)
	}
	return level, nil
}
