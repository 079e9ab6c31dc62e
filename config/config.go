package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when MIAN_BOT_TOKEN is empty. It is fatal: the bot must not touch the network.
var ErrMissingToken = errors.New("MIAN_BOT_TOKEN is not set, check your .env file")

// Config is the process configuration, loaded once at startup.
type Config struct {
	Token          string
	AuthorID       string
	Prefix         string
	TextCommands   bool
	AdminChannelID string
	StatusSchedule string
	GRPCAddress    string
	LogLevel       string
}

// LoadConfig loads configuration from the working directory.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".")
}

// LoadConfigFrom loads configuration from several sources:
//  1. <dir>/.env (exported into the process environment, existing variables win)
//  2. <dir>/config.yaml (optional)
//  3. environment variables, which override the file. Keys map '.' to '_'
//     so bot.prefix is read from BOT_PREFIX.
func LoadConfigFrom(dir string) (*Config, error) {
	log := logrus.WithField("module", "config")

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Debug("No .env file found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("bot.prefix", "!")
	v.SetDefault("bot.textCommands", false)
	v.SetDefault("bot.statusSchedule", "@every 1m")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		log.Debug("No config.yaml found, using environment variables and defaults")
	}

	cfg := &Config{
		Token:          strings.TrimSpace(v.GetString("MIAN_BOT_TOKEN")),
		AuthorID:       strings.TrimSpace(v.GetString("AUTHOR_ID")),
		Prefix:         v.GetString("bot.prefix"),
		TextCommands:   v.GetBool("bot.textCommands"),
		AdminChannelID: v.GetString("bot.adminChannelId"),
		StatusSchedule: v.GetString("bot.statusSchedule"),
		GRPCAddress:    v.GetString("grpc.address"),
		LogLevel:       v.GetString("log.level"),
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	if cfg.Token == "" {
		return cfg, ErrMissingToken
	}
	return cfg, nil
}
