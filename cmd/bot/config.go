package main

import (
	"fmt"
	"strings"

	"referral_rewards_bot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`
	Telegram TelegramConfig    `yaml:"telegram"`

	MinReferrals int    `yaml:"minReferrals"`
	LogLevel     string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"botToken"`
	ChannelID     int64  `yaml:"channelId"`
	ChannelInvite string `yaml:"channelInvite"`
	AdminID       int64  `yaml:"adminId"`
	Debug         bool   `yaml:"debug"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("minReferrals", 10)
	viper.SetDefault("logLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	if cfg.Telegram.ChannelID == 0 {
		return nil, fmt.Errorf("telegram channel id is not set")
	}
	if cfg.MinReferrals < 1 {
		return nil, fmt.Errorf("minReferrals must be at least 1")
	}

	return &cfg, nil
}
