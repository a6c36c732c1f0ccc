package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
	}

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
		}
		Mongo struct {
			Url string `mapstructure:"URL"`
		}
	}

	ENGINE struct {
		SweepInterval    time.Duration `mapstructure:"SWEEP_INTERVAL"`
		UploadDir        string        `mapstructure:"UPLOAD_DIR"`
		UnsafeKeywords   []string      `mapstructure:"UNSAFE_KEYWORDS"`
		AllowedFileTypes []string      `mapstructure:"ALLOWED_FILE_TYPES"`
	}
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CIPHERCHAT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("ENGINE.SWEEP_INTERVAL", 5*time.Minute)
	viper.SetDefault("ENGINE.UPLOAD_DIR", "uploads")
	viper.SetDefault("ENGINE.UNSAFE_KEYWORDS", []string{"malware", "phishing", "virus", "hack", "abuse"})
	viper.SetDefault("ENGINE.ALLOWED_FILE_TYPES", []string{"png", "jpg", "jpeg", "gif", "pdf", "txt", "doc", "docx"})

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
