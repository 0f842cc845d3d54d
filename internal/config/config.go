// Package config загружает настройки сессии из переменных окружения и файла .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	TestNetURL    = "https://api-testnet.bybit.com"
	MainNetURL    = "https://api.bybit.com"
	TestNetWSURL  = "wss://stream-testnet.bybit.com/v5/public/linear"
	MainNetWSURL  = "wss://stream.bybit.com/v5/public/linear"
	ClientConnect = "connector"
	ClientGCT     = "gct"
)

var (
	ErrMissingCredentials = errors.New("API_KEY and API_SECRET must be set in environment or .env file")
	ErrUnknownClient      = errors.New("unknown EXCHANGE_CLIENT")
	ErrEnvFileNotFound    = errors.New("env file not found")
)

// Settings неизменяемы после Load.
type Settings struct {
	APIKey         string `mapstructure:"API_KEY"`
	APISecret      string `mapstructure:"API_SECRET"`
	UseTestNetwork bool   `mapstructure:"USE_TEST_NETWORK"`
	BaseURL        string `mapstructure:"BASE_URL"`
	WSURL          string `mapstructure:"WS_URL"`
	Category       string `mapstructure:"CATEGORY"`
	ExchangeClient string `mapstructure:"EXCHANGE_CLIENT"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogDir         string `mapstructure:"LOG_DIR"`
}

var keys = []string{
	"API_KEY", "API_SECRET", "USE_TEST_NETWORK", "BASE_URL", "WS_URL",
	"CATEGORY", "EXCHANGE_CLIENT", "DATABASE_URL", "LOG_LEVEL", "LOG_DIR",
}

// Load читает envFile, поверх него переменные окружения.
// Пустой envFile означает ".env", и его отсутствие не ошибка;
// явно указанный файл обязан существовать.
func Load(envFile string) (Settings, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}

	v := viper.New()
	v.SetDefault("USE_TEST_NETWORK", true)
	v.SetDefault("CATEGORY", "linear")
	v.SetDefault("EXCHANGE_CLIENT", ClientConnect)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "logs")

	_, err := os.Stat(envFile)
	switch {
	case err == nil:
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	case explicit && errors.Is(err, os.ErrNotExist):
		return Settings{}, fmt.Errorf("%w: %s", ErrEnvFileNotFound, envFile)
	case explicit:
		return Settings{}, fmt.Errorf("stat %s: %w", envFile, err)
	}

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return Settings{}, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	s.APIKey = strings.TrimSpace(s.APIKey)
	s.APISecret = strings.TrimSpace(s.APISecret)
	if s.APIKey == "" || s.APISecret == "" {
		return Settings{}, ErrMissingCredentials
	}

	if s.BaseURL == "" {
		s.BaseURL = MainNetURL
		if s.UseTestNetwork {
			s.BaseURL = TestNetURL
		}
	}
	if s.WSURL == "" {
		s.WSURL = MainNetWSURL
		if s.UseTestNetwork {
			s.WSURL = TestNetWSURL
		}
	}

	s.ExchangeClient = strings.ToLower(s.ExchangeClient)
	if s.ExchangeClient != ClientConnect && s.ExchangeClient != ClientGCT {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownClient, s.ExchangeClient)
	}

	return s, nil
}

// Network для логов.
func (s Settings) Network() string {
	if s.UseTestNetwork {
		return "testnet"
	}
	return "mainnet"
}
