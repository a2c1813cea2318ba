package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

const envPrefix = "LIVEPOLL"

const (
	KeyServer         = "server"
	KeyTimeout        = "timeout"
	KeyDebug          = "debug"
	KeyAddr           = "addr"
	KeyStore          = "store"
	KeyPostgresDSN    = "postgres-dsn"
	KeyTopic          = "topic"
	KeyOptions        = "options"
	KeyAllowedOrigins = "allowed-origins"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

const DefaultTopic = "What is your favorite programming language?"

var DefaultOptions = []string{
	"1=Option A: TypeScript",
	"2=Option B: Go",
	"3=Option C: Python",
	"4=Option D: Rust",
}

// NewViper loads .env when present and returns a viper instance reading
// LIVEPOLL_* variables and, when configFile is set, that file.
func NewViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServer, "http://localhost:8080")
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyAddr, "0.0.0.0:8080")
	v.SetDefault(KeyStore, StoreMemory)
	v.SetDefault(KeyTopic, DefaultTopic)
	v.SetDefault(KeyOptions, DefaultOptions)
	v.SetDefault(KeyAllowedOrigins, []string{"*"})

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

type ClientConfig struct {
	// base URL of the voting backend
	ServerURL string
	// per-request timeout, zero disables it
	Timeout time.Duration
	Debug   bool
}

func NewClientConfig(v *viper.Viper) (*ClientConfig, error) {
	server := strings.TrimSpace(v.GetString(KeyServer))
	if server == "" {
		return nil, errors.New("server address is missing")
	}
	u, err := url.Parse(server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q", server)
	}
	timeout := v.GetDuration(KeyTimeout)
	if timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}

	return &ClientConfig{
		ServerURL: strings.TrimRight(server, "/"),
		Timeout:   timeout,
		Debug:     v.GetBool(KeyDebug),
	}, nil
}

type ServerConfig struct {
	Addr           string
	Store          string
	PostgresDSN    string
	Topic          string
	Options        []domain.Option
	AllowedOrigins []string
	Debug          bool
}

func NewServerConfig(v *viper.Viper) (*ServerConfig, error) {
	addr := v.GetString(KeyAddr)
	if addr == "" {
		return nil, errors.New("listen address is missing")
	}

	store := strings.ToLower(v.GetString(KeyStore))
	if store != StoreMemory && store != StorePostgres {
		return nil, fmt.Errorf("unknown store %q", store)
	}

	dsn := v.GetString(KeyPostgresDSN)
	if store == StorePostgres && dsn == "" {
		dsn = PostgresDSNFromEnv()
	}

	options, err := ParseOptions(stringList(v, KeyOptions))
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		Addr:           addr,
		Store:          store,
		PostgresDSN:    dsn,
		Topic:          v.GetString(KeyTopic),
		Options:        options,
		AllowedOrigins: stringList(v, KeyAllowedOrigins),
		Debug:          v.GetBool(KeyDebug),
	}, nil
}

// ParseOptions reads entries of the form "id=text". An entry without "=" uses
// the whole text as its id.
func ParseOptions(entries []string) ([]domain.Option, error) {
	options := make([]domain.Option, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, text, found := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		text = strings.TrimSpace(text)
		if !found {
			text = id
		}
		if id == "" {
			return nil, fmt.Errorf("option %q: %w", entry, domain.ErrEmptyOptionID)
		}
		if seen[id] {
			return nil, fmt.Errorf("option %q: %w", id, domain.ErrDuplicateID)
		}
		seen[id] = true
		options = append(options, domain.Option{ID: id, Text: text})
	}

	if len(options) == 0 {
		return nil, domain.ErrNoOptions
	}
	return options, nil
}

// stringList splits plain string values on commas. Viper would split them on
// whitespace, which breaks option texts such as "go=Option B: Go".
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var list []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// PostgresDSNFromEnv builds a connection string from the POSTGRES_* variables.
func PostgresDSNFromEnv() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
