package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults applied before the config file and environment are read.
const (
	DefaultDatabasePath = "$HOME/.local/share/tally/tally.db"
	DefaultServerAddr   = "127.0.0.1:8420"
	DefaultMemoEntries  = 64
)

// Config is the resolved application configuration.
type Config struct {
	Logging  LoggingConfig
	Server   ServerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
}

// DatabaseConfig selects and locates the ledger store.
type DatabaseConfig struct {
	Path    string
	DSN     string
	Dialect storage.Dialect
}

// LedgerConfig tunes snapshot loading and the dashboard memo.
type LedgerConfig struct {
	MemoEntries int
	StrictFetch bool
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("ledger.strict_fetch", false)
	v.SetDefault("ledger.memo_entries", DefaultMemoEntries)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	dialect, err := storage.ParseDialect(v.GetString("database.driver"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Dialect: dialect,
			Path:    ExpandPath(v.GetString("database.path")),
			DSN:     v.GetString("database.dsn"),
		},
		Ledger: LedgerConfig{
			StrictFetch: v.GetBool("ledger.strict_fetch"),
			MemoEntries: v.GetInt("ledger.memo_entries"),
		},
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: splitList(v.GetStringSlice("server.cors_origins")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected database can be reached.
func (c *Config) Validate() error {
	switch c.Database.Dialect {
	case storage.DialectPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for postgres", common.ErrMissingConfig)
		}
	case storage.DialectSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", common.ErrMissingConfig)
		}
	}
	if c.Ledger.MemoEntries < 0 {
		return fmt.Errorf("%w: ledger.memo_entries cannot be negative", common.ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// LoadDotEnv loads KEY=value files into the process environment. Variables
// already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
