package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tally")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, storage.DialectSQLite, cfg.Database.Dialect)
	assert.Equal(t, "/home/tally/.local/share/tally/tally.db", cfg.Database.Path)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, DefaultMemoEntries, cfg.Ledger.MemoEntries)
	assert.False(t, cfg.Ledger.StrictFetch)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		set     map[string]any
		wantErr error
		name    string
	}{
		{
			name:    "postgres without dsn",
			set:     map[string]any{"database.driver": "postgres"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "unknown driver",
			set:     map[string]any{"database.driver": "mysql"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "unknown log format",
			set:     map[string]any{"logging.format": "xml"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name: "postgres with dsn",
			set: map[string]any{
				"database.driver": "postgresql",
				"database.dsn":    "postgres://localhost/tally",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCORSOriginsFromCommaList(t *testing.T) {
	v := newViper()
	v.Set("server.cors_origins", "http://localhost:5173, https://books.example.com")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://books.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TALLY_DOTENV_PROBE=from-file\nTALLY_DOTENV_KEEP=from-file\n"), 0o600))

	t.Setenv("TALLY_DOTENV_KEEP", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("TALLY_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("TALLY_DOTENV_PROBE"))
	assert.Equal(t, "from-env", os.Getenv("TALLY_DOTENV_KEEP"))
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tally")
	t.Setenv("TALLY_DIR", "/srv/tally")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/tally", ExpandPath("~"))
	assert.Equal(t, "/home/tally/books.db", ExpandPath("~/books.db"))
	assert.Equal(t, "/srv/tally/books.db", ExpandPath("$TALLY_DIR/books.db"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")

	v := viper.New()
	v.Set("sheets.client_id", "client")
	v.Set("sheets.refresh_token", "refresh")
	v.Set("sheets.spreadsheet_id", "sheet-1")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
}
