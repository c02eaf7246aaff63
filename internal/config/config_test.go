package config

import (
	"os"
	"testing"
	"time"

	"go-credit-inventory/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, foundEnv, err := Load()
	require.NoError(t, err)

	assert.False(t, foundEnv)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, database.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "134.5", cfg.DefaultCurrencyRate.String())
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("DEFAULT_CURRENCY_RATE", "141.25")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "141.25", cfg.DefaultCurrencyRate.String())

	db := cfg.Database()
	assert.Equal(t, database.DriverPostgres, db.Driver)
	assert.Equal(t, "postgres://ledger@localhost/ledger", db.DSN)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SESSION_TTL", "forever")

	_, _, err := Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
