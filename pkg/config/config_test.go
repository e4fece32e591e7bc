package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Ledger.Driver)
	assert.Equal(t, "warehouse-ledger", cfg.App.Name)
	assert.Equal(t, 5*time.Second, cfg.DB.StatementTimeout())
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR no hay caché")
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "postgres://postgres:@localhost:5432/warehouse_ledger?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"JWT_SECRET":                  "s3cret",
		"LEDGER_DRIVER":               "SQLite",
		"SQLITE_PATH":                 "/tmp/l.db",
		"DB_PORT":                     "6543",
		"DB_MAX_CONNS":                "abc",
		"REDIS_ADDR":                  "localhost:6379",
		"VALUATION_CACHE_TTL_SECONDS": 30,
		"DATABASE_URL":                "postgres://u:p@db/x",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Ledger.Driver)
	assert.Equal(t, "/tmp/l.db", cfg.Ledger.SQLitePath)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxConns, "un valor no numérico usa el default")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL())
	assert.Equal(t, "postgres://u:p@db/x", cfg.DB.ConnectionString())
}

func TestFromViper_Errores(t *testing.T) {
	_, err := fromViper(newViper(nil))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = fromViper(newViper(map[string]any{"JWT_SECRET": "x", "LEDGER_DRIVER": "mongo"}))
	assert.ErrorContains(t, err, "LEDGER_DRIVER")
}
