package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.DBName = "test"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default config", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "invalid port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "missing user", mutate: func(c *Config) { c.User = "" }, wantErr: true},
		{name: "missing db name", mutate: func(c *Config) { c.DBName = "" }, wantErr: true},
		{name: "invalid SSL mode", mutate: func(c *Config) { c.SSLMode = "maybe" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{
			name:    "idle exceeds open",
			mutate:  func(c *Config) { c.MaxIdleConns, c.MaxOpenConns = 100, 10 },
			wantErr: true,
		},
		{name: "negative lifetime", mutate: func(c *Config) { c.ConnMaxLifetime = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Host:     "db",
		Port:     5433,
		User:     "drive",
		Password: "secret",
		DBName:   "drive",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db port=5433 user=drive password=secret dbname=drive sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestIsRecordNotFoundError(t *testing.T) {
	assert.False(t, IsRecordNotFoundError(nil))
	assert.True(t, IsRecordNotFoundError(gorm.ErrRecordNotFound))
	assert.True(t, IsRecordNotFoundError(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsRecordNotFoundError(errors.New("boom")))
}

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "wrapped pg unique violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pg foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "plain error", err: errors.New("duplicate"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKeyError(tt.err))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%report%", ContainsPattern("report"))
	assert.Equal(t, `%50\%\_off%`, ContainsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, ContainsPattern(`a\b`))
}

func TestContextWithTransaction(t *testing.T) {
	_, ok := TransactionFromContext(context.Background())
	assert.False(t, ok)

	tx := &gorm.DB{}
	got, ok := TransactionFromContext(ContextWithTransaction(context.Background(), tx))
	require.True(t, ok)
	assert.Same(t, tx, got)
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewNop()
	log.Logger = zap.New(core)

	gl := newGormLogger(log, &Config{LogLevel: "warn", SlowThreshold: time.Millisecond})
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is not logged")

	gl.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
	assert.Equal(t, 1, logs.FilterMessage("database query error").Len())

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("slow SQL query").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}
