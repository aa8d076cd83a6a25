package chwrapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Addr     string
	Database string
	Username string
	Password string
	Debug    bool
}

// Connect opens a ClickHouse connection and pings it.
func Connect(ctx context.Context, opts Options) (driver.Conn, error) {
	logger := log.With().Str("component", "clickhouse").Logger()

	chOpts := &clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{
				{Name: "l1registry", Version: "0.1"},
			},
		},
		// Exports are a single batch; a small pool is enough
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		DialTimeout:     30 * time.Second,
		ConnMaxLifetime: time.Hour,
	}
	if opts.Debug {
		chOpts.Debug = true
		chOpts.Debugf = func(format string, v ...any) {
			logger.Debug().Msgf(format, v...)
		}
	}

	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		var exception *clickhouse.Exception
		if errors.As(err, &exception) {
			logger.Error().Int32("code", exception.Code).Str("stack", exception.StackTrace).Msg(exception.Message)
		}
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse at %s: %w", opts.Addr, err)
	}
	return conn, nil
}

const registryTableSQL = `
CREATE TABLE IF NOT EXISTS l1_registry (
	subnet_id String,
	name String,
	description String,
	logo_url String,
	website_url String,
	is_l1 Bool,
	sybil_resistance_type String,
	last_updated DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(last_updated)
ORDER BY subnet_id`

// CreateRegistryTable creates the l1_registry table if it does not exist.
func CreateRegistryTable(ctx context.Context, conn driver.Conn) error {
	if err := conn.Exec(ctx, registryTableSQL); err != nil {
		return fmt.Errorf("failed to create l1_registry table: %w", err)
	}
	return nil
}
