package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"
)

type ClickHouseConfig struct {
	Host       string
	NativePort int
	Database   string
	Username   string
	Password   string
}

type ClickHouseClient struct {
	Conn clickhouse.Conn
}

func NewClickHouseDB(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseClient, error) {
	if cfg.Host == "" || cfg.NativePort == 0 || cfg.Database == "" {
		return nil, fmt.Errorf("clickhouse host, native port and database name are required")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.NativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "chatdesk-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via native TCP: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info().Str("addr", options.Addr[0]).Msg("Connected to ClickHouse")
	return &ClickHouseClient{Conn: conn}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing ClickHouse connection")
		return
	}
	log.Info().Msg("ClickHouse connection closed")
}
