// Package database loads raw dataset tables from SQL stores. Oracle (the
// county's Autonomous Database), Postgres and SQLite are supported through
// their database/sql drivers.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"parceldash/internal/schema"
	"parceldash/internal/types"
)

// Config holds database connection configuration.
type Config struct {
	// Driver is oracle, postgres or sqlite.
	Driver         string
	Host           string
	Port           string
	Service        string // Oracle service or Postgres database name
	Username       string
	Password       string
	WalletLocation string
	SSLMode        string
	// Path is the database file for sqlite.
	Path string
	// Tables maps a variant name ("large", "reduced") to its table.
	Tables map[string]string
}

// driverName maps the configured driver to its database/sql registration.
func (c Config) driverName() (string, error) {
	switch c.Driver {
	case "oracle":
		return "oracle", nil
	case "postgres", "pgx":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", c.Driver)
}

// DSN builds a properly encoded connection string for the configured driver.
func DSN(c Config) string {
	switch c.Driver {
	case "oracle":
		if c.WalletLocation != "" {
			// wallet-based mTLS connection
			return fmt.Sprintf(
				"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
				url.PathEscape(c.Username), url.PathEscape(c.Password), c.Host, c.Port, c.Service, url.PathEscape(c.WalletLocation))
		}
		return (&url.URL{
			Scheme:   "oracle",
			User:     url.UserPassword(c.Username, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Service, // keep full service name
			RawQuery: "ssl=true",      // ADB requires TCPS on 1522
		}).String()
	case "postgres", "pgx":
		q := url.Values{}
		if c.SSLMode != "" {
			q.Set("sslmode", c.SSLMode)
		}
		return (&url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Username, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Service,
			RawQuery: q.Encode(),
		}).String()
	case "sqlite":
		return c.Path
	}
	return ""
}

// Database holds the database connection and configuration.
type Database struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// Open connects and pings the database.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Database, error) {
	driver, err := config.driverName()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", driver, "host", config.Host, "service", config.Service)

	db, err := sql.Open(driver, DSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: db, config: config, logger: logger}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DB exposes the connection pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// Load reads the table configured for v.
func (d *Database) Load(ctx context.Context, v types.Variant) (*types.RawTable, error) {
	for name, table := range d.config.Tables {
		pv, err := schema.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("database tables: %w", err)
		}
		if pv == v {
			return d.LoadTable(ctx, table)
		}
	}
	return nil, fmt.Errorf("no table configured for the %s dataset", v)
}

// LoadTable reads every row of table as strings. NULL reads as "".
func (d *Database) LoadTable(ctx context.Context, table string) (*types.RawTable, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	start := time.Now()

	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	raw := &types.RawTable{Columns: columns}
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row %d: %w", table, raw.Len(), err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	d.logger.Info("table loaded", "table", table, "rows", raw.Len(), "elapsed", time.Since(start).Truncate(time.Millisecond).String())
	return raw, nil
}
