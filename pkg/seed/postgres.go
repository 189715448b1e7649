package seed

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// ConnectionConfig holds the Postgres connection settings for seeding.
type ConnectionConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConfigFromEnv reads POSTGRES_* variables, falling back to the stack's
// compose defaults.
func ConfigFromEnv() ConnectionConfig {
	return ConnectionConfig{
		Host:     envOr("POSTGRES_HOST", "localhost"),
		Port:     envOr("POSTGRES_PORT", "5432"),
		User:     envOr("POSTGRES_USER", "analyticsUser"),
		Password: envOr("POSTGRES_PASSWORD", "analyticsPass"),
		Database: envOr("POSTGRES_DB", "analytics"),
		SSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConfigFromDSN parses a postgres:// URL, filling anything it omits from
// ConfigFromEnv.
func ConfigFromDSN(dsn string) (ConnectionConfig, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return ConnectionConfig{}, cerr.Wrapf(err, "parse DSN %q", dsn)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return ConnectionConfig{}, cerr.Newf("unsupported DSN scheme %q, want postgres://", u.Scheme)
	}

	cfg := ConfigFromEnv()
	if host := u.Hostname(); host != "" {
		cfg.Host = host
	}
	if port := u.Port(); port != "" {
		cfg.Port = port
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			cfg.User = name
		}
		if pass, ok := u.User.Password(); ok {
			cfg.Password = pass
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		cfg.Database = db
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		cfg.SSLMode = mode
	}
	return cfg, nil
}

// DSN returns the connection string. It includes the password; log the
// String() form instead.
func (c ConnectionConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// String renders the connection with the password redacted.
func (c ConnectionConfig) String() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.User, c.Host, c.Port, c.Database, c.SSLMode)
}

// PsqlCommand returns the psql invocation shown to the user after a run.
func (c ConnectionConfig) PsqlCommand() string {
	return fmt.Sprintf("psql -h %s -p %s -U %s -d %s", c.Host, c.Port, c.User, c.Database)
}

// Postgres is the flat write path for seed data.
type Postgres struct {
	db  *sql.DB
	cfg ConnectionConfig
}

// Open connects and pings the database.
func Open(rc *metis_io.RuntimeContext, cfg ConnectionConfig) (*Postgres, error) {
	logger := otelzap.Ctx(rc.Ctx)

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, cerr.Wrap(err, "open postgres")
	}
	if err := db.PingContext(rc.Ctx); err != nil {
		_ = db.Close()
		return nil, metis_err.NewNetworkError(
			fmt.Sprintf("could not reach postgres at %s:%s", cfg.Host, cfg.Port), err,
			"Is the postgres service running? Try `metis start -p postgres`")
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	logger.Debug("Connected to postgres", zap.String("dsn", cfg.String()))
	return &Postgres{db: db, cfg: cfg}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Config returns the settings this connection was opened with.
func (p *Postgres) Config() ConnectionConfig {
	return p.cfg
}

// CreateTable issues CREATE TABLE IF NOT EXISTS for the dataset. In
// normalized mode the fact table sheds its dimension columns and gains the
// foreign key instead.
func (p *Postgres) CreateTable(ctx context.Context, schema *Schema, normalized bool) error {
	table := schema.TableName
	if normalized {
		table = schema.NormalizedTableName()
	}
	ddl := createTableSQL(schema, table, normalized)
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return cerr.Wrapf(err, "create table %s", table)
	}
	return nil
}

// InsertBatch writes one batch inside a transaction and reports how many
// rows actually landed; unique-constraint collisions are skipped, not
// errors.
func (p *Postgres) InsertBatch(ctx context.Context, schema *Schema, records []Record, normalized bool) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	table := schema.TableName
	if normalized {
		table = schema.NormalizedTableName()
	}
	columns := schema.InsertColumns(normalized)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, cerr.Wrap(err, "begin batch insert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		return 0, cerr.Wrapf(err, "prepare insert into %s", table)
	}
	defer func() { _ = stmt.Close() }()

	var inserted int64
	for _, rec := range records {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = rec[col]
		}
		res, err := stmt.ExecContext(ctx, values...)
		if err != nil {
			return inserted, cerr.Wrapf(err, "insert into %s", table)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, cerr.Wrap(err, "commit batch")
	}
	return inserted, nil
}

// Count returns the number of rows in a table.
func (p *Postgres) Count(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, cerr.Wrapf(err, "count %s", table)
	}
	return count, nil
}

// Drop removes a table and everything referencing it.
func (p *Postgres) Drop(ctx context.Context, table string) error {
	if _, err := p.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
		return cerr.Wrapf(err, "drop %s", table)
	}
	return nil
}

// createTableSQL builds the DDL from the schema's column definitions.
func createTableSQL(schema *Schema, table string, normalized bool) string {
	drop, fk := dimensionSwap(schema.Name)
	dropped := make(map[string]bool, len(drop))
	if normalized {
		for _, name := range drop {
			dropped[name] = true
		}
	}

	var cols []string
	for _, f := range schema.Fields {
		if dropped[f.Name] {
			continue
		}
		cols = append(cols, columnDef(f))
	}
	if normalized && fk == "customer_id" {
		cols = append(cols, "customer_id INTEGER REFERENCES customers(id)")
	}
	if normalized && fk == "product_id" {
		cols = append(cols, "product_id INTEGER REFERENCES products_normalized(id)")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
}

// columnDef renders one column: NOT NULL unless nullable, with UNIQUE moved
// after the null clause.
func columnDef(f FieldDef) string {
	if f.IsSerial() {
		return f.Name + " " + f.SQLType
	}

	nullClause := " NOT NULL"
	if f.Nullable {
		nullClause = ""
	}

	sqlType := f.SQLType
	if strings.Contains(sqlType, " UNIQUE") {
		sqlType = strings.ReplaceAll(sqlType, " UNIQUE", "")
		return fmt.Sprintf("%s %s%s UNIQUE", f.Name, sqlType, nullClause)
	}
	return fmt.Sprintf("%s %s%s", f.Name, sqlType, nullClause)
}

// insertSQL builds the parameterized INSERT with conflict rows skipped.
func insertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}
