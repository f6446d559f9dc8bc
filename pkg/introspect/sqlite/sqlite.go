// Package sqlite introspects SQLite databases through modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-docgen/pkg/introspect"
	"github.com/goliatone/go-docgen/pkg/model"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const queryTables = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// Open opens and pings a SQLite database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", dsn, err)
	}
	return db, nil
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithTables restricts introspection to the named tables, in that order.
func WithTables(tables ...string) Option {
	return func(i *Introspector) {
		i.tables = append([]string(nil), tables...)
	}
}

// Introspector reads tables from sqlite_master and their columns from
// PRAGMA table_info and PRAGMA foreign_key_list. SQLite has no column
// comments, so descriptors carry none.
type Introspector struct {
	db     *sql.DB
	tables []string
}

var _ introspect.Introspector = (*Introspector)(nil)

func New(db *sql.DB, options ...Option) *Introspector {
	i := &Introspector{db: db}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Models returns one descriptor per table.
func (i *Introspector) Models(ctx context.Context) ([]model.ModelDescriptor, error) {
	if i.db == nil {
		return nil, fmt.Errorf("sqlite: database is nil")
	}

	names := i.tables
	if len(names) == 0 {
		var err error
		if names, err = i.tableNames(ctx); err != nil {
			return nil, err
		}
	}

	models := make([]model.ModelDescriptor, 0, len(names))
	for _, name := range names {
		table, err := i.table(ctx, name)
		if err != nil {
			return nil, err
		}
		models = append(models, table.Model())
	}
	return models, nil
}

func (i *Introspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, queryTables)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	return names, nil
}

func (i *Introspector) table(ctx context.Context, name string) (introspect.Table, error) {
	foreign, err := i.foreignKeys(ctx, name)
	if err != nil {
		return introspect.Table{}, err
	}

	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name)))
	if err != nil {
		return introspect.Table{}, fmt.Errorf("sqlite: table_info %s: %w", name, err)
	}
	defer rows.Close()

	table := introspect.Table{Name: name}
	for rows.Next() {
		var (
			cid      int
			column   string
			declared string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &column, &declared, &notNull, &dflt, &pk); err != nil {
			return introspect.Table{}, fmt.Errorf("sqlite: scan column of %s: %w", name, err)
		}
		table.Columns = append(table.Columns, introspect.Column{
			Name:       column,
			Type:       declared,
			NotNull:    notNull != 0,
			Default:    dflt.String,
			PrimaryKey: pk > 0,
			ForeignKey: foreign[column],
		})
	}
	if err := rows.Err(); err != nil {
		return introspect.Table{}, fmt.Errorf("sqlite: table_info %s: %w", name, err)
	}
	if len(table.Columns) == 0 {
		return introspect.Table{}, fmt.Errorf("sqlite: table %q not found", name)
	}
	return table, nil
}

func (i *Introspector) foreignKeys(ctx context.Context, name string) (map[string]bool, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("sqlite: foreign_key_list %s: %w", name, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			id, seq                   int
			parent, from              string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &parent, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlite: scan foreign key of %s: %w", name, err)
		}
		out[from] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: foreign_key_list %s: %w", name, err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
