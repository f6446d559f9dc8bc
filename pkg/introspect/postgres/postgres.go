// Package postgres introspects PostgreSQL schemas through jackc/pgx.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-docgen/pkg/introspect"
	"github.com/goliatone/go-docgen/pkg/model"
)

const DefaultSchema = "public"

const (
	queryTables = `SELECT c.relname, COALESCE(obj_description(c.oid, 'pg_class'), '')
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
ORDER BY c.relname`

	queryColumns = `SELECT c.table_name, c.column_name, c.data_type, c.udt_name,
	c.is_nullable = 'NO', COALESCE(c.column_default, ''),
	COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), '')
FROM information_schema.columns c
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`

	queryKeys = `SELECT tc.table_name, kcu.column_name, tc.constraint_type
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
WHERE tc.table_schema = $1 AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')`

	queryEnums = `SELECT t.typname, e.enumlabel
FROM pg_type t
JOIN pg_enum e ON e.enumtypid = t.oid
JOIN pg_namespace n ON n.oid = t.typnamespace
WHERE n.nspname = $1
ORDER BY t.typname, e.enumsortorder`
)

// Rows is the subset of pgx.Rows the introspector reads.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

// Querier runs a query. Wrap a pgx pool or connection with FromPgx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// PgxQuerier is implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgxQuerier struct {
	q PgxQuerier
}

func (p pgxQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return p.q.Query(ctx, sql, args...)
}

// FromPgx adapts a pgx querier.
func FromPgx(q PgxQuerier) Querier {
	return pgxQuerier{q: q}
}

// Connect parses databaseURL, opens a pool and pings it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithSchema selects the schema to read. Defaults to "public".
func WithSchema(schema string) Option {
	return func(i *Introspector) {
		if schema != "" {
			i.schema = schema
		}
	}
}

// WithLogger sets the logger used to trace queries.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Introspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Introspector reads tables, columns, comments, keys and enum labels from the
// catalog of one schema.
type Introspector struct {
	q      Querier
	schema string
	logger *slog.Logger
}

var _ introspect.Introspector = (*Introspector)(nil)

func New(q Querier, options ...Option) *Introspector {
	i := &Introspector{
		q:      q,
		schema: DefaultSchema,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Models returns one descriptor per table, ordered by table name. Columns of
// an enum type carry the enum labels in declaration order.
func (i *Introspector) Models(ctx context.Context) ([]model.ModelDescriptor, error) {
	if i.q == nil {
		return nil, fmt.Errorf("postgres: querier is nil")
	}

	enums, err := i.enums(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := i.keys(ctx)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*introspect.Table)
	var order []string
	err = i.each(ctx, queryTables, func(rows Rows) error {
		var name, comment string
		if err := rows.Scan(&name, &comment); err != nil {
			return err
		}
		tables[name] = &introspect.Table{Name: name, Comment: comment}
		order = append(order, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list tables: %w", err)
	}

	err = i.each(ctx, queryColumns, func(rows Rows) error {
		var (
			table, name, dataType, udt, def, comment string
			notNull                                  bool
		)
		if err := rows.Scan(&table, &name, &dataType, &udt, &notNull, &def, &comment); err != nil {
			return err
		}
		t, ok := tables[table]
		if !ok {
			return nil
		}
		declared := dataType
		switch dataType {
		case "USER-DEFINED", "ARRAY":
			declared = udt
		}
		k := keys[keyOf(table, name)]
		t.Columns = append(t.Columns, introspect.Column{
			Name:       name,
			Type:       declared,
			NotNull:    notNull,
			Default:    def,
			PrimaryKey: k.primary,
			ForeignKey: k.foreign,
			Comment:    comment,
			EnumValues: enums[udt],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list columns: %w", err)
	}

	models := make([]model.ModelDescriptor, 0, len(order))
	for _, name := range order {
		models = append(models, tables[name].Model())
	}
	i.logger.Debug("schema introspected", "schema", i.schema, "tables", len(models))
	return models, nil
}

type keyFlags struct {
	primary bool
	foreign bool
}

func keyOf(table, column string) string {
	return table + "." + column
}

func (i *Introspector) keys(ctx context.Context) (map[string]keyFlags, error) {
	out := make(map[string]keyFlags)
	err := i.each(ctx, queryKeys, func(rows Rows) error {
		var table, column, kind string
		if err := rows.Scan(&table, &column, &kind); err != nil {
			return err
		}
		flags := out[keyOf(table, column)]
		switch kind {
		case "PRIMARY KEY":
			flags.primary = true
		case "FOREIGN KEY":
			flags.foreign = true
		}
		out[keyOf(table, column)] = flags
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list keys: %w", err)
	}
	return out, nil
}

func (i *Introspector) enums(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string)
	err := i.each(ctx, queryEnums, func(rows Rows) error {
		var typ, label string
		if err := rows.Scan(&typ, &label); err != nil {
			return err
		}
		out[typ] = append(out[typ], label)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list enums: %w", err)
	}
	return out, nil
}

func (i *Introspector) each(ctx context.Context, query string, fn func(Rows) error) error {
	rows, err := i.q.Query(ctx, query, i.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
