// Package sqlsource fetches hierarchy records from a relational database.
//
// # Query
//
// By default the hierarchy is read with a recursive common table expression
// that starts at the rows without a parent and walks down the parent column:
//
//	WITH RECURSIVE org_tree (unit_id, unit_name, unit_type, unit_depth, parent_id) AS (
//	    SELECT ... FROM units t WHERE t.parent_id IS NULL
//	    UNION ALL
//	    SELECT ... FROM units t INNER JOIN org_tree h ON t.parent_id = h.unit_id
//	)
//	SELECT ... FROM org_tree ORDER BY unit_depth, unit_name
//
// Rows that cannot be reached from a root never appear in the result. Set
// [Schema.Flat] to read the whole table instead (for servers without
// recursive CTE support, or to let the indexer report dangling parents and
// cycles).
//
// # Schema
//
// Table and column names come from [Schema] and are validated as plain SQL
// identifiers before being quoted into the statement. The defaults match a
// table created as:
//
//	CREATE TABLE units (
//	    id        INTEGER PRIMARY KEY,
//	    name      TEXT NOT NULL,
//	    type      TEXT,
//	    depth     INTEGER NOT NULL,
//	    parent_id INTEGER REFERENCES units(id)
//	);
//
// # Drivers
//
// [DialectSQLite] uses modernc.org/sqlite (pure Go), [DialectPostgres] uses
// pgx through database/sql, and [DialectMySQL] uses go-sql-driver/mysql.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

// Dialect selects the database/sql driver and identifier quoting.
type Dialect string

// Supported dialects. The values are the registered driver names.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "pgx"
	DialectMySQL    Dialect = "mysql"
)

// Schema names the table and columns holding the hierarchy.
type Schema struct {
	Table        string `toml:"table"`
	IDColumn     string `toml:"id_column"`
	NameColumn   string `toml:"name_column"`
	TypeColumn   string `toml:"type_column"`
	DepthColumn  string `toml:"depth_column"`
	ParentColumn string `toml:"parent_column"`

	// Flat reads every row with a plain SELECT instead of the recursive CTE.
	Flat bool `toml:"flat"`
}

// DefaultSchema returns the schema of the reference "units" table.
func DefaultSchema() Schema {
	return Schema{
		Table:        "units",
		IDColumn:     "id",
		NameColumn:   "name",
		TypeColumn:   "type",
		DepthColumn:  "depth",
		ParentColumn: "parent_id",
	}
}

// WithDefaults fills empty fields from [DefaultSchema].
func (s Schema) WithDefaults() Schema {
	d := DefaultSchema()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Table, d.Table)
	fill(&s.IDColumn, d.IDColumn)
	fill(&s.NameColumn, d.NameColumn)
	fill(&s.TypeColumn, d.TypeColumn)
	fill(&s.DepthColumn, d.DepthColumn)
	fill(&s.ParentColumn, d.ParentColumn)
	return s
}

// Validate checks every name with [errs.ValidateIdentifier].
func (s Schema) Validate() error {
	for _, name := range []string{s.Table, s.IDColumn, s.NameColumn, s.TypeColumn, s.DepthColumn, s.ParentColumn} {
		if err := errs.ValidateIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}

// Source reads records from one database table.
type Source struct {
	db      *sql.DB
	dialect Dialect
	schema  Schema
	query   string
}

// Open connects to dsn with the driver for dialect and verifies the
// connection.
func Open(ctx context.Context, dialect Dialect, dsn string, schema Schema) (*Source, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres, DialectMySQL:
	default:
		return nil, errs.New(errs.ErrCodeInvalidSource, "unknown SQL dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "open %s database", dialect)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrCodeSource, err, "connect to %s database", dialect)
	}

	s, err := New(db, dialect, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database handle. The Source takes ownership of db and
// closes it in [Source.Close].
func New(db *sql.DB, dialect Dialect, schema Schema) (*Source, error) {
	schema = schema.WithDefaults()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		db:      db,
		dialect: dialect,
		schema:  schema,
		query:   BuildQuery(dialect, schema),
	}, nil
}

// Name returns a short source label for logs.
func (s *Source) Name() string {
	if s.dialect == DialectPostgres {
		return "postgres"
	}
	return string(s.dialect)
}

// Query returns the SQL statement used by [Source.Fetch].
func (s *Source) Query() string { return s.query }

// Fetch runs the hierarchy query and returns records ordered by depth and
// name. NULL types read as empty strings.
func (s *Source) Fetch(ctx context.Context) ([]hierarchy.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "query %s", s.schema.Table)
	}
	defer rows.Close()

	var records []hierarchy.Record
	for rows.Next() {
		var (
			r      hierarchy.Record
			name   sql.NullString
			typ    sql.NullString
			parent sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &name, &typ, &r.Depth, &parent); err != nil {
			return nil, errs.Wrap(errs.ErrCodeSource, err, "scan %s row", s.schema.Table)
		}
		r.Name = name.String
		r.Type = typ.String
		if parent.Valid {
			r.ParentID = hierarchy.ParentRef(parent.Int64)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "read %s rows", s.schema.Table)
	}
	return records, nil
}

// Close closes the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

// BuildQuery renders the fetch statement for a validated schema.
func BuildQuery(dialect Dialect, s Schema) string {
	q := func(name string) string { return quoteIdent(dialect, name) }
	cols := func(alias string) string {
		return strings.Join([]string{
			alias + "." + q(s.IDColumn),
			alias + "." + q(s.NameColumn),
			alias + "." + q(s.TypeColumn),
			alias + "." + q(s.DepthColumn),
			alias + "." + q(s.ParentColumn),
		}, ", ")
	}
	table := q(s.Table)

	if s.Flat {
		return fmt.Sprintf("SELECT %s FROM %s t ORDER BY t.%s, t.%s",
			cols("t"), table, q(s.DepthColumn), q(s.NameColumn))
	}

	var b strings.Builder
	b.WriteString("WITH RECURSIVE org_tree (unit_id, unit_name, unit_type, unit_depth, parent_id) AS (\n")
	fmt.Fprintf(&b, "    SELECT %s FROM %s t WHERE t.%s IS NULL\n", cols("t"), table, q(s.ParentColumn))
	b.WriteString("    UNION ALL\n")
	fmt.Fprintf(&b, "    SELECT %s FROM %s t INNER JOIN org_tree h ON t.%s = h.unit_id\n", cols("t"), table, q(s.ParentColumn))
	b.WriteString(")\n")
	b.WriteString("SELECT unit_id, unit_name, unit_type, unit_depth, parent_id FROM org_tree ORDER BY unit_depth, unit_name")
	return b.String()
}

// quoteIdent quotes a possibly schema-qualified identifier. MySQL uses
// backticks; the other dialects use standard double quotes.
func quoteIdent(dialect Dialect, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if dialect == DialectMySQL {
			parts[i] = "`" + p + "`"
		} else {
			parts[i] = pq.QuoteIdentifier(p)
		}
	}
	return strings.Join(parts, ".")
}
