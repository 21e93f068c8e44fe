package datafetch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/zpiroux/dsutils/entity"
)

// FromSQLServer runs the query on the SQL Server described by cfg and returns the result as a
// frame. A new connection is opened and closed for each call.
func FromSQLServer(ctx context.Context, cfg WarehouseConfig, query string) (*entity.Frame, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	connector, err := mssql.NewConnector(cfg.URL().String())
	if err != nil {
		return nil, fmt.Errorf("could not create SQL Server connector for %s: %w", cfg, err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	log.Debugf("fetching from %s", cfg)
	return FromDB(ctx, db, query)
}

// decimalTypes are database type names whose values drivers return as text.
var decimalTypes = map[string]bool{
	"DECIMAL":    true,
	"NUMERIC":    true,
	"MONEY":      true,
	"SMALLMONEY": true,
}

// FromDB runs the query on db and returns the result as a frame.
func FromDB(ctx context.Context, db *sql.DB, query string) (*entity.Frame, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	b := newFrameBuilder(names)
	if types, err := rows.ColumnTypes(); err == nil {
		for i, t := range types {
			b.numeric[i] = decimalTypes[strings.ToUpper(t.DatabaseTypeName())]
		}
	}

	values := make([]any, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("could not scan row %d: %w", len(b.rows), err)
		}
		b.add(values)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading query result failed: %w", err)
	}

	log.Debugf("fetched %d rows with %d columns", len(b.rows), len(names))
	return b.frame()
}
