package source

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

// DefaultMaxRows caps a database snapshot when no limit is given.
const DefaultMaxRows = 10000

// LoadPostgres snapshots up to maxRows rows of table into memory. table may
// be schema-qualified ("billing.invoices"). Columns follow the table's
// column order.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool, table string, maxRows int) (view.Options, error) {
	if strings.TrimSpace(table) == "" {
		return view.Options{}, fmt.Errorf("%w: no table name", ErrUnsupportedSource)
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT $1", quoteQualified(table))
	rows, err := pool.Query(ctx, query, maxRows)
	if err != nil {
		return view.Options{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	keys := make([]string, len(fields))
	for i, fd := range fields {
		keys[i] = fd.Name
	}

	var records []view.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return view.Options{}, fmt.Errorf("read row values: %w", err)
		}

		rec := make(view.Record, len(keys))
		for i, key := range keys {
			rec[key] = cellValue(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return view.Options{}, fmt.Errorf("rows error: %w", err)
	}

	cols := make([]view.Column, len(keys))
	for i, key := range keys {
		cols[i] = newColumn(key, "")
	}
	return withDefaults(records, cols), nil
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteQualified quotes each dot-separated part of a table name.
func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}

// cellValue converts a pgx value into a record scalar: string, float64,
// int64, bool or nil. Dates become "2006-01-02", timestamps RFC 3339.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, float64, int64:
		return val
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int:
		return int64(val)
	case float32:
		return float64(val)
	case []byte:
		return string(val)
	case [16]byte:
		return uuid.UUID(val).String()

	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64

	case pgtype.Date:
		if !val.Valid {
			return nil
		}
		return val.Time.Format("2006-01-02")

	case pgtype.Text:
		if !val.Valid {
			return nil
		}
		return val.String

	case pgtype.Bool:
		if !val.Valid {
			return nil
		}
		return val.Bool

	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return uuid.UUID(val.Bytes).String()

	case time.Time:
		if val.IsZero() {
			return nil
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)

	case *big.Int:
		if val == nil {
			return nil
		}
		return val.String()

	default:
		return fmt.Sprint(val)
	}
}
