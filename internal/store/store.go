// Package store persists ticker results to a relational backend.
package store

import (
	"context"

	"github.com/sells-group/edgar-cli/internal/model"
)

// Store defines the persistence interface for pipeline output. A save
// replaces the ticker's previous snapshot wholesale: a failed ticker leaves
// the prior data intact rather than a truncated mix.
type Store interface {
	Migrate(ctx context.Context) error
	SaveResult(ctx context.Context, result *model.TickerResult) error
	Close() error
}

// factValue coerces a raw fact value for a REAL/DOUBLE column. Non-numeric
// placeholder values persist as NULL.
func factValue(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return nil
	}
}
