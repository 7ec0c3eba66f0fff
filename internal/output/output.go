// Package output serializes ticker results to the requested file format.
package output

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-cli/internal/model"
)

// Writer serializes one TickerResult into dir and returns the paths written.
type Writer interface {
	Write(result *model.TickerResult, dir string) ([]string, error)
}

// New returns the Writer for a file format name. Database formats (sqlite,
// postgres) go through the store package instead.
func New(format string) (Writer, error) {
	switch format {
	case "json":
		return &JSONWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	case "xlsx":
		return &XLSXWriter{}, nil
	default:
		return nil, eris.Errorf("output: unknown format %q", format)
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir %s", dir)
	}
	return nil
}

// formatValue renders a fact value for tabular output; nil stays empty.
func formatValue(v any) string {
	if v == nil {
		return ""
	}
	switch n := v.(type) {
	case float64:
		// Avoid scientific notation for the large integers EDGAR reports.
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	default:
		return fmt.Sprintf("%v", v)
	}
}
