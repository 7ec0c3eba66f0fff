package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-cli/internal/model"
)

// JSONWriter writes one indented JSON document per ticker.
type JSONWriter struct{}

// Write writes <dir>/<ticker>.json. The file is written via a temp file and
// rename so a failed run never leaves a truncated document behind.
func (w *JSONWriter) Write(result *model.TickerResult, dir string) ([]string, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, result.Ticker+".json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, eris.Wrapf(err, "output: marshal %s", result.Ticker)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, result.Ticker+".json.tmp-*")
	if err != nil {
		return nil, eris.Wrap(err, "output: create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, eris.Wrapf(err, "output: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, eris.Wrapf(err, "output: close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, eris.Wrapf(err, "output: rename %s", path)
	}

	return []string{path}, nil
}
