package edgar

import (
	"sort"
	"strings"

	"github.com/sells-group/edgar-cli/internal/model"
)

// Tables holds the immutable concept lookup configuration: the many-to-one
// tag alias table and the priority concept allow-list. Loaded once at
// process start and passed in explicitly.
type Tables struct {
	Aliases  map[string]string
	Priority []string
}

// NormalizeOptions selects optional normalization filters.
type NormalizeOptions struct {
	// PriorityOnly keeps only facts whose canonical tag is in the priority
	// list; applied after deduplication.
	PriorityOnly bool
	// Forms restricts facts to the given source form types; applied before
	// grouping so excluded forms never participate in survivorship. Empty
	// means no filter.
	Forms []string
}

// CanonicalTag resolves a tag through the alias table. Tags with no known
// alias map to themselves.
func CanonicalTag(tag string, aliases map[string]string) string {
	if canonical, ok := aliases[tag]; ok {
		return canonical
	}
	return tag
}

// Normalize resolves tag aliases, deduplicates overlapping observations, and
// applies the optional filters.
//
// The same data point often appears in both an original filing and its
// amendment (10-K/A). Within each (canonical_tag, end, fy, fp, unit) group
// the survivor is the fact with the latest filed date; on equal filed dates
// the highest accession number wins, and the last one encountered breaks any
// remaining tie. Output is sorted by (canonical_tag, end, fy, fp, unit) and
// is stable across runs given identical input.
func Normalize(rows []model.RawFact, tables Tables, opts NormalizeOptions) []model.NormalizedFact {
	formSet := make(map[string]bool, len(opts.Forms))
	for _, f := range opts.Forms {
		formSet[strings.ToUpper(f)] = true
	}

	best := make(map[model.FactKey]model.NormalizedFact)

	for _, r := range rows {
		if len(formSet) > 0 && !formSet[strings.ToUpper(r.Form)] {
			continue
		}

		nf := model.NormalizedFact{
			RawFact:      r,
			CanonicalTag: CanonicalTag(r.Tag, tables.Aliases),
		}
		key := nf.Key()

		existing, ok := best[key]
		if !ok || wins(nf, existing) {
			best[key] = nf
		}
	}

	out := make([]model.NormalizedFact, 0, len(best))
	for _, nf := range best {
		out = append(out, nf)
	}

	if opts.PriorityOnly {
		priority := make(map[string]bool, len(tables.Priority))
		for _, p := range tables.Priority {
			priority[p] = true
		}
		kept := out[:0]
		for _, nf := range out {
			if priority[nf.CanonicalTag] {
				kept = append(kept, nf)
			}
		}
		out = kept
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CanonicalTag != b.CanonicalTag {
			return a.CanonicalTag < b.CanonicalTag
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.FY != b.FY {
			return a.FY < b.FY
		}
		if a.FP != b.FP {
			return a.FP < b.FP
		}
		return a.Unit < b.Unit
	})

	return out
}

// wins reports whether challenger replaces incumbent within a dedup group.
// ISO dates and accession numbers compare correctly as strings.
func wins(challenger, incumbent model.NormalizedFact) bool {
	if challenger.Filed != incumbent.Filed {
		return challenger.Filed > incumbent.Filed
	}
	// Same-day amendments: the higher accession number is the later one.
	return challenger.Accn >= incumbent.Accn
}
