package manifest

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/ndisidore/mtreespec/pkg/directive"
)

// Summary aggregates entry statistics for a manifest.
type Summary struct {
	Entries int
	// ByType counts entries per resolved type; entries without a type are
	// counted in Untyped.
	ByType    map[directive.EntryType]int
	Untyped   int
	TotalSize uint64
	Sets      int
	Unsets    int
	Rejected  int
}

// Summarize computes a Summary over entries. Directive and rejection counts
// come from m.
func Summarize(m *Manifest, entries []Entry) Summary {
	s := Summary{
		Entries:  len(entries),
		ByType:   make(map[directive.EntryType]int),
		Sets:     m.Sets,
		Unsets:   m.Unsets,
		Rejected: len(m.Errors),
	}
	for i := range entries {
		attrs := entries[i].Attributes()
		if attrs.Type.Valid() {
			s.ByType[attrs.Type]++
		} else {
			s.Untyped++
		}
		if attrs.Size != nil {
			s.TotalSize += *attrs.Size
		}
	}
	return s
}

// PrintSummary writes a human-readable summary to w.
func PrintSummary(w io.Writer, s Summary) {
	_, _ = fmt.Fprintf(w, "Entries: %d\n", s.Entries)
	for _, t := range directive.EntryTypes() {
		if n := s.ByType[t]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %-8s %d\n", t, n)
		}
	}
	if s.Untyped > 0 {
		_, _ = fmt.Fprintf(w, "  %-8s %d\n", "untyped", s.Untyped)
	}
	_, _ = fmt.Fprintf(w, "Total size: %s (%d bytes)\n", humanize.IBytes(s.TotalSize), s.TotalSize)
	_, _ = fmt.Fprintf(w, "Directives: %d set, %d unset\n", s.Sets, s.Unsets)
	if s.Rejected > 0 {
		_, _ = fmt.Fprintf(w, "Rejected lines: %d\n", s.Rejected)
	}
}
