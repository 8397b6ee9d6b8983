package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/pgrel/relation"
)

// OutputFormatter renders command results in either human-readable text
// or machine-readable JSON, selected by the global --format flag.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// NewOutputFormatter creates a formatter bound to a command's stdout.
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

// JSON writes v as indented JSON with a trailing newline. HTML escaping
// is off so connection strings render verbatim.
func (f *OutputFormatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Text writes a plain line to the output writer.
func (f *OutputFormatter) Text(format string, args ...any) {
	fmt.Fprintf(f.Writer, format+"\n", args...)
}

// Readiness renders an evaluated snapshot for humans.
func (f *OutputFormatter) Readiness(s *relation.Snapshot, r *relation.Readiness) {
	if !r.Ready {
		f.Text("relation %s (%s): not ready", s.RelationID, s.Version)
		f.Text("  reason: %s", r.Reason)
		return
	}
	f.Text("relation %s (%s): ready", s.RelationID, s.Version)
	if r.Master != nil {
		f.Text("  master: %s", r.Master)
	} else {
		f.Text("  master: (none)")
	}
	if len(r.Standbys) == 0 {
		f.Text("  standbys: (none)")
		return
	}
	for _, sb := range r.Standbys {
		f.Text("  standby: %s", sb)
	}
}

// Events renders a derived event list for humans, one line per event.
func (f *OutputFormatter) Events(events []relation.Event) {
	if len(events) == 0 {
		f.Text("no events")
		return
	}
	for _, ev := range events {
		var detail string
		switch ev.Kind {
		case relation.EventMasterChanged:
			if ev.Master != nil {
				detail = " master=" + quoteIfNeeded(ev.Master.String())
			} else {
				detail = " master=(none)"
			}
		case relation.EventStandbyChanged:
			parts := make([]string, 0, len(ev.Standbys))
			for _, sb := range ev.Standbys {
				parts = append(parts, quoteIfNeeded(sb.String()))
			}
			sort.Strings(parts)
			detail = " standbys=[" + strings.Join(parts, ", ") + "]"
		}
		f.Text("%s %s%s", ev.Kind, ev.RelationID, detail)
	}
}

// quoteIfNeeded wraps strings containing spaces so event lines stay
// unambiguous when scanned by eye or by awk.
func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return "\"" + s + "\""
	}
	return s
}
