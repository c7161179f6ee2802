package output

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/koustreak/schemats/internal/render"
)

// Diff returns a unified diff from existing to fresh, or "" when they
// match. The banner timestamp line is ignored on both sides.
func Diff(target string, existing, fresh []byte) (string, error) {
	a := difflib.SplitLines(stripTimestamp(string(existing)))
	b := difflib.SplitLines(stripTimestamp(string(fresh)))

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: target,
		ToFile:   target + " (generated)",
		Context:  3,
	})
}

func stripTimestamp(s string) string {
	if !strings.Contains(s, render.TimestampMarker) {
		return s
	}
	lines := strings.SplitAfter(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, render.TimestampMarker) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "")
}
