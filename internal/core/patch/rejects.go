package patch

import (
	"sort"
	"time"
)

// RejectSnapshot maps reject files, relative to the working tree root, to
// their modification times.
type RejectSnapshot map[string]time.Time

// NewRejects returns the reject files in after that are absent from before
// or were rewritten since, sorted.
func NewRejects(before, after RejectSnapshot) []string {
	var out []string
	for p, mod := range after {
		if prev, ok := before[p]; ok && !mod.After(prev) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
