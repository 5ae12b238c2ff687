package patch

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Extensions lists the file suffixes recognised as patches.
var Extensions = []string{".patch", ".diff"}

// IsPatchFile reports whether name carries a recognised patch extension.
// The match is case-sensitive: "fix.PATCH" is not a patch.
func IsPatchFile(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// CompareNames orders two file names using English collation, falling back
// to a byte comparison so that names differing only in ways the collator
// ignores still get a total order.
func CompareNames(c *collate.Collator, a, b string) int {
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// SortNames returns a sorted copy of names.
func SortNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)

	c := collate.New(language.English)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareNames(c, sorted[i], sorted[j]) < 0
	})
	return sorted
}

// SelectPatches filters names down to patch files and sorts them.
func SelectPatches(names []string) []string {
	var patches []string
	for _, n := range names {
		if IsPatchFile(n) {
			patches = append(patches, n)
		}
	}
	return SortNames(patches)
}
