package merge

import (
	"sort"
	"strings"
)

// chunk is one run of a filename split for natural ordering: either a
// run of ASCII digits or a run of anything else.
type chunk struct {
	text   string
	digits bool
}

// splitNatural splits s into alternating non-digit / digit runs. The
// result always starts with a non-digit run (possibly empty), so chunk i
// of one key is always the same kind as chunk i of another.
//
//	"file10.mgf" → ["file", "10", ".mgf"]
//	"10.mgf"     → ["", "10", ".mgf"]
func splitNatural(s string) []chunk {
	chunks := []chunk{{}}
	start := 0
	inDigits := false

	for i := 0; i < len(s); i++ {
		d := isDigit(s[i])
		if d == inDigits {
			continue
		}
		chunks[len(chunks)-1].text = s[start:i]
		chunks = append(chunks, chunk{digits: d})
		start = i
		inDigits = d
	}
	chunks[len(chunks)-1].text = s[start:]

	return chunks
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// compareDigits compares two digit runs by integer value without
// converting them, so arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// CompareNatural orders a and b the way a human would: digit runs are
// compared as integers and other runs as lower-cased text. When one key is
// a prefix of the other, the shorter key sorts first. It returns 0 for
// names that differ only in letter case or leading zeros.
func CompareNatural(a, b string) int {
	ka, kb := splitNatural(a), splitNatural(b)

	for i := 0; i < len(ka) && i < len(kb); i++ {
		var c int
		if ka[i].digits {
			c = compareDigits(ka[i].text, kb[i].text)
		} else {
			c = strings.Compare(strings.ToLower(ka[i].text), strings.ToLower(kb[i].text))
		}
		if c != 0 {
			return c
		}
	}

	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// Less reports whether a sorts before b in natural order. Names that
// compare equal under CompareNatural fall back to byte order, which keeps
// the ordering total.
func Less(a, b string) bool {
	if c := CompareNatural(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

// SortNatural sorts names in place in natural order.
func SortNatural(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return Less(names[i], names[j])
	})
}
