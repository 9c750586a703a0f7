package etl

import "github.com/zeebo/xxh3"

// stringSet remembers exact strings.
type stringSet map[string]struct{}

// Add reports whether v was not seen before.
func (s stringSet) Add(v string) bool {
	if _, dup := s[v]; dup {
		return false
	}
	s[v] = struct{}{}
	return true
}

// hashSet remembers strings by their 64-bit xxh3 hash. It keeps the
// book-author link set small on the full datasets, at the cost of treating
// a hash collision as a repeat.
type hashSet map[uint64]struct{}

// Add reports whether v was not seen before.
func (s hashSet) Add(v string) bool {
	h := xxh3.HashString(v)
	if _, dup := s[h]; dup {
		return false
	}
	s[h] = struct{}{}
	return true
}

// distinct returns the values in first-seen order, dropping repeats.
func distinct(values []string) []string {
	seen := make(stringSet, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen.Add(v) {
			out = append(out, v)
		}
	}
	return out
}
