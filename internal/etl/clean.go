package etl

import (
	"strings"

	"github.com/BartekS5/bookclub/pkg/utils"
)

// CleanField trims raw; an empty result is reported as missing.
func CleanField(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// CleanISBN normalizes raw and accepts it only as 10 or 13 digits.
func CleanISBN(raw string) (string, bool) {
	isbn := utils.NormalizeISBN(raw)
	if len(isbn) != 10 && len(isbn) != 13 {
		return "", false
	}
	for i := 0; i < len(isbn); i++ {
		if isbn[i] < '0' || isbn[i] > '9' {
			return "", false
		}
	}
	return isbn, true
}

// ParseYear parses a year column. Spreadsheet exports write "1999.0", which
// is accepted.
func ParseYear(raw string) (int, bool) {
	v, ok := CleanField(raw)
	if !ok {
		return 0, false
	}
	y, err := utils.ParseInt(v)
	if err != nil {
		return 0, false
	}
	return y, true
}

var nullLocations = map[string]struct{}{
	"n/a":  {},
	"na":   {},
	"":     {},
	"null": {},
}

// CleanLocation returns the canonical "part, part[, ...]" form of raw in
// lower case, or false when fewer than two non-empty parts remain.
func CleanLocation(raw string) (string, bool) {
	loc := strings.ToLower(strings.TrimSpace(raw))
	if _, null := nullLocations[loc]; null {
		return "", false
	}
	var parts []string
	for _, p := range strings.Split(loc, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// BirthYear derives a birth year from an age inside [minAge, maxAge].
func BirthYear(age, currentYear, minAge, maxAge int) (int, bool) {
	if age < minAge || age > maxAge {
		return 0, false
	}
	return currentYear - age, true
}
