// Package ident holds the pure parts of record identification: plant name
// normalization and the PA code format.
package ident

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// PlantCodePrefix prefixes every plant code, e.g. PA001.
	PlantCodePrefix = "PA"
	plantCodeDigits = 3

	// FirstVisitorNumber is the number given to the first visitor of a plant.
	FirstVisitorNumber = 1
)

// NormalizeName strips diacritics, lower-cases and removes all whitespace.
// Two plant names share a code iff their normalized forms are equal.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FormatPlantCode renders n as PA followed by at least three digits.
func FormatPlantCode(n int64) string {
	return fmt.Sprintf("%s%0*d", PlantCodePrefix, plantCodeDigits, n)
}

// ParsePlantCode returns the numeric suffix of a plant code.
func ParsePlantCode(code string) (int64, error) {
	if !strings.HasPrefix(code, PlantCodePrefix) {
		return 0, fmt.Errorf("plant code %q: missing %s prefix", code, PlantCodePrefix)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(code, PlantCodePrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("plant code %q: %w", code, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("plant code %q: sequence must be positive", code)
	}
	return n, nil
}

// NextVisitorNumber returns the number following last, treating zero
// (no visitor recorded yet) as the base case.
func NextVisitorNumber(last int64) int64 {
	if last < FirstVisitorNumber {
		return FirstVisitorNumber
	}
	return last + 1
}
