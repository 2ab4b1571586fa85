package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ClassSpec describes one fare class: a human-readable cabin name and
// the multiplier applied to an item's base fare when the class pool
// is provisioned.  The set of classes per item type is static
// configuration; it is validated once at startup instead of being
// interpreted ad hoc per request.
type ClassSpec struct {
	Cabin      string  // display name, e.g. "Premium Economy"
	Multiplier float64 // base-fare multiplier, must be > 0
}

// FareTable maps an item type to its allowed class codes and specs.
// Class codes are stored upper-case.
type FareTable map[ItemType]map[string]ClassSpec

// DefaultFareTable returns the built-in class configuration for
// flights and trains.  Multipliers follow the usual cabin ladder.
func DefaultFareTable() FareTable {
	return FareTable{
		ItemTypeFlight: {
			"ECONOMY":         {Cabin: "Economy", Multiplier: 1.0},
			"PREMIUM_ECONOMY": {Cabin: "Premium Economy", Multiplier: 1.35},
			"BUSINESS":        {Cabin: "Business", Multiplier: 2.2},
			"FIRST":           {Cabin: "First", Multiplier: 3.5},
		},
		ItemTypeTrain: {
			"SL": {Cabin: "Sleeper", Multiplier: 1.0},
			"CC": {Cabin: "Chair Car", Multiplier: 1.3},
			"3A": {Cabin: "AC 3 Tier", Multiplier: 1.6},
			"2A": {Cabin: "AC 2 Tier", Multiplier: 2.1},
			"EC": {Cabin: "Executive Chair Car", Multiplier: 2.4},
			"1A": {Cabin: "AC First Class", Multiplier: 2.9},
		},
	}
}

// Validate checks the table once at load time: every item type must be
// known, every class code non-empty and upper-case, and every
// multiplier strictly positive and finite.
func (t FareTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("fare table is empty")
	}
	for it, classes := range t {
		if !it.Valid() {
			return fmt.Errorf("fare table: unknown item type %q", it)
		}
		if len(classes) == 0 {
			return fmt.Errorf("fare table: no classes configured for %s", it)
		}
		for code, spec := range classes {
			if code == "" || code != strings.ToUpper(code) {
				return fmt.Errorf("fare table: invalid class code %q for %s", code, it)
			}
			if spec.Multiplier <= 0 || math.IsInf(spec.Multiplier, 0) || math.IsNaN(spec.Multiplier) {
				return fmt.Errorf("fare table: invalid multiplier %v for %s/%s", spec.Multiplier, it, code)
			}
		}
	}
	return nil
}

// HasClass reports whether code is a configured class for the item type.
func (t FareTable) HasClass(itemType ItemType, code string) bool {
	classes, ok := t[itemType]
	if !ok {
		return false
	}
	_, ok = classes[code]
	return ok
}

// DefaultClass returns the cheapest configured class for the item
// type.  It is used when a caller does not specify a class.
func (t FareTable) DefaultClass(itemType ItemType) string {
	classes := t[itemType]
	best := ""
	for code, spec := range classes {
		if best == "" || spec.Multiplier < classes[best].Multiplier ||
			(spec.Multiplier == classes[best].Multiplier && code < best) {
			best = code
		}
	}
	return best
}

// FareCents derives the frozen per-seat fare for a class from an
// item's base fare.  The result is rounded to the nearest cent so the
// stored integer fare carries no floating point drift.
func (t FareTable) FareCents(itemType ItemType, code string, baseCents uint32) (uint32, bool) {
	spec, ok := t[itemType][code]
	if !ok {
		return 0, false
	}
	return uint32(math.Round(float64(baseCents) * spec.Multiplier)), true
}

// Codes returns the configured class codes for an item type sorted by
// ascending multiplier, cheapest first.  Used when provisioning the
// pools of a newly created item.
func (t FareTable) Codes(itemType ItemType) []string {
	classes := t[itemType]
	out := make([]string, 0, len(classes))
	for code := range classes {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := classes[out[i]], classes[out[j]]
		if a.Multiplier != b.Multiplier {
			return a.Multiplier < b.Multiplier
		}
		return out[i] < out[j]
	})
	return out
}
