package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tradejournal/internal/domain"
)

// Candidate is the outcome of normalizing one CSV row: a best-effort
// TradeInput plus every field-level problem encountered. Normalization
// never aborts a row; the caller decides what to do with the errors.
type Candidate struct {
	Input  domain.TradeInput
	Errors []domain.FieldError
}

// Failed reports whether any field failed to normalize
func (c Candidate) Failed() bool {
	return len(c.Errors) > 0
}

// Normalize maps one CSV row onto a TradeInput using the profile's
// alias tables. It is pure: missing fields stay zero-valued for the
// validator to judge, unparsable values are recorded as field errors.
func Normalize(row map[string]string, profile Profile) Candidate {
	var c Candidate
	lookup := newRowLookup(row)

	c.Input.Symbol = lookup.get(profile, FieldSymbol)

	if raw, ok := lookup.find(profile, FieldSide); ok {
		side, err := domain.SideFromToken(raw)
		if err != nil {
			c.fail(FieldSide, err.Error())
		} else {
			c.Input.Side = side
		}
	}

	if raw, ok := lookup.find(profile, FieldQuantity); ok {
		if v, err := parseNumber(raw); err != nil {
			c.fail(FieldQuantity, err.Error())
		} else {
			c.Input.Quantity = v
		}
	}

	if raw, ok := lookup.find(profile, FieldEntryPrice); ok {
		if v, err := parseNumber(raw); err != nil {
			c.fail(FieldEntryPrice, err.Error())
		} else {
			c.Input.EntryPrice = v
		}
	}

	if raw, ok := lookup.find(profile, FieldExitPrice); ok {
		if v, err := parseNumber(raw); err != nil {
			c.fail(FieldExitPrice, err.Error())
		} else {
			c.Input.ExitPrice = &v
		}
	}

	if raw, ok := lookup.find(profile, FieldEntryDate); ok {
		if t, err := parseDate(raw); err != nil {
			c.fail(FieldEntryDate, err.Error())
		} else {
			c.Input.EntryDate = t
		}
	}

	if raw, ok := lookup.find(profile, FieldExitDate); ok {
		if t, err := parseDate(raw); err != nil {
			c.fail(FieldExitDate, err.Error())
		} else {
			c.Input.ExitDate = &t
		}
	}

	if raw, ok := lookup.find(profile, FieldCommission); ok {
		if v, err := parseNumber(raw); err != nil {
			c.fail(FieldCommission, err.Error())
		} else {
			c.Input.Commission = v
		}
	}

	if raw := lookup.get(profile, FieldInstrumentType); raw != "" {
		c.Input.InstrumentType = domain.InstrumentType(strings.ToLower(raw))
	}

	c.Input.Strategy = lookup.get(profile, FieldStrategy)
	c.Input.Notes = lookup.get(profile, FieldNotes)

	return c
}

func (c *Candidate) fail(field Field, message string) {
	c.Errors = append(c.Errors, domain.FieldError{Field: string(field), Message: message})
}

// rowLookup resolves profile aliases against a row with
// case-insensitive column matching.
type rowLookup map[string]string

func newRowLookup(row map[string]string) rowLookup {
	l := make(rowLookup, len(row))
	for col, value := range row {
		l[strings.ToLower(strings.TrimSpace(col))] = strings.TrimSpace(value)
	}
	return l
}

// find returns the first non-empty value among the profile's aliases
// for the field, falling back to the profile's fixed default.
func (l rowLookup) find(profile Profile, field Field) (string, bool) {
	for _, alias := range profile.Aliases[field] {
		if value, ok := l[strings.ToLower(alias)]; ok && value != "" {
			return value, true
		}
	}
	if def, ok := profile.Defaults[field]; ok {
		return def, true
	}
	return "", false
}

func (l rowLookup) get(profile Profile, field Field) string {
	value, _ := l.find(profile, field)
	return value
}

var numberCleaner = strings.NewReplacer("$", "", ",", "")

// parseNumber coerces a broker-formatted numeric string, tolerating
// currency symbols and thousands separators. Anything that does not
// parse to a finite number is an error, never a silent zero.
func parseNumber(raw string) (float64, error) {
	cleaned := strings.TrimSpace(numberCleaner.Replace(raw))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}
