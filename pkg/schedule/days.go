package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDay is returned when a weekday literal is not one of the seven
// canonical English day names.
var ErrInvalidDay = errors.New("unknown weekday literal")

// Weekdays is the closed weekday enumeration, in calendar order.
// Matching is case-sensitive everywhere.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

const dateLayout = "2006-01-02"

// IsWeekday reports whether s is a canonical weekday literal.
func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if s == d {
			return true
		}
	}
	return false
}

// Encode serializes an ordered weekday list into the stored scalar form.
// Records written before the multi-day schema change hold a bare literal
// instead; Decode accepts both, Encode always writes the list form.
func Encode(days []string) (string, error) {
	if len(days) == 0 {
		return "", fmt.Errorf("%w: empty day list", ErrInvalidDay)
	}
	for _, d := range days {
		if !IsWeekday(d) {
			return "", fmt.Errorf("%w: %q", ErrInvalidDay, d)
		}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode reads a stored scalar back into a weekday list. It tolerates three
// shapes indefinitely: a JSON array of literals, a JSON string (legacy-hybrid
// records), and a bare legacy literal that predates the JSON encoding. An
// empty or otherwise unparseable value decodes to an empty list so callers
// can skip the record instead of failing.
func Decode(stored string) []string {
	if stored == "" {
		return []string{}
	}

	var days []string
	if err := json.Unmarshal([]byte(stored), &days); err == nil {
		if days == nil {
			return []string{}
		}
		return days
	}

	var single string
	if err := json.Unmarshal([]byte(stored), &single); err == nil {
		return []string{single}
	}

	if json.Valid([]byte(stored)) {
		// Parses as JSON but is neither a string nor a string list.
		return []string{}
	}

	// Bare legacy literal.
	return []string{stored}
}

// Contains reports whether the stored scalar covers the given weekday.
func Contains(stored, day string) bool {
	for _, d := range Decode(stored) {
		if d == day {
			return true
		}
	}
	return false
}

// Today returns the current local weekday literal.
func Today() string {
	return time.Now().Weekday().String()
}

// EncodeDates serializes special collection dates, validating each entry as
// an ISO calendar date. A nil list encodes as an empty list.
func EncodeDates(dates []string) (string, error) {
	if dates == nil {
		dates = []string{}
	}
	for _, d := range dates {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return "", fmt.Errorf("invalid special day %q: %w", d, err)
		}
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeDates reads a stored special-days scalar. Malformed or empty values
// decode to an empty list, mirroring Decode.
func DecodeDates(stored string) []string {
	if stored == "" {
		return []string{}
	}
	var dates []string
	if err := json.Unmarshal([]byte(stored), &dates); err != nil || dates == nil {
		return []string{}
	}
	return dates
}
