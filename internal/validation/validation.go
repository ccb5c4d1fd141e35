// Package validation provides the field-level validation primitives and the
// proposal entity validators. Validators are pure: they inspect a value and
// return a field-keyed set of messages, never touching storage.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Errors maps a field name (or nested path such as
// "inceptionPhase.proposedCost") to the messages describing what is wrong with
// it. An empty map means the value passed. Validators always run to
// completion, so the caller receives every problem in one pass.
type Errors map[string][]string

func (e Errors) Add(field string, messages ...string) {
	if len(messages) == 0 {
		return
	}
	e[field] = append(e[field], messages...)
}

// Extend merges another error set under a path prefix.
func (e Errors) Extend(prefix string, other Errors) {
	for field, messages := range other {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		e[key] = append(e[key], messages...)
	}
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Join merges several independent validation outcomes into one. Every input
// has already been fully evaluated, so the combined set carries the complete
// list of problems.
func Join(all ...Errors) Errors {
	combined := Errors{}
	for _, errs := range all {
		combined.Extend("", errs)
	}
	return combined
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9() .-]{7,20}$`)
)

// StringLength checks the rune length of a value against inclusive bounds.
func StringLength(value, label string, min, max int) []string {
	length := len([]rune(value))
	if length < min || length > max {
		return []string{fmt.Sprintf("%s must be between %d and %d characters long.", label, min, max)}
	}
	return nil
}

// WordCount checks the whitespace-separated word count of a value.
func WordCount(value, label string, min, max int) []string {
	words := len(strings.Fields(value))
	if words < min || words > max {
		return []string{fmt.Sprintf("%s must be between %d and %d words long.", label, min, max)}
	}
	return nil
}

// NumberRange checks a value against inclusive bounds.
func NumberRange(value float64, label string, min, max float64) []string {
	if value < min || value > max {
		return []string{fmt.Sprintf("%s must be between %v and %v.", label, min, max)}
	}
	return nil
}

// NumberPrecision checks a value against inclusive bounds and rejects more
// than the given number of decimal places.
func NumberPrecision(value float64, label string, min, max float64, places int) []string {
	if msgs := NumberRange(value, label, min, max); msgs != nil {
		return msgs
	}
	factor := math.Pow(10, float64(places))
	if math.Round(value*factor)/factor != value {
		return []string{fmt.Sprintf("%s cannot have more than %d decimal places.", label, places)}
	}
	return nil
}

func Email(value string) []string {
	if !emailPattern.MatchString(value) {
		return []string{"Please enter a valid email address."}
	}
	return nil
}

func Phone(value string) []string {
	if !phonePattern.MatchString(value) {
		return []string{"Please enter a valid phone number."}
	}
	return nil
}
