// Package validation holds the form rules shared by the job and profile
// stores, so "blank" means the same thing on every form.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Required returns one message per field whose value is empty after
// trimming. Fields that pass are absent from the result.
func Required(fields map[string]string) map[string]string {
	errs := make(map[string]string)
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			errs[name] = fmt.Sprintf("%s is required", name)
		}
	}
	return errs
}

// URL checks an optional link. Empty is accepted; anything else must use
// the http or https scheme.
func URL(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", true
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return "", true
	}
	return "must start with http:// or https://", false
}

// Error is returned when one or more fields fail validation.
type Error struct {
	Fields map[string]string
}

// New returns nil when errs is empty, otherwise an *Error carrying it.
func New(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return &Error{Fields: errs}
}

// FieldNames returns the offending field names in sorted order.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Error) Error() string {
	names := e.FieldNames()
	msgs := make([]string, 0, len(names))
	for _, n := range names {
		msgs = append(msgs, e.Fields[n])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
