// Package environ applies environment variable overrides onto configuration fields.
// Every helper is a no-op when the variable name is empty, the variable is unset,
// or its value fails to parse, leaving the destination untouched.
package environ

import (
	"os"
	"strconv"
	"strings"
)

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// String overwrites dst with the value of name.
func String(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// Int overwrites dst with the integer value of name.
func Int(name string, dst *int) {
	if v, ok := lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Bool overwrites dst with the boolean value of name.
func Bool(name string, dst *bool) {
	if v, ok := lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List overwrites dst with the comma-separated values of name.
// Blank entries are discarded.
func List(name string, dst *[]string) {
	v, ok := lookup(name)
	if !ok {
		return
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}
