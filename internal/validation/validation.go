// Package validation checks decoded JSON request bodies. Every check runs so
// callers get the full list of problems in one response.
package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 6

// Fields is a decoded JSON object. Numbers may be float64 or json.Number.
type Fields map[string]any

// Errors is an ordered list of human-readable problems. An empty list means
// the input is valid.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

// Err returns e as an error, or nil when e is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Item validates an item payload. With partial set, absent fields are
// allowed and only present ones are checked.
func Item(fields Fields, partial bool) Errors {
	errs := Errors{}

	if raw, ok := fields["name"]; ok {
		switch name := raw.(type) {
		case nil:
			errs = append(errs, "Name cannot be empty")
		case string:
			if strings.TrimSpace(name) == "" {
				errs = append(errs, "Name cannot be empty")
			}
		default:
			errs = append(errs, "Name must be a string")
		}
	} else if !partial {
		errs = append(errs, "Name is required")
	}

	if raw, ok := fields["description"]; ok && raw != nil {
		if _, isString := raw.(string); !isString {
			errs = append(errs, "Description must be a string")
		}
	}

	if raw, ok := fields["price"]; ok {
		price, valid := ParsePrice(raw)
		switch {
		case !valid:
			errs = append(errs, "Price must be a valid number")
		case price <= 0:
			errs = append(errs, "Price must be a positive number")
		}
	} else if !partial {
		errs = append(errs, "Price is required")
	}

	return errs
}

// User validates a registration payload, or a login payload when login is
// set. Login skips the password length and name checks.
func User(fields Fields, login bool) Errors {
	errs := Errors{}

	raw, ok := fields["email"]
	switch {
	case !ok || isFalsy(raw):
		errs = append(errs, "Email is required")
	default:
		email, isString := raw.(string)
		if !isString || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			errs = append(errs, "Invalid email format")
		}
	}

	raw, ok = fields["password"]
	switch {
	case !ok || isFalsy(raw):
		errs = append(errs, "Password is required")
	default:
		password, isString := raw.(string)
		if !isString {
			errs = append(errs, "Password must be a string")
		} else if !login && utf8.RuneCountInString(password) < minPasswordLength {
			errs = append(errs, "Password must be at least 6 characters long")
		}
	}

	if !login {
		raw, ok = fields["name"]
		switch {
		case !ok || isFalsy(raw):
			errs = append(errs, "Name is required")
		default:
			name, isString := raw.(string)
			if !isString {
				errs = append(errs, "Name must be a string")
			} else if strings.TrimSpace(name) == "" {
				errs = append(errs, "Name is required")
			}
		}
	}

	return errs
}

// ParsePrice converts a JSON number or numeric string into a finite float.
func ParsePrice(raw any) (float64, bool) {
	var (
		price float64
		err   error
	)
	switch v := raw.(type) {
	case float64:
		price = v
	case json.Number:
		price, err = v.Float64()
	case string:
		price, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

// String returns the trimmed string at key. A missing or null value yields
// ok=false.
func String(fields Fields, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
