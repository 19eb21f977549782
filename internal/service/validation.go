package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxStringLength   = 255
	minPasswordLength = 6
)

func requireString(v *ValidationError, field string, value *string) bool {
	if value == nil || strings.TrimSpace(*value) == "" {
		v.Add(field, fmt.Sprintf("The %s field is required.", humanize(field)))
		return false
	}
	return storable(v, field, *value)
}

// presentString validates an optional field: absent is fine, present must be non-blank.
func presentString(v *ValidationError, field string, value *string) bool {
	if value == nil {
		return false
	}
	if strings.TrimSpace(*value) == "" {
		v.Add(field, fmt.Sprintf("The %s field must not be empty.", humanize(field)))
		return false
	}
	return storable(v, field, *value)
}

// storable rejects NUL bytes, which Postgres text columns cannot hold.
func storable(v *ValidationError, field, value string) bool {
	if strings.ContainsRune(value, 0) {
		v.Add(field, fmt.Sprintf("The %s field must not contain null characters.", humanize(field)))
		return false
	}
	return true
}

func maxLength(v *ValidationError, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, fmt.Sprintf("The %s must not be greater than %d characters.", humanize(field), max))
	}
}

func minLength(v *ValidationError, field, value string, min int) {
	if utf8.RuneCountInString(value) < min {
		v.Add(field, fmt.Sprintf("The %s must be at least %d characters.", humanize(field), min))
	}
}

func validEmail(v *ValidationError, field, value string) {
	if !isEmail(value) {
		v.Add(field, fmt.Sprintf("The %s must be a valid email address.", humanize(field)))
	}
}

// isEmail accepts a bare RFC 5322 address, rejecting display-name forms.
func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@"):], ".")
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
