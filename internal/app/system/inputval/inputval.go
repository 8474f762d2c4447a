// Package inputval validates decoded request bodies.
//
// Request structs declare their rules in a `validate` tag and a human label in
// a `label` tag:
//
//	type registerInput struct {
//	    FirstName string `json:"firstName" validate:"required,max=100" label:"First name"`
//	    Email     string `json:"email" validate:"required,email" label:"Email"`
//	}
//
// Supported rules: required, min=N, max=N (rune counts), email, objectid,
// password. Errors are keyed by the field's JSON name so the boundary can
// answer with a field map.
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dalemusser/taskplanner/internal/app/system/authutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures for one input.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Map returns field -> first message for that field.
func (r *Result) Map() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validate checks every exported string field of v (a struct or pointer to
// struct) against its `validate` tag. Fields stop at their first failure.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() || sf.Type.Kind() != reflect.String {
			continue
		}
		label := sf.Tag.Get("label")
		if label == "" {
			label = sf.Name
		}
		if msg := checkRules(rv.Field(i).String(), tag, label); msg != "" {
			res.Errors = append(res.Errors, FieldError{Field: jsonName(sf), Message: msg})
		}
	}
	return res
}

func checkRules(val, tag, label string) string {
	trimmed := strings.TrimSpace(val)
	for _, rule := range strings.Split(tag, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch name {
		case "required":
			if trimmed == "" {
				return label + " is required."
			}
		case "max":
			if n, err := strconv.Atoi(arg); err == nil && len([]rune(trimmed)) > n {
				return fmt.Sprintf("%s must be at most %d characters.", label, n)
			}
		case "min":
			if n, err := strconv.Atoi(arg); err == nil && trimmed != "" && len([]rune(trimmed)) < n {
				return fmt.Sprintf("%s must be at least %d characters.", label, n)
			}
		case "email":
			if trimmed != "" && !IsValidEmail(trimmed) {
				return "A valid email address is required."
			}
		case "objectid":
			if trimmed != "" && !IsValidObjectID(trimmed) {
				return label + " is not a valid id."
			}
		case "password":
			if val != "" && authutil.ValidatePassword(val) != nil {
				return fmt.Sprintf("%s must be at least %d characters and contain letters and digits.", label, authutil.MinPasswordLength)
			}
		}
	}
	return ""
}

func jsonName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return sf.Name
}

// IsValidEmail accepts a bare addr-spec: a dot-atom local part, "@", and one
// or more dot-separated domain labels. Display-name forms are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n<>\"") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return validDotted(local) && validDotted(domain)
}

func validDotted(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// IsValidObjectID reports whether s (trimmed) is a 24-char hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
