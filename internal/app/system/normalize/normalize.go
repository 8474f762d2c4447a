// Package normalize holds the canonical forms stored for user-entered strings.
package normalize

import "strings"

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Title trims a board, task, or item title and collapses inner runs of
// whitespace to a single space.
func Title(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
