package planner

import (
	"errors"
	"unicode/utf8"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskplanner/internal/app/system/normalize"
)

// MaxTitleLength bounds board, task, and item titles, in runes.
const MaxTitleLength = 200

// cleanTitle strips markup, collapses whitespace, and enforces the title
// bounds.
func cleanTitle(raw string) (string, error) {
	title := normalize.Title(htmlsanitize.StripTags(raw))
	if title == "" {
		return "", apperr.Invalid("title", "Title is required.")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", apperr.Invalid("title", "Title must be at most 200 characters.")
	}
	return title, nil
}

// asAppErr passes classified errors through and wraps the rest as Internal.
func asAppErr(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return internal(err)
}
