// Package apperr defines the error kinds the planner and account layers
// return to the HTTP boundary. Handlers translate a Kind into a status code
// with features/errors.WriteError; the core never maps status codes itself.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the boundary.
type Kind int

const (
	Internal Kind = iota
	UserNotFound
	BoardNotFound
	TaskNotFound
	ItemNotFound
	InvalidArgument
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case UserNotFound:
		return "user_not_found"
	case BoardNotFound:
		return "board_not_found"
	case TaskNotFound:
		return "task_not_found"
	case ItemNotFound:
		return "item_not_found"
	case InvalidArgument:
		return "invalid_argument"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error carries a Kind, a client-safe message, and an optional cause.
// Field is set for validation failures tied to a single request field;
// Fields carries several at once.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an *Error of the given kind that wraps cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Invalid returns an InvalidArgument error bound to a request field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: InvalidArgument, Field: field, Message: msg}
}

// InvalidFields returns an InvalidArgument error for a field -> message map.
func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: InvalidArgument, Fields: fields, Message: "Invalid request"}
}

// FieldsOf returns the per-field messages carried by err, or nil.
func FieldsOf(err error) map[string]string {
	var e *Error
	if !errors.As(err, &e) || e.Kind != InvalidArgument {
		return nil
	}
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Field != "" {
		return map[string]string{e.Field: e.Message}
	}
	return nil
}

// Default messages, matching what clients of the API already see.
const (
	MsgUserNotFound  = "User not found"
	MsgBoardNotFound = "Board not found"
	MsgTaskNotFound  = "Task not found"
	MsgItemNotFound  = "Item not found"
	MsgInternal      = "An unexpected error occurred"
)

func NotFoundUser() *Error  { return New(UserNotFound, MsgUserNotFound) }
func NotFoundBoard() *Error { return New(BoardNotFound, MsgBoardNotFound) }
func NotFoundTask() *Error  { return New(TaskNotFound, MsgTaskNotFound) }
func NotFoundItem() *Error  { return New(ItemNotFound, MsgItemNotFound) }

// KindOf reports the Kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-safe message for err.
// Internal errors never expose their cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}
