// Package errs defines the error shapes returned to API clients.
//
// Every failure that reaches the HTTP layer is converted into an HTTPError so
// clients always receive the same JSON body:
//
//	{"code":"ANIME_NOT_FOUND","message":"Anime ID not found","status":400,...}
package errs

import "strings"

// FieldError is a validation failure bound to a single request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells a client what to do next.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional follow-up instruction attached to an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type rendered by the global error handler.
//
// Code is machine readable (e.g. "BAD_REQUEST"), Message is meant for humans.
// Override marks messages that clients may show verbatim.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError. It does not compare codes; use
// errors.As and inspect Code for that.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// HasCode reports whether err is an *HTTPError carrying the given code.
func HasCode(err error, code string) bool {
	httpErr, ok := As(err)
	return ok && httpErr.Code == code
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
