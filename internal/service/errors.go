package service

// Kind classifies a service failure. NotFound, Validation and BusinessRule
// are expected caller-facing outcomes; Operational marks an unexpected
// persistence failure whose atomic unit has been fully rolled back.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindBusinessRule
	KindOperational
)

// Error carries a failure kind together with a short, stable reason string.
// The HTTP layer maps the kind to a status code without altering the message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation reports a malformed or semantically illegal request.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// BusinessRule reports that the request would violate a ledger invariant.
func BusinessRule(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

// Operational wraps an unexpected failure behind a generic, stable message
// so no internal state leaks to the caller.
func Operational(message string, cause error) *Error {
	return &Error{Kind: KindOperational, Message: message, cause: cause}
}
