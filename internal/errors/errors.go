package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeTransport indicates a socket level failure
	ErrorTypeTransport ErrorType = "Transport"

	// ErrorTypeProtocol indicates an error numeric sent by the IRCd
	ErrorTypeProtocol ErrorType = "Protocol"

	// ErrorTypeParse indicates a line that could not be framed into a message
	ErrorTypeParse ErrorType = "Parse"

	// ErrorTypeNotConnected indicates an operation that needs a live session
	ErrorTypeNotConnected ErrorType = "NotConnected"

	// ErrorTypeInvalidSyntax indicates a command syntax error
	ErrorTypeInvalidSyntax ErrorType = "InvalidSyntax"

	// ErrorTypePermission indicates the sender is not an owner
	ErrorTypePermission ErrorType = "Permission"

	// ErrorTypeDatabase indicates a database operation failure
	ErrorTypeDatabase ErrorType = "Database"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NotFound"

	// ErrorTypeValidation indicates invalid input data
	ErrorTypeValidation ErrorType = "Validation"

	// ErrorTypeUnexpected indicates an unexpected/unknown error
	ErrorTypeUnexpected ErrorType = "Unexpected"
)

// BotError represents a structured error with type and user-friendly message
type BotError struct {
	Type           ErrorType
	UserMessage    string // Message to send to the user
	InternalError  error  // Original error for logging
	InternalDetail string // Additional detail for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.InternalError != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.UserMessage, e.InternalError)
	}
	if e.InternalDetail != "" {
		return fmt.Sprintf("%s: %s (detail: %s)", e.Type, e.UserMessage, e.InternalDetail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.UserMessage)
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.InternalError
}

// NewTransportError wraps a socket failure during op
func NewTransportError(op string, err error) *BotError {
	return &BotError{
		Type:           ErrorTypeTransport,
		UserMessage:    "Connection to the server failed.",
		InternalError:  err,
		InternalDetail: fmt.Sprintf("op=%s", op),
	}
}

// NewProtocolError creates an error for an IRCd error numeric such as 433
func NewProtocolError(code, name string) *BotError {
	return &BotError{
		Type:           ErrorTypeProtocol,
		UserMessage:    name,
		InternalDetail: fmt.Sprintf("numeric=%s", code),
	}
}

// NewParseError creates an error for a raw line that has no command token
func NewParseError(line, reason string) *BotError {
	return &BotError{
		Type:           ErrorTypeParse,
		UserMessage:    fmt.Sprintf("malformed line: %s", reason),
		InternalDetail: fmt.Sprintf("line=%q", line),
	}
}

// NewNotConnectedError creates an error for an operation attempted without a session
func NewNotConnectedError(op string) *BotError {
	return &BotError{
		Type:           ErrorTypeNotConnected,
		UserMessage:    "not connected",
		InternalDetail: fmt.Sprintf("op=%s", op),
	}
}

// NewInvalidSyntaxError creates an error for invalid command syntax
func NewInvalidSyntaxError(commandName, correctSyntax string) *BotError {
	return &BotError{
		Type:           ErrorTypeInvalidSyntax,
		UserMessage:    fmt.Sprintf("Invalid syntax. Usage: %s", correctSyntax),
		InternalDetail: fmt.Sprintf("command=%s", commandName),
	}
}

// NewPermissionError creates an error for a non-owner running an owner command
func NewPermissionError(commandName string) *BotError {
	return &BotError{
		Type:           ErrorTypePermission,
		UserMessage:    "Insufficient permissions. This command is restricted to owners.",
		InternalDetail: fmt.Sprintf("command=%s", commandName),
	}
}

// NewDatabaseError creates an error for database operation failures
func NewDatabaseError(operation string, err error) *BotError {
	return &BotError{
		Type:           ErrorTypeDatabase,
		UserMessage:    "A database error occurred. Please try again later.",
		InternalError:  err,
		InternalDetail: fmt.Sprintf("operation=%s", operation),
	}
}

// NewNotFoundError creates an error for resources that don't exist
func NewNotFoundError(resourceType, resourceName string) *BotError {
	return &BotError{
		Type:           ErrorTypeNotFound,
		UserMessage:    fmt.Sprintf("%s '%s' not found.", resourceType, resourceName),
		InternalDetail: fmt.Sprintf("resource_type=%s, resource_name=%s", resourceType, resourceName),
	}
}

// NewValidationError creates an error for invalid input data
func NewValidationError(message string) *BotError {
	return &BotError{
		Type:        ErrorTypeValidation,
		UserMessage: message,
	}
}

// NewUnexpectedError creates an error for unexpected failures
func NewUnexpectedError(err error) *BotError {
	return &BotError{
		Type:          ErrorTypeUnexpected,
		UserMessage:   "An unexpected error occurred. Please try again later.",
		InternalError: err,
	}
}

// IsBotError checks if an error is, or wraps, a BotError
func IsBotError(err error) bool {
	_, ok := AsBotError(err)
	return ok
}

// AsBotError finds the first BotError in err's chain
func AsBotError(err error) (*BotError, bool) {
	var botErr *BotError
	ok := stderrors.As(err, &botErr)
	return botErr, ok
}

// IsType reports whether err carries a BotError of the given type
func IsType(err error, t ErrorType) bool {
	botErr, ok := AsBotError(err)
	return ok && botErr.Type == t
}
