package errors

import (
	"strings"

	"github.com/yourusername/ircbot/internal/output"
)

const unexpectedReply = "An unexpected error occurred. Please try again later."

// ErrorHandler logs errors to the terminal and the error file and turns them
// into text safe to show on IRC
type ErrorHandler struct {
	output *output.Output
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(output *output.Output) *ErrorHandler {
	return &ErrorHandler{output: output}
}

// Handle records err and returns the message for the user. Only a BotError
// carries user facing text; anything else gets a generic reply.
func (h *ErrorHandler) Handle(err error) string {
	return h.HandleFrom("", err)
}

// HandleFrom is Handle for an error caused by a request from source, a nick
// or server name
func (h *ErrorHandler) HandleFrom(source string, err error) string {
	if err == nil {
		return ""
	}

	entry := output.Entry{Source: source, Err: err}
	reply := unexpectedReply
	if botErr, ok := AsBotError(err); ok {
		entry.Type = string(botErr.Type)
		entry.Message = botErr.UserMessage
		entry.Err = botErr.InternalError
		reply = botErr.UserMessage
	} else {
		entry.Type = string(ErrorTypeUnexpected)
		entry.Message = "unexpected error"
	}

	h.output.Record(entry)
	return reply
}

// HandleProtocolError records an IRCd error numeric name (e.g. ERR_NICKNAMEINUSE)
// delivered through the client's Error event. Raw ERROR lines from the server
// are recorded as transport errors since the server closes the link after them.
func (h *ErrorHandler) HandleProtocolError(text string) {
	if text == "" {
		return
	}
	errorType := ErrorTypeProtocol
	if strings.HasPrefix(strings.ToUpper(text), "ERROR") {
		errorType = ErrorTypeTransport
	}
	h.output.Record(output.Entry{Type: string(errorType), Message: text})
}
