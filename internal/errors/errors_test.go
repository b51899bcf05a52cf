package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestBotError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BotError
		expected string
	}{
		{
			name:     "with internal error",
			err:      NewTransportError("read", io.EOF),
			expected: "Transport: Connection to the server failed. (internal: EOF)",
		},
		{
			name:     "with detail",
			err:      NewProtocolError("433", "ERR_NICKNAMEINUSE"),
			expected: "Protocol: ERR_NICKNAMEINUSE (detail: numeric=433)",
		},
		{
			name:     "plain",
			err:      NewValidationError("bad channel"),
			expected: "Validation: bad channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAsBotError_Wrapped(t *testing.T) {
	inner := NewParseError(":nick!u@h", "no command")
	wrapped := fmt.Errorf("dispatch: %w", inner)

	botErr, ok := AsBotError(wrapped)
	if !ok {
		t.Fatal("AsBotError() did not find wrapped BotError")
	}
	if botErr != inner {
		t.Errorf("AsBotError() = %p, want %p", botErr, inner)
	}
	if !IsType(wrapped, ErrorTypeParse) {
		t.Error("IsType(wrapped, Parse) = false, want true")
	}
	if IsType(wrapped, ErrorTypeTransport) {
		t.Error("IsType(wrapped, Transport) = true, want false")
	}
	if IsBotError(io.EOF) {
		t.Error("IsBotError(io.EOF) = true, want false")
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := NewTransportError("dial", io.ErrUnexpectedEOF)
	if err.Unwrap() != io.ErrUnexpectedEOF {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), io.ErrUnexpectedEOF)
	}
}
