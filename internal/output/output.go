package output

import (
	"fmt"
)

// Output combines colored terminal logging with file-based error logging
type Output struct {
	Logger      Logger
	ErrorLogger *ErrorLogger
}

// NewOutput creates a new Output with both terminal and file logging
func NewOutput(errorLogPath string, maxSizeMB, maxFiles int) (*Output, error) {
	if err := EnsureLogDirectory(errorLogPath); err != nil {
		return nil, fmt.Errorf("failed to ensure log directory: %w", err)
	}

	return &Output{
		Logger:      NewColorLogger(),
		ErrorLogger: NewErrorLoggerWithLimits(errorLogPath, maxSizeMB, maxFiles),
	}, nil
}

// LogErrorToFile logs an error to the file-based error log and prints it to
// the terminal
func (o *Output) LogErrorToFile(errorType, errorMessage string, err error) {
	o.Record(Entry{Type: errorType, Message: errorMessage, Err: err})
}

// Record prints entry to the terminal and appends it to the error log
func (o *Output) Record(entry Entry) {
	msg := entry.Message
	if entry.Source != "" {
		msg = entry.Source + ": " + msg
	}
	if entry.Err != nil {
		o.Logger.Error("%s: %s - %v", entry.Type, msg, entry.Err)
	} else {
		o.Logger.Error("%s: %s", entry.Type, msg)
	}

	if err := o.ErrorLogger.Write(entry); err != nil {
		o.Logger.Error("Failed to write to error log: %v", err)
	}
}
