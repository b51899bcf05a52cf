package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Logger defines the interface for colored terminal output
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	ChannelMessage(channel, nick, message string)
	PrivateMessage(nick, message string)
}

// ColorLogger implements Logger with colored terminal output
type ColorLogger struct {
	infoColor    *color.Color
	successColor *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	channelColor *color.Color
	pmColor      *color.Color
	nickColor    *color.Color
}

// NewColorLogger creates a new ColorLogger with default color scheme
func NewColorLogger() *ColorLogger {
	return &ColorLogger{
		infoColor:    color.New(color.FgCyan),
		successColor: color.New(color.FgGreen, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		channelColor: color.New(color.FgBlue, color.Bold),
		pmColor:      color.New(color.FgMagenta, color.Bold),
		nickColor:    color.New(color.FgGreen),
	}
}

// Info prints an informational message in cyan
func (l *ColorLogger) Info(format string, args ...interface{}) {
	l.print(l.infoColor, "INFO", format, args...)
}

// Success prints a success message in bold green
func (l *ColorLogger) Success(format string, args ...interface{}) {
	l.print(l.successColor, "SUCCESS", format, args...)
}

// Warning prints a warning message in bold yellow
func (l *ColorLogger) Warning(format string, args ...interface{}) {
	l.print(l.warningColor, "WARNING", format, args...)
}

// Error prints an error message in bold red
func (l *ColorLogger) Error(format string, args ...interface{}) {
	l.print(l.errorColor, "ERROR", format, args...)
}

func (l *ColorLogger) print(c *color.Color, level, format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = c.Printf("[%s] %s: %s\n", timestamp, level, message)
}

// ChannelMessage prints a channel message.
// Format: [HH:MM:SS] #channel <nick> message
func (l *ColorLogger) ChannelMessage(channel, nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	if !strings.HasPrefix(channel, "#") && !strings.HasPrefix(channel, "&") {
		channel = "#" + channel
	}
	fmt.Printf("[%s] ", timestamp)
	_, _ = l.channelColor.Printf("%s ", channel)
	_, _ = l.nickColor.Printf("<%s> ", nick)
	fmt.Printf("%s\n", message)
}

// PrivateMessage prints a private message.
// Format: [HH:MM:SS] PM from nick: message
func (l *ColorLogger) PrivateMessage(nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] ", timestamp)
	_, _ = l.pmColor.Printf("PM from ")
	_, _ = l.nickColor.Printf("%s: ", nick)
	fmt.Printf("%s\n", message)
}

// NopLogger discards everything. Used by tests and by library consumers
// that bring their own observers.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{}) {}
func (NopLogger) Success(string, ...interface{}) {}
func (NopLogger) Warning(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) ChannelMessage(string, string, string) {}
func (NopLogger) PrivateMessage(string, string) {}
