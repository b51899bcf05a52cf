package irc

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/yourusername/ircbot/internal/output"
)

// ctcpDelim brackets every CTCP payload
const ctcpDelim = "\x01"

// CTCPHandler answers CTCP requests embedded in PRIVMSG and surfaces CTCP
// replies embedded in NOTICE
type CTCPHandler struct {
	client *Client
	logger output.Logger
	now    func() time.Time
}

// NewCTCPHandler creates a new CTCP handler
func NewCTCPHandler(client *Client, logger output.Logger) *CTCPHandler {
	return &CTCPHandler{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// HandleRequest processes one CTCP request. payload is the text between the
// delimiters, e.g. "VERSION" or "ACTION waves".
func (h *CTCPHandler) HandleRequest(sender, payload string) {
	command, args := splitCTCP(payload)

	switch command {
	case "VERSION":
		h.logger.Info("CTCP VERSION request from %s", sender)
		h.reply(sender, "VERSION", h.versionString())

	case "TIME":
		h.logger.Info("CTCP TIME request from %s", sender)
		h.reply(sender, "TIME", h.now().Format(time.RFC1123))

	case "PING":
		// Echo the payload so the requester can measure latency
		h.logger.Info("CTCP PING request from %s", sender)
		h.reply(sender, "PING", args)

	case "ACTION":
		h.client.events.Emit(Event{Kind: EventAction, Sender: sender, Text: args})

	default:
		h.logger.Info("Unhandled CTCP request from %s: %s", sender, command)
	}
}

// HandleResponse surfaces a CTCP reply received in a NOTICE
func (h *CTCPHandler) HandleResponse(msg *Message, payload string) {
	h.client.events.Emit(Event{
		Kind:    EventCtcpResponse,
		Message: msg,
		Sender:  msg.SenderNick(),
		Text:    payload,
	})
}

func (h *CTCPHandler) versionString() string {
	return fmt.Sprintf("%s %s/%s", h.client.state.VersionReply(), runtime.GOOS, runtime.GOARCH)
}

// reply sends a CTCP reply via NOTICE
func (h *CTCPHandler) reply(target, command, args string) {
	if err := h.client.sendCtcpResponse(target, ctcpPayload(command, args)); err != nil {
		h.logger.Error("Failed to send CTCP %s reply to %s: %v", command, target, err)
	}
}

// FormatCTCPMessage formats a CTCP message with proper delimiters
func FormatCTCPMessage(command, args string) string {
	return ctcpDelim + ctcpPayload(command, args) + ctcpDelim
}

// ctcpPayload joins command and args without delimiters
func ctcpPayload(command, args string) string {
	if args == "" {
		return command
	}
	return command + " " + args
}

// IsCTCPMessage reports whether text carries a CTCP payload. Only the leading
// delimiter is required; some clients omit the trailing one.
func IsCTCPMessage(text string) bool {
	return strings.HasPrefix(text, ctcpDelim)
}

// ParseCTCPMessage extracts the command and arguments from a CTCP message
func ParseCTCPMessage(text string) (command, args string, ok bool) {
	if !IsCTCPMessage(text) {
		return "", "", false
	}
	command, args = splitCTCP(unwrapCTCP(text))
	return command, args, command != ""
}

// unwrapCTCP returns the text between the delimiters
func unwrapCTCP(text string) string {
	text = strings.TrimPrefix(text, ctcpDelim)
	return strings.TrimSuffix(text, ctcpDelim)
}

func splitCTCP(payload string) (command, args string) {
	command, args, _ = strings.Cut(payload, " ")
	return strings.ToUpper(command), args
}
