package irc

import "strings"

// Message is one parsed protocol line. It is never mutated after parsing.
type Message struct {
	prefix     string
	senderNick string
	command    string
	params     []string
	trailing   string
}

// NewMessage builds a Message. The sender nickname is derived from prefix:
// everything before the first '!' with any ':' removed.
func NewMessage(prefix, command string, params []string, trailing string) *Message {
	var p []string
	if len(params) > 0 {
		p = make([]string, len(params))
		copy(p, params)
	}
	return &Message{
		prefix:     prefix,
		senderNick: senderNickFromPrefix(prefix),
		command:    command,
		params:     p,
		trailing:   trailing,
	}
}

func senderNickFromPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	nick, _, _ := strings.Cut(prefix, "!")
	return strings.ReplaceAll(nick, ":", "")
}

// Prefix returns the origin of the line, e.g. nick!user@host or a server name
func (m *Message) Prefix() string { return m.prefix }

// SenderNick returns the nickname part of the prefix
func (m *Message) SenderNick() string { return m.senderNick }

// Command returns the textual command or the 3-digit numeric code
func (m *Message) Command() string { return m.command }

// Trailing returns the free text after " :"
func (m *Message) Trailing() string { return m.trailing }

// Params returns a copy of the middle parameters
func (m *Message) Params() []string {
	if len(m.params) == 0 {
		return nil
	}
	p := make([]string, len(m.params))
	copy(p, m.params)
	return p
}

// Param returns the i-th parameter, or "" when absent
func (m *Message) Param(i int) string {
	if i < 0 || i >= len(m.params) {
		return ""
	}
	return m.params[i]
}

// ParamCount returns the number of middle parameters
func (m *Message) ParamCount() int { return len(m.params) }

// IsNumeric reports whether the command is a 3-digit numeric reply
func (m *Message) IsNumeric() bool {
	return isNumeric(m.command)
}

func isNumeric(command string) bool {
	if len(command) != 3 {
		return false
	}
	for i := 0; i < len(command); i++ {
		if command[i] < '0' || command[i] > '9' {
			return false
		}
	}
	return true
}

// String reassembles the message into wire form, without CRLF
func (m *Message) String() string {
	var b strings.Builder
	if m.prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.command)
	for _, p := range m.params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if m.trailing != "" {
		b.WriteString(" :")
		b.WriteString(m.trailing)
	}
	return b.String()
}
