package irc

import (
	"strings"

	boterrors "github.com/yourusername/ircbot/internal/errors"
)

// ParseMessage parses one raw protocol line (without CRLF) of the form
//
//	[:prefix ]command[ param1 param2 ...][ :trailing]
//
// Every ':' inside the trailing text is removed. Servers relay text that
// legitimately contains colons, so callers that need it verbatim should use
// ParseMessagePreserving instead.
func ParseMessage(line string) (*Message, error) {
	return parseLine(line, true)
}

// ParseMessagePreserving is ParseMessage without the colon stripping
func ParseMessagePreserving(line string) (*Message, error) {
	return parseLine(line, false)
}

func parseLine(line string, stripColons bool) (*Message, error) {
	if line == "" {
		return nil, boterrors.NewParseError(line, "empty line")
	}

	prefix := ""
	rest := line
	if line[0] == ':' {
		space := strings.IndexByte(line, ' ')
		if space < 0 {
			return nil, boterrors.NewParseError(line, "prefix without command")
		}
		prefix = line[1:space]
		rest = line[space+1:]
	}

	middle := rest
	trailing := ""
	if i := strings.Index(rest, " :"); i >= 0 {
		middle = rest[:i]
		trailing = rest[i+2:]
	}

	fields := strings.Fields(middle)
	if len(fields) == 0 || strings.HasPrefix(fields[0], ":") {
		return nil, boterrors.NewParseError(line, "no command")
	}

	if stripColons {
		trailing = strings.ReplaceAll(trailing, ":", "")
	}

	return NewMessage(prefix, fields[0], fields[1:], trailing), nil
}
