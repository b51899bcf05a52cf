// Package ircformat handles mIRC-style formatting control codes in message
// text.
package ircformat

import (
	"regexp"
	"strings"
)

// IRC control characters
const (
	Bold          = "\x02"
	Italic        = "\x1D"
	Underline     = "\x1F"
	Strikethrough = "\x1E"
	Monospace     = "\x11"
	Color         = "\x03" // followed by fg[,bg], one or two digits each
	HexColor      = "\x04" // followed by six hex digits
	Reverse       = "\x16"
	Reset         = "\x0F"
)

var (
	colorPattern    = regexp.MustCompile("\x03(?:\\d{1,2}(?:,\\d{1,2})?)?")
	hexColorPattern = regexp.MustCompile("\x04(?:[0-9A-Fa-f]{6}(?:,[0-9A-Fa-f]{6})?)?")
	toggles         = strings.NewReplacer(
		Bold, "",
		Italic, "",
		Underline, "",
		Strikethrough, "",
		Monospace, "",
		Reverse, "",
		Reset, "",
	)
)

// Strip removes all formatting control codes from text
func Strip(text string) string {
	if !HasCodes(text) {
		return text
	}
	text = colorPattern.ReplaceAllString(text, "")
	text = hexColorPattern.ReplaceAllString(text, "")
	return toggles.Replace(text)
}

// HasCodes reports whether text contains any formatting control code
func HasCodes(text string) bool {
	return strings.ContainsAny(text, Bold+Italic+Underline+Strikethrough+Monospace+Color+HexColor+Reverse+Reset)
}
