// Package splitter breaks outgoing text into pieces that fit one IRC line.
package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/yourusername/ircbot/internal/ircformat"
)

// longest color sequence: \x04 + six hex digits + comma + six hex digits
const maxCodeLen = 14

// Splitter cuts messages at word boundaries, restoring active formatting at
// the start of every continuation part
type Splitter struct {
	maxLength int
}

// New creates a splitter producing parts of at most maxLength bytes
func New(maxLength int) *Splitter {
	return &Splitter{maxLength: maxLength}
}

// MaxLength returns the byte limit per part
func (s *Splitter) MaxLength() int {
	return s.maxLength
}

// NeedsSplit reports whether message is longer than one part. A splitter
// without a positive limit never splits.
func (s *Splitter) NeedsSplit(message string) bool {
	return s.maxLength > 0 && len(message) > s.maxLength
}

// Split returns message in parts of at most MaxLength bytes. Words are kept
// whole unless a single word is longer than a part; UTF-8 sequences and
// color codes are never cut.
func (s *Splitter) Split(message string) []string {
	if !s.NeedsSplit(message) {
		return []string{message}
	}

	var (
		parts []string
		state format
	)
	rest := message
	for rest != "" {
		prefix := state.codes()
		avail := s.maxLength - len(prefix)
		if avail <= 0 {
			prefix, avail = "", s.maxLength
		}

		if len(rest) <= avail {
			parts = append(parts, prefix+rest)
			break
		}

		cut := cutPoint(rest, avail)
		if part := strings.TrimRight(rest[:cut], " "); part != "" {
			parts = append(parts, prefix+part)
		}
		state.apply(rest[:cut])
		rest = strings.TrimLeft(rest[cut:], " ")
	}
	return parts
}

// cutPoint picks where to end a part of at most limit bytes
func cutPoint(text string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	cut = outsideCode(text, cut)

	if i := strings.LastIndexByte(text[:cut+1], ' '); i > 0 {
		return i
	}
	if cut > 0 {
		return cut
	}
	// a code at the very start is longer than the part; cut anyway
	_, size := utf8.DecodeRuneInString(text)
	return max(size, limit)
}

// outsideCode moves pos back to the start of a color sequence it falls in
func outsideCode(text string, pos int) int {
	for i := pos - 1; i >= 0 && i >= pos-maxCodeLen; i-- {
		c := text[i]
		if c != ircformat.Color[0] && c != ircformat.HexColor[0] {
			continue
		}
		if pos < codeEnd(text, i) {
			return i
		}
		break
	}
	return pos
}

// codeEnd returns the index just past the color sequence starting at i
func codeEnd(text string, i int) int {
	digits := isDigit
	width := 2
	if text[i] == ircformat.HexColor[0] {
		digits, width = isHex, 6
	}

	j := i + 1 + run(text[i+1:], digits, width)
	if j == i+1 {
		return j
	}
	if j+1 < len(text) && text[j] == ',' && digits(text[j+1]) {
		j += 1 + run(text[j+1:], digits, width)
	}
	return j
}

func run(text string, ok func(byte) bool, limit int) int {
	n := 0
	for n < len(text) && n < limit && ok(text[n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// format is the formatting in effect at some point of a message
type format struct {
	bold, italic, underline, strikethrough, monospace, reverse bool

	fg, bg       string
	hexFg, hexBg string
}

// apply updates f with every control code in text
func (f *format) apply(text string) {
	for i := 0; i < len(text); {
		switch text[i : i+1] {
		case ircformat.Bold:
			f.bold = !f.bold
		case ircformat.Italic:
			f.italic = !f.italic
		case ircformat.Underline:
			f.underline = !f.underline
		case ircformat.Strikethrough:
			f.strikethrough = !f.strikethrough
		case ircformat.Monospace:
			f.monospace = !f.monospace
		case ircformat.Reverse:
			f.reverse = !f.reverse
		case ircformat.Reset:
			*f = format{}
		case ircformat.Color, ircformat.HexColor:
			end := codeEnd(text, i)
			fg, bg, _ := strings.Cut(text[i+1:end], ",")
			if text[i:i+1] == ircformat.Color {
				f.fg, f.bg = setColor(f.bg, fg, bg)
			} else {
				f.hexFg, f.hexBg = setColor(f.hexBg, fg, bg)
			}
			i = end
			continue
		}
		i++
	}
}

// setColor applies a color sequence; one without digits clears both colors
func setColor(curBg, fg, bg string) (string, string) {
	if fg == "" {
		return "", ""
	}
	if bg == "" {
		bg = curBg
	}
	return fg, bg
}

// codes returns the control codes that re-establish f
func (f *format) codes() string {
	var b strings.Builder
	for _, t := range []struct {
		on   bool
		code string
	}{
		{f.bold, ircformat.Bold},
		{f.italic, ircformat.Italic},
		{f.underline, ircformat.Underline},
		{f.strikethrough, ircformat.Strikethrough},
		{f.monospace, ircformat.Monospace},
		{f.reverse, ircformat.Reverse},
	} {
		if t.on {
			b.WriteString(t.code)
		}
	}

	// two digit colors so a digit opening the part is not read as color
	if f.fg != "" {
		b.WriteString(ircformat.Color + pad(f.fg))
		if f.bg != "" {
			b.WriteString("," + pad(f.bg))
		}
	}
	if f.hexFg != "" {
		b.WriteString(ircformat.HexColor + f.hexFg)
		if f.hexBg != "" {
			b.WriteString("," + f.hexBg)
		}
	}
	return b.String()
}

func pad(color string) string {
	if len(color) == 1 {
		return "0" + color
	}
	return color
}
