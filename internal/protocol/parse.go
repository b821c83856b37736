// Package protocol parses the line-oriented text frames emitted by the
// LSM-6200 over its RS-232 interface. The device sends one reading per line,
// a decimal numeral with an optional trailing unit suffix, terminated by
// CR+LF. Frames carry no checksum.
package protocol

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Measurement is one parsed device reading. Value is nil and Unit empty when
// the line held no parseable numeric token; Raw always preserves the trimmed
// line text.
type Measurement struct {
	Raw   string
	Value *decimal.Decimal
	Unit  string
}

// Parser extracts measurements from raw frames. It is deliberately tolerant:
// malformed device output degrades to a Measurement with a nil Value rather
// than an error, so a glitched frame never kills the read loop.
type Parser struct {
	// ExpectedUnit is reported when a frame carries no unit suffix of its
	// own. May be empty.
	ExpectedUnit string
}

// ParseLine decodes a raw frame and parses it. Invalid UTF-8 sequences are
// substituted, never rejected.
func (p *Parser) ParseLine(line []byte) *Measurement {
	return p.ParseText(strings.ToValidUTF8(string(line), string(utf8.RuneError)))
}

// ParseText parses one frame already in text form. It returns nil for a line
// that is empty after trimming; callers should skip such frames rather than
// classify them.
func (p *Parser) ParseText(line string) *Measurement {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil
	}

	m := &Measurement{Raw: text}

	token := firstNumber(text)
	if token == "" {
		return m
	}
	value, err := decimal.NewFromString(token)
	if err != nil {
		// token scan and decimal grammar disagree; treat as no reading
		return m
	}
	m.Value = &value
	// a unit only accompanies a reading; a numberless line reports none,
	// whatever letters it happens to end in
	m.Unit = p.unitOf(text)
	return m
}

// firstNumber returns the first decimal numeral substring of text: an
// optional sign, digits, and an optional fractional part. Empty string when
// none is present.
func firstNumber(text string) string {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '+' && c != '-' && !isDigit(c) {
			continue
		}

		start := i
		j := i
		if c == '+' || c == '-' {
			j++
		}
		digits := 0
		for j < len(text) && isDigit(text[j]) {
			j++
			digits++
		}
		if digits == 0 {
			// bare sign, keep scanning after it
			continue
		}
		if j < len(text) && text[j] == '.' && j+1 < len(text) && isDigit(text[j+1]) {
			j++
			for j < len(text) && isDigit(text[j]) {
				j++
			}
		}
		return text[start:j]
	}
	return ""
}

// unitOf returns the run of alphabetic characters anchored at the end of
// text, or the parser's expected unit when there is none.
func (p *Parser) unitOf(text string) string {
	end := len(text)
	i := end
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsLetter(r) {
			break
		}
		i -= size
	}
	if i == end {
		return p.ExpectedUnit
	}
	return text[i:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
