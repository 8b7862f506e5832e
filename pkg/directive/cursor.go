package directive

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// cursor is an immutable position in a line. Decoders take a cursor and
// return the advanced one; on failure they hand back the cursor they were
// given, so a failed alternative never consumes input.
type cursor struct {
	src string
	pos int
}

// decoder recognizes a T at the cursor.
type decoder[T any] func(c cursor) (T, cursor, error)

func (c cursor) rest() string { return c.src[c.pos:] }

func (c cursor) eof() bool { return c.pos >= len(c.src) }

func (c cursor) hasPrefix(lit string) bool { return strings.HasPrefix(c.rest(), lit) }

func (c cursor) advance(n int) cursor {
	c.pos += n
	return c
}

// span returns the longest prefix of the remaining input whose runes all
// satisfy pred.
func (c cursor) span(pred func(rune) bool) string {
	rest := c.rest()
	if i := strings.IndexFunc(rest, func(r rune) bool { return !pred(r) }); i >= 0 {
		return rest[:i]
	}
	return rest
}

// token is the offending text reported in errors: the run up to the next
// whitespace, or the single rune at the cursor when that run is empty.
func (c cursor) token() string {
	if tok := c.span(notSpace); tok != "" {
		return tok
	}
	if c.eof() {
		return ""
	}
	_, size := utf8.DecodeRuneInString(c.rest())
	return c.rest()[:size]
}

func (c cursor) fail(expected string, err error) *ParseError {
	return &ParseError{Offset: c.pos, Expected: expected, Found: c.token(), Err: err}
}

// end requires that all input has been consumed.
func (c cursor) end() error {
	if c.eof() {
		return nil
	}
	return c.fail("end of input", ErrTrailingInput)
}

// whitespace consumes one mandatory run of white space.
func (c cursor) whitespace() (cursor, error) {
	ws := c.span(unicode.IsSpace)
	if ws == "" {
		return c, c.fail("whitespace", ErrSyntax)
	}
	return c.advance(len(ws)), nil
}

func notSpace(r rune) bool { return !unicode.IsSpace(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNameRune(r rune) bool { return (r >= 'a' && r <= 'z') || isDigit(r) }
