package directive

import (
	_ "crypto/sha256" // registers the hash behind digest.SHA256
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

const _nanosPerSecond = 1_000_000_000

// Bounds of a representable instant: years -262143 through 262142, UTC.
var (
	_minUnix = time.Date(-262143, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	_maxUnix = time.Date(262142, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// entryType decodes one of the seven type literals. The whole
// non-whitespace run must match, so "directory" is not read as "dir".
func entryType(c cursor) (EntryType, cursor, error) {
	tok := c.span(notSpace)
	for _, t := range EntryTypes() {
		if tok == t.String() {
			return t, c.advance(len(tok)), nil
		}
	}
	return 0, c, c.fail(strings.Join(_entryTypeNames[TypeBlock:], "|"), ErrUnknownType)
}

// unsigned returns a decoder for a decimal digit run that must fit in an
// unsigned integer of the given bit size.
func unsigned(bitSize int) decoder[uint64] {
	return func(c cursor) (uint64, cursor, error) {
		digits := c.span(isDigit)
		if digits == "" {
			return 0, c, c.fail("decimal digits", ErrInvalidInteger)
		}
		n, err := strconv.ParseUint(digits, 10, bitSize)
		if err != nil {
			return 0, c, c.fail(
				fmt.Sprintf("unsigned %d-bit integer", bitSize),
				fmt.Errorf("%w: %w", ErrInvalidInteger, err),
			)
		}
		return n, c.advance(len(digits)), nil
	}
}

// timestamp decodes [+-]<seconds>.<nanoseconds> into a UTC instant.
func timestamp(c cursor) (time.Time, cursor, error) {
	start, sign := c, ""
	if c.hasPrefix("-") || c.hasPrefix("+") {
		sign = c.rest()[:1]
		c = c.advance(1)
	}

	digits := c.span(isDigit)
	if digits == "" {
		return time.Time{}, start, c.fail("seconds", ErrInvalidInteger)
	}
	sec, err := strconv.ParseInt(sign+digits, 10, 64)
	if err != nil {
		return time.Time{}, start, start.fail("signed 64-bit seconds", fmt.Errorf("%w: %w", ErrInvalidInteger, err))
	}
	c = c.advance(len(digits))

	if !c.hasPrefix(".") {
		return time.Time{}, start, c.fail(`"."`, ErrSyntax)
	}
	nsec, next, err := unsigned(32)(c.advance(1))
	if err != nil {
		return time.Time{}, start, err
	}

	t, err := instant(sec, nsec)
	if err != nil {
		return time.Time{}, start, start.fail("timestamp", err)
	}
	return t, next, nil
}

// instant combines seconds and nanoseconds, rejecting pairs that do not name
// a representable instant instead of normalising them.
func instant(sec int64, nsec uint64) (time.Time, error) {
	if nsec >= _nanosPerSecond {
		return time.Time{}, fmt.Errorf("%w: nanoseconds %d out of range", ErrInvalidTimestamp, nsec)
	}
	if sec < _minUnix || sec > _maxUnix {
		return time.Time{}, fmt.Errorf("%w: seconds %d out of range", ErrInvalidTimestamp, sec)
	}
	return time.Unix(sec, int64(nsec)).UTC(), nil
}

// sha256Hex decodes a lowercase hex SHA-256 digest.
func sha256Hex(c cursor) (string, cursor, error) {
	tok := c.span(notSpace)
	if err := digest.SHA256.Validate(tok); err != nil {
		return "", c, c.fail("64 lowercase hex characters", fmt.Errorf("%w: %w", ErrInvalidDigest, err))
	}
	return tok, c.advance(len(tok)), nil
}

// path decodes a symlink target. Every non-whitespace rune is accepted, so
// "../../foo.bar" and "/abs/target" come through verbatim.
func path(c cursor) (string, cursor, error) {
	tok := c.span(notSpace)
	if tok == "" {
		return "", c, c.fail("path", ErrSyntax)
	}
	return tok, c.advance(len(tok)), nil
}
