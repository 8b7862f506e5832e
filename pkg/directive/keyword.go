package directive

import (
	"fmt"
	"time"
)

// keywordDecoder pairs a keyword spelling with the decoder for its value.
type keywordDecoder struct {
	name  string
	value decoder[Keyword]
}

// _keywords is tried in order and the first match wins. sha256digest stays
// ahead of sha256 so the longer spelling is never cut short.
var _keywords = []keywordDecoder{
	{name: "type", value: mapValue(entryType, func(t EntryType) Keyword { return TypeKeyword{Type: t} })},
	{name: "uid", value: mapValue(unsigned(32), func(n uint64) Keyword { return UIDKeyword{UID: uint32(n)} })},
	{name: "time", value: mapValue(timestamp, func(t time.Time) Keyword { return TimeKeyword{Time: t} })},
	{name: "size", value: mapValue(unsigned(64), func(n uint64) Keyword { return SizeKeyword{Size: n} })},
	{name: "sha256digest", value: mapValue(sha256Hex, func(d string) Keyword { return SHA256Keyword{Digest: d} })},
	{name: "sha256", value: mapValue(sha256Hex, func(d string) Keyword { return SHA256Keyword{Digest: d} })},
	{name: "link", value: mapValue(path, func(p string) Keyword { return LinkKeyword{Target: p} })},
}

func mapValue[T any](d decoder[T], fn func(T) Keyword) decoder[Keyword] {
	return func(c cursor) (Keyword, cursor, error) {
		v, next, err := d(c)
		if err != nil {
			return nil, c, err
		}
		return fn(v), next, nil
	}
}

// keyword decodes a single name=value pair.
func keyword(c cursor) (Keyword, cursor, error) {
	for _, kd := range _keywords {
		if !c.hasPrefix(kd.name + "=") {
			continue
		}
		kw, next, err := kd.value(c.advance(len(kd.name) + 1))
		if err != nil {
			return nil, c, err
		}
		return kw, next, nil
	}

	name := c.span(isNameRune)
	switch {
	case name == "":
		return nil, c, c.fail("keyword", ErrSyntax)
	case isKnownKeyword(name):
		return nil, c, c.advance(len(name)).fail(`"="`, ErrSyntax)
	default:
		return nil, c, c.fail("keyword", fmt.Errorf("%w: %q", ErrUnknownKeyword, name))
	}
}

func isKnownKeyword(name string) bool {
	for _, kd := range _keywords {
		if kd.name == name {
			return true
		}
	}
	return false
}

// keywords decodes zero or more keywords separated by single whitespace
// runs. It stops before a separator that is not followed by more input and
// after a keyword that is not followed by a separator; the caller decides
// whether what remains is acceptable. A separator followed by text that is
// not a keyword is an error.
func keywords(c cursor) ([]Keyword, cursor, error) {
	kws := []Keyword{}
	for {
		at := c
		if len(kws) > 0 {
			next, err := c.whitespace()
			if err != nil {
				return kws, c, nil
			}
			at = next
		}
		if at.eof() {
			return kws, c, nil
		}
		kw, next, err := keyword(at)
		if err != nil {
			return nil, c, err
		}
		kws = append(kws, kw)
		c = next
	}
}
