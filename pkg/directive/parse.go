// Package directive decodes mtree-style specification lines: /set and
// /unset directives and path entries carrying type, uid, time, size, sha256
// and link keywords.
//
// Every function here is a pure function of its input line and is safe for
// concurrent use.
package directive

// _sentinel marks the start of a directive line.
const _sentinel = "/"

// ParseCommand decodes a directive line: "/unset" or "/set" followed by one
// or more whitespace-separated keywords. The whole line must be consumed.
func ParseCommand(line string) (Command, error) {
	c := cursor{src: line}
	if !c.hasPrefix(_sentinel) {
		return nil, c.fail(`"`+_sentinel+`"`, ErrSyntax)
	}
	c = c.advance(len(_sentinel))

	var cmd Command
	switch {
	case c.hasPrefix("unset"):
		cmd, c = Unset{}, c.advance(len("unset"))
	case c.hasPrefix("set"):
		next, err := c.advance(len("set")).whitespace()
		if err != nil {
			return nil, err
		}
		kws, rest, err := keywords(next)
		if err != nil {
			return nil, err
		}
		if len(kws) == 0 {
			return nil, next.fail("keyword", ErrSyntax)
		}
		cmd, c = Set{Keywords: kws}, rest
	default:
		return nil, c.fail(`"set" or "unset"`, ErrSyntax)
	}

	if err := c.end(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ParseKeywords decodes a whitespace-separated keyword list, possibly empty,
// preserving source order and duplicates.
func ParseKeywords(s string) ([]Keyword, error) {
	kws, c, err := keywords(cursor{src: s})
	if err != nil {
		return nil, err
	}
	if err := c.end(); err != nil {
		return nil, err
	}
	return kws, nil
}

// ParseKeyword decodes exactly one name=value pair.
func ParseKeyword(s string) (Keyword, error) {
	kw, c, err := keyword(cursor{src: s})
	if err != nil {
		return nil, err
	}
	if err := c.end(); err != nil {
		return nil, err
	}
	return kw, nil
}

// ParseEntry decodes an entry line: a path followed by zero or more
// keywords. The path is the leading non-whitespace run and may not begin
// with the directive sentinel.
func ParseEntry(line string) (Entry, error) {
	c := cursor{src: line}
	p := c.span(notSpace)
	if p == "" || c.hasPrefix(_sentinel) {
		return Entry{}, c.fail("path", ErrSyntax)
	}
	c = c.advance(len(p))
	if c.eof() {
		return Entry{Path: p, Keywords: []Keyword{}}, nil
	}

	next, err := c.whitespace()
	if err != nil {
		return Entry{}, err
	}
	kws, rest, err := keywords(next)
	if err != nil {
		return Entry{}, err
	}
	if len(kws) == 0 {
		// Only trailing white space followed the path.
		return Entry{}, c.end()
	}
	if err := rest.end(); err != nil {
		return Entry{}, err
	}
	return Entry{Path: p, Keywords: kws}, nil
}
