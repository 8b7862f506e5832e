package directive

import (
	"fmt"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// EntryType is the kind of filesystem object an entry describes.
type EntryType uint8

// Entry types. The zero value is not a valid type.
const (
	TypeBlock EntryType = iota + 1
	TypeChar
	TypeDir
	TypeFifo
	TypeFile
	TypeLink
	TypeSocket
)

var _entryTypeNames = [...]string{
	TypeBlock:  "block",
	TypeChar:   "char",
	TypeDir:    "dir",
	TypeFifo:   "fifo",
	TypeFile:   "file",
	TypeLink:   "link",
	TypeSocket: "socket",
}

// EntryTypes returns every valid EntryType in declaration order.
func EntryTypes() []EntryType {
	return []EntryType{TypeBlock, TypeChar, TypeDir, TypeFifo, TypeFile, TypeLink, TypeSocket}
}

// Valid reports whether t is one of the seven named entry types.
func (t EntryType) Valid() bool {
	return t >= TypeBlock && t <= TypeSocket
}

func (t EntryType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("EntryType(%d)", uint8(t))
	}
	return _entryTypeNames[t]
}

// Keyword is a single name=value assignment. The concrete variants are
// TypeKeyword, UIDKeyword, TimeKeyword, SizeKeyword, SHA256Keyword and
// LinkKeyword; no other implementations exist.
type Keyword interface {
	fmt.Stringer
	// Name returns the canonical keyword name. Both sha256 spellings share
	// the name "sha256".
	Name() string
	isKeyword()
}

// Canonical keyword names.
const (
	KeywordType   = "type"
	KeywordUID    = "uid"
	KeywordTime   = "time"
	KeywordSize   = "size"
	KeywordSHA256 = "sha256"
	KeywordLink   = "link"
)

// TypeKeyword is type=<entry type>.
type TypeKeyword struct {
	Type EntryType
}

// UIDKeyword is uid=<uint32>.
type UIDKeyword struct {
	UID uint32
}

// TimeKeyword is time=<sec>.<nsec>. Time is always in UTC.
type TimeKeyword struct {
	Time time.Time
}

// SizeKeyword is size=<uint64>, a byte count.
type SizeKeyword struct {
	Size uint64
}

// SHA256Keyword is sha256=<hex> (or sha256digest=<hex>). Digest holds the
// 64 lowercase hex characters without an algorithm prefix.
type SHA256Keyword struct {
	Digest string
}

// LinkKeyword is link=<path>, the verbatim symlink target.
type LinkKeyword struct {
	Target string
}

func (TypeKeyword) isKeyword()   {}
func (UIDKeyword) isKeyword()    {}
func (TimeKeyword) isKeyword()   {}
func (SizeKeyword) isKeyword()   {}
func (SHA256Keyword) isKeyword() {}
func (LinkKeyword) isKeyword()   {}

// Name implements Keyword.
func (TypeKeyword) Name() string { return KeywordType }

// Name implements Keyword.
func (UIDKeyword) Name() string { return KeywordUID }

// Name implements Keyword.
func (TimeKeyword) Name() string { return KeywordTime }

// Name implements Keyword.
func (SizeKeyword) Name() string { return KeywordSize }

// Name implements Keyword.
func (SHA256Keyword) Name() string { return KeywordSHA256 }

// Name implements Keyword.
func (LinkKeyword) Name() string { return KeywordLink }

func (k TypeKeyword) String() string { return KeywordType + "=" + k.Type.String() }

func (k UIDKeyword) String() string { return fmt.Sprintf("%s=%d", KeywordUID, k.UID) }

func (k TimeKeyword) String() string {
	return fmt.Sprintf("%s=%d.%09d", KeywordTime, k.Time.Unix(), k.Time.Nanosecond())
}

func (k SizeKeyword) String() string { return fmt.Sprintf("%s=%d", KeywordSize, k.Size) }

func (k SHA256Keyword) String() string { return KeywordSHA256 + "=" + k.Digest }

func (k LinkKeyword) String() string { return KeywordLink + "=" + k.Target }

// OCIDigest returns the value as an algorithm-prefixed digest
// ("sha256:<hex>").
func (k SHA256Keyword) OCIDigest() digest.Digest {
	return digest.NewDigestFromEncoded(digest.SHA256, k.Digest)
}

// Command is one decoded directive line: either Set or Unset.
type Command interface {
	fmt.Stringer
	isCommand()
}

// Set assigns keywords. Keywords keeps the source order, duplicates included.
type Set struct {
	Keywords []Keyword
}

// Unset clears every previously set keyword.
type Unset struct{}

func (Set) isCommand()   {}
func (Unset) isCommand() {}

func (s Set) String() string {
	if len(s.Keywords) == 0 {
		return "/set"
	}
	return "/set " + joinKeywords(s.Keywords)
}

func (Unset) String() string { return "/unset" }

// Entry is a path line together with the keywords written on it.
type Entry struct {
	Path     string
	Keywords []Keyword
}

func (e Entry) String() string {
	if len(e.Keywords) == 0 {
		return e.Path
	}
	return e.Path + " " + joinKeywords(e.Keywords)
}

func joinKeywords(kws []Keyword) string {
	parts := make([]string, len(kws))
	for i, kw := range kws {
		parts[i] = kw.String()
	}
	return strings.Join(parts, " ")
}
