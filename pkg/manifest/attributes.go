package manifest

import (
	"time"

	"github.com/ndisidore/mtreespec/pkg/directive"
)

// Attributes is the typed view of a keyword list. Pointer fields are nil and
// string fields empty when the keyword is absent.
type Attributes struct {
	Type   directive.EntryType
	UID    *uint32
	Time   *time.Time
	Size   *uint64
	SHA256 string
	Link   string
}

// Resolve folds kws left to right; a later keyword overrides an earlier one
// of the same name.
func Resolve(kws []directive.Keyword) Attributes {
	var a Attributes
	for _, kw := range kws {
		switch k := kw.(type) {
		case directive.TypeKeyword:
			a.Type = k.Type
		case directive.UIDKeyword:
			uid := k.UID
			a.UID = &uid
		case directive.TimeKeyword:
			t := k.Time
			a.Time = &t
		case directive.SizeKeyword:
			size := k.Size
			a.Size = &size
		case directive.SHA256Keyword:
			a.SHA256 = k.Digest
		case directive.LinkKeyword:
			a.Link = k.Target
		}
	}
	return a
}
