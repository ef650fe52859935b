package services

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformers carry state, so each call takes its own chain from the pool.
var accentChainPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	},
}

// Normalize canonicalizes a card title or a user query for comparison:
// compatibility decomposition, combining marks dropped, lower-cased.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	tr := accentChainPool.Get().(transform.Transformer)
	stripped, _, err := transform.String(tr, text)
	tr.Reset()
	accentChainPool.Put(tr)
	if err != nil {
		stripped = text
	}

	return strings.ToLower(stripped)
}
