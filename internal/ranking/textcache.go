package ranking

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
)

const defaultTextCacheSize = 4096

type textKey struct {
	id      uint64
	updated int64
}

// textCache memoizes the lower-cased word list of an item. Keys include
// updated_at so an edited listing is re-tokenized.
type textCache struct {
	lru *lru.Cache
}

func newTextCache(size int) *textCache {
	if size <= 0 {
		size = defaultTextCacheSize
	}
	c, _ := lru.New(size)
	return &textCache{lru: c}
}

func (c *textCache) words(item db.Item) []string {
	key := textKey{id: item.ID, updated: item.UpdatedAt.UnixNano()}
	if v, ok := c.lru.Get(key); ok {
		return v.([]string)
	}
	w := Tokenize(item.Name + " " + item.Category + " " + item.Description)
	c.lru.Add(key, w)
	return w
}

// Tokenize lower-cases s, splits it on anything that is not a letter or
// digit, drops words shorter than two runes and removes repeats.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
