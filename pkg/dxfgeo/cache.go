package dxfgeo

import (
	"container/list"
	"sort"
	"strings"
)

// previewKey identifies one cached preview computation: the feature-set
// identity, the active reference system, and the visible-layer set.
// Any change to the triple misses the cache and recomputes.
type previewKey struct {
	setID  uint64
	system ReferenceSystem
	layers string
}

// layerKey canonicalizes a visible-layer set so ordering differences in
// the options slice do not defeat the cache.
func layerKey(layers []string) string {
	if len(layers) == 0 {
		return ""
	}
	sorted := append([]string(nil), layers...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// previewCache keeps recent preview computations with LRU eviction, so
// toggling between two layer sets or reference systems does not redo the
// whole transform/sample/group pass each time.
type previewCache struct {
	maxEntries int
	entries    map[previewKey]*list.Element
	lru        *list.List // most recent at front
	hits       int
	misses     int
}

type cacheItem struct {
	key         previewKey
	collections *Collections
}

func newPreviewCache(maxEntries int) *previewCache {
	return &previewCache{
		maxEntries: maxEntries,
		entries:    make(map[previewKey]*list.Element),
		lru:        list.New(),
	}
}

func (c *previewCache) get(key previewKey) (*Collections, bool) {
	if el, ok := c.entries[key]; ok {
		c.lru.MoveToFront(el)
		c.hits++
		return el.Value.(*cacheItem).collections, true
	}
	c.misses++
	return nil, false
}

func (c *previewCache) add(key previewKey, collections *Collections) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheItem).collections = collections
		c.lru.MoveToFront(el)
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheItem{key: key, collections: collections})
	for c.lru.Len() > c.maxEntries {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheItem).key)
	}
}

func (c *previewCache) clear() {
	c.entries = make(map[previewKey]*list.Element)
	c.lru.Init()
}
