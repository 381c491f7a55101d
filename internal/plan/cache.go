package plan

import (
	"encoding/json"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// DefaultCacheSize bounds the number of compiled plans kept per store.
const DefaultCacheSize = 256

// Cache memoizes compiled plans keyed by a canonical fingerprint of the
// query directives. Plans are immutable once compiled, so cached nodes are
// shared freely across queries.
type Cache struct {
	plans *lru.Cache[string, *Node]
}

// NewCache creates a plan cache holding at most size plans.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes.
	c, _ := lru.New[string, *Node](size)
	return &Cache{plans: c}
}

// Compile returns the cached plan for q, compiling and caching on miss.
// Queries whose directives cannot be fingerprinted bypass the cache.
func (c *Cache) Compile(s *types.Schema, m *types.Model, q types.Query, fallback types.Strategy) (*Node, error) {
	key, ok := fingerprint(m.Name, q, fallback)
	if !ok {
		return Compile(s, m, q, fallback)
	}
	if node, ok := c.plans.Get(key); ok {
		return node, nil
	}

	node, err := Compile(s, m, q, fallback)
	if err != nil {
		return nil, err
	}
	c.plans.Add(key, node)
	return node, nil
}

// Len returns the number of cached plans.
func (c *Cache) Len() int {
	return c.plans.Len()
}

// fingerprint renders the plan-relevant parts of a query as a stable
// string. Directives go through their canonical JSON codec, which sorts
// entries and keeps value types distinct, so nested where values of
// different types never share a key. Top-level where values are bound as
// SQL arguments and are keyed by field name only. Returns false when a
// directive holds a value JSON cannot encode.
func fingerprint(model string, q types.Query, fallback types.Strategy) (string, bool) {
	sel, err := json.Marshal(q.Select)
	if err != nil {
		return "", false
	}
	inc, err := json.Marshal(q.Include)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(model)
	b.WriteByte('|')
	b.WriteString(string(fallback))
	b.WriteByte('|')
	b.WriteString(string(q.Strategy))
	b.WriteByte('|')
	writeWhereKeys(&b, q.Where)
	b.WriteByte('|')
	b.Write(sel)
	b.WriteByte('|')
	b.Write(inc)
	return b.String(), true
}

func writeWhereKeys(b *strings.Builder, w types.Where) {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString(strings.Join(keys, ","))
}
