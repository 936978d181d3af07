package catalog

import (
	"strings"

	"cachemaker/internal/model"

	"github.com/agnivade/levenshtein"
)

// Catalog is the fixed set of collections shown side by side.
type Catalog struct {
	order       []ID
	collections map[ID]*Collection
}

func New(ids ...ID) *Catalog {
	c := &Catalog{collections: map[ID]*Collection{}}
	for _, id := range ids {
		if _, ok := c.collections[id]; ok {
			continue
		}
		c.order = append(c.order, id)
		c.collections[id] = NewCollection(id, nil)
	}
	return c
}

// NewStandard seeds the in-progress list; completed starts empty.
func NewStandard(inProgress []model.Geocache) *Catalog {
	c := New(InProgress, Completed)
	c.collections[InProgress] = NewCollection(InProgress, inProgress)
	return c
}

func (c *Catalog) Collection(id ID) (*Collection, bool) {
	col, ok := c.collections[id]
	return col, ok
}

// Lookup is like Collection but reports a missing id as UnknownCollectionError.
func (c *Catalog) Lookup(id ID) (*Collection, error) {
	col, ok := c.collections[id]
	if !ok {
		return nil, UnknownCollectionError{ID: id}
	}
	return col, nil
}

func (c *Catalog) IDs() []ID { return append([]ID(nil), c.order...) }

// Snapshot returns a copy of every collection keyed by id.
func (c *Catalog) Snapshot() map[ID][]model.Geocache {
	out := make(map[ID][]model.Geocache, len(c.order))
	for _, id := range c.order {
		out[id] = c.collections[id].Items()
	}
	return out
}

// Total counts items across all collections.
func (c *Catalog) Total() int {
	n := 0
	for _, id := range c.order {
		n += c.collections[id].Len()
	}
	return n
}

// SimilarName returns the existing name closest to name (case-insensitive)
// when it is within maxDistance edits. Exact duplicates count as similar.
func (c *Catalog) SimilarName(name string, maxDistance int) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	best := ""
	bestDist := maxDistance + 1
	for _, id := range c.order {
		for _, it := range c.collections[id].items {
			d := levenshtein.ComputeDistance(needle, strings.ToLower(strings.TrimSpace(it.Name)))
			if d < bestDist {
				best = it.Name
				bestDist = d
			}
		}
	}
	if bestDist > maxDistance {
		return "", false
	}
	return best, true
}
