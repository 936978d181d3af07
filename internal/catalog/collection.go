package catalog

import (
	"cachemaker/internal/model"
)

// ID names a collection.
type ID string

const (
	InProgress ID = "in-progress"
	Completed  ID = "completed"
)

func (id ID) Title() string {
	switch id {
	case InProgress:
		return "In Progress"
	case Completed:
		return "Completed"
	default:
		return string(id)
	}
}

// Collection is an ordered list of geocaches. Indices are always contiguous
// [0, Len()). Positions are the only identity an item has.
type Collection struct {
	id    ID
	items []model.Geocache
}

func NewCollection(id ID, items []model.Geocache) *Collection {
	return &Collection{id: id, items: append([]model.Geocache(nil), items...)}
}

func (c *Collection) ID() ID { return c.id }

func (c *Collection) Len() int { return len(c.items) }

func (c *Collection) ItemAt(index int) (model.Geocache, error) {
	if index < 0 || index >= len(c.items) {
		return model.Geocache{}, IndexOutOfRangeError{Op: "item at", Index: index, Len: len(c.items)}
	}
	return c.items[index], nil
}

// Items returns a copy of the current sequence.
func (c *Collection) Items() []model.Geocache {
	return append([]model.Geocache(nil), c.items...)
}

// Insert places item at index, shifting later items right. index may equal
// Len() to append.
func (c *Collection) Insert(item model.Geocache, index int) error {
	if index < 0 || index > len(c.items) {
		return IndexOutOfRangeError{Op: "insert", Index: index, Len: len(c.items)}
	}
	c.items = append(c.items, model.Geocache{})
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = item
	return nil
}

// RemoveAt deletes and returns the item at index, shifting later items left.
func (c *Collection) RemoveAt(index int) (model.Geocache, error) {
	if index < 0 || index >= len(c.items) {
		return model.Geocache{}, IndexOutOfRangeError{Op: "remove", Index: index, Len: len(c.items)}
	}
	item := c.items[index]
	copy(c.items[index:], c.items[index+1:])
	c.items[len(c.items)-1] = model.Geocache{}
	c.items = c.items[:len(c.items)-1]
	return item, nil
}

// MoveTo removes the item at from and reinserts it at to. Both indices must be
// within the pre-move bounds; to is applied to the sequence after removal, so
// moving 0 to 2 in [A B C D] gives [B C A D].
func (c *Collection) MoveTo(from, to int) error {
	n := len(c.items)
	if from < 0 || from >= n {
		return IndexOutOfRangeError{Op: "move from", Index: from, Len: n}
	}
	if to < 0 || to >= n {
		return IndexOutOfRangeError{Op: "move to", Index: to, Len: n}
	}
	if from == to {
		return nil
	}
	item := c.items[from]
	if from < to {
		copy(c.items[from:to], c.items[from+1:to+1])
	} else {
		copy(c.items[to+1:from+1], c.items[to:from])
	}
	c.items[to] = item
	return nil
}
