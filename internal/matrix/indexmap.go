package matrix

// IndexMap is an immutable bidirectional mapping between keys and matrix
// positions. The zero value is an empty map.
type IndexMap[K comparable] struct {
	keys []K
	pos  map[K]int
}

// NewIndexMap assigns positions to keys in the order given. A key that
// appears more than once keeps its first position.
func NewIndexMap[K comparable](keys []K) IndexMap[K] {
	m := IndexMap[K]{
		keys: make([]K, 0, len(keys)),
		pos:  make(map[K]int, len(keys)),
	}
	for _, k := range keys {
		if _, ok := m.pos[k]; ok {
			continue
		}
		m.pos[k] = len(m.keys)
		m.keys = append(m.keys, k)
	}
	return m
}

func (m IndexMap[K]) Len() int { return len(m.keys) }

// Index returns the position of k.
func (m IndexMap[K]) Index(k K) (int, bool) {
	i, ok := m.pos[k]
	return i, ok
}

// Key returns the key at position i. It panics if i is out of range.
func (m IndexMap[K]) Key(i int) K { return m.keys[i] }

// Keys returns a copy of the keys in position order.
func (m IndexMap[K]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}
