// Package probing implements the open addressing table used at both levels of
// the n-gram index. Buckets are chosen with FNV-1a and collisions resolved by
// linear probing; removed entries leave tombstones until the next resize.
package probing

import "github.com/bastiangx/ngramserve/internal/hashing"

// Keyed is implemented by values stored in a Table.
type Keyed interface {
	comparable
	Key() string
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

type slot[V Keyed] struct {
	state slotState
	value V
}

const (
	growLoad   = 0.5
	shrinkLoad = 0.125
)

// Table is a linear probing hash table of V keyed by V.Key().
type Table[V Keyed] struct {
	slots    []slot[V]
	occupied int
}

// New allocates a table with capacity PrimeCapacity(requested).
func New[V Keyed](requested int) *Table[V] {
	return &Table[V]{slots: make([]slot[V], PrimeCapacity(requested))}
}

func (t *Table[V]) Capacity() int { return len(t.slots) }

// Len returns the number of live entries.
func (t *Table[V]) Len() int { return t.occupied }

func (t *Table[V]) Load() float64 {
	return float64(t.occupied) / float64(len(t.slots))
}

// Tombstones counts slots holding removed entries.
func (t *Table[V]) Tombstones() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].state == slotTombstone {
			n++
		}
	}
	return n
}

// probe walks at most Capacity() slots from the home bucket of key. It returns
// the bucket of a live entry with that key (or -1) and the first reusable slot
// seen on the way (or -1). A reusable slot is the first tombstone, or the empty
// slot that ended the walk.
func (t *Table[V]) probe(key string) (match, free int) {
	capacity := len(t.slots)
	home := hashing.FNV1a(key, capacity)
	free = -1
	for i := 0; i < capacity; i++ {
		b := home + i
		if b >= capacity {
			b -= capacity
		}
		s := &t.slots[b]
		switch s.state {
		case slotEmpty:
			if free < 0 {
				free = b
			}
			return -1, free
		case slotTombstone:
			if free < 0 {
				free = b
			}
		case slotOccupied:
			if s.value.Key() == key {
				return b, free
			}
		}
	}
	return -1, free
}

// InsertOrBump applies bump to the live entry stored under key, or stores the
// value returned by create when there is none. It reports the bucket used and
// whether a new entry was created.
func (t *Table[V]) InsertOrBump(key string, create func() V, bump func(V)) (int, bool, error) {
	match, free := t.probe(key)
	if match >= 0 {
		if bump != nil {
			bump(t.slots[match].value)
		}
		return match, false, nil
	}
	if free < 0 {
		return -1, false, TableFull{}
	}
	t.slots[free] = slot[V]{state: slotOccupied, value: create()}
	t.occupied++
	return free, true, nil
}

// Place stores v, used when moving entries between tables.
func (t *Table[V]) Place(v V) (int, error) {
	bucket, _, err := t.InsertOrBump(v.Key(), func() V { return v }, nil)
	return bucket, err
}

func (t *Table[V]) Find(key string) (V, bool) {
	if match, _ := t.probe(key); match >= 0 {
		return t.slots[match].value, true
	}
	var zero V
	return zero, false
}

// Remove tombstones the entry stored under key and returns it.
func (t *Table[V]) Remove(key string) (V, bool) {
	var zero V
	match, _ := t.probe(key)
	if match < 0 {
		return zero, false
	}
	v := t.slots[match].value
	t.slots[match] = slot[V]{state: slotTombstone}
	t.occupied--
	return v, true
}

// Each calls fn for every live entry in bucket order.
func (t *Table[V]) Each(fn func(V)) {
	for i := range t.slots {
		if t.slots[i].state == slotOccupied {
			fn(t.slots[i].value)
		}
	}
}

// Resize rehashes every live entry into PrimeCapacity(requested) slots and
// drops tombstones. On failure the table is left as it was.
func (t *Table[V]) Resize(requested int) error {
	old, oldOccupied := t.slots, t.occupied
	t.slots = make([]slot[V], PrimeCapacity(requested))
	t.occupied = 0
	for i := range old {
		if old[i].state != slotOccupied {
			continue
		}
		if _, err := t.Place(old[i].value); err != nil {
			t.slots, t.occupied = old, oldOccupied
			return err
		}
	}
	return nil
}

// GrowIfNeeded moves the table to the next size class once load exceeds 1/2.
func (t *Table[V]) GrowIfNeeded() (bool, error) {
	if t.Load() <= growLoad {
		return false, nil
	}
	return true, t.Resize(len(t.slots))
}

// ShrinkIfNeeded shrinks the table once load drops under 1/8, never below
// MinCapacity.
func (t *Table[V]) ShrinkIfNeeded() (bool, error) {
	if t.Load() >= shrinkLoad || len(t.slots) <= MinCapacity {
		return false, nil
	}
	return true, t.Resize(ShrinkTarget(len(t.slots)))
}
