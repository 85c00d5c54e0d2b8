package spawn

import (
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/registry"
)

// Slot is a bench position enemies are assigned to for targeting.
type Slot struct {
	Column     int  `yaml:"column"`
	RowFromTop int  `yaml:"row_from_top"`
	Locked     bool `yaml:"locked"`

	occupant board.ID
}

// Occupant returns the enemy holding the slot, or 0.
func (s *Slot) Occupant() board.ID {
	return s.occupant
}

// Bench is the slot table.
type Bench struct {
	slots []Slot
	index map[board.ID]int
}

// NewBench creates a bench from slot metadata.
func NewBench(slots []Slot) *Bench {
	b := &Bench{
		slots: make([]Slot, len(slots)),
		index: make(map[board.ID]int),
	}
	copy(b.slots, slots)
	for i := range b.slots {
		b.slots[i].occupant = 0
	}
	return b
}

// Len returns the number of slots.
func (b *Bench) Len() int {
	return len(b.slots)
}

// Slot returns slot i.
func (b *Bench) Slot(i int) (*Slot, bool) {
	if i < 0 || i >= len(b.slots) {
		return nil, false
	}
	return &b.slots[i], true
}

// Reserve binds e to a free slot, preferring one whose column matches the
// enemy's. Returns -1 when every slot is taken or locked.
func (b *Bench) Reserve(e *entity.Enemy) int {
	if i, ok := b.index[e.ID]; ok {
		return i
	}
	pick := -1
	for i := range b.slots {
		s := &b.slots[i]
		if s.Locked || s.occupant != 0 {
			continue
		}
		if s.Column == e.Pos.X {
			pick = i
			break
		}
		if pick < 0 {
			pick = i
		}
	}
	if pick < 0 {
		return -1
	}
	b.bind(e, pick)
	return pick
}

// Assign binds e to slot i if it is free. Used when restoring a run.
func (b *Bench) Assign(e *entity.Enemy, i int) bool {
	s, ok := b.Slot(i)
	if !ok || s.Locked || s.occupant != 0 {
		return false
	}
	b.bind(e, i)
	return true
}

func (b *Bench) bind(e *entity.Enemy, i int) {
	b.slots[i].occupant = e.ID
	b.index[e.ID] = i
	e.Slot = i
}

// Release frees the slot held by e.
func (b *Bench) Release(e *entity.Enemy) {
	i, ok := b.index[e.ID]
	if !ok {
		return
	}
	b.slots[i].occupant = 0
	delete(b.index, e.ID)
	e.Slot = -1
}

// SetLocked locks or unlocks slot i. Locking does not evict an occupant.
func (b *Bench) SetLocked(i int, locked bool) {
	if s, ok := b.Slot(i); ok {
		s.Locked = locked
	}
}

// SlotOf returns the slot metadata bound to e.
func (b *Bench) SlotOf(e *entity.Enemy) (registry.SlotInfo, bool) {
	i, ok := b.index[e.ID]
	if !ok {
		return registry.SlotInfo{}, false
	}
	s := b.slots[i]
	return registry.SlotInfo{Index: i, Column: s.Column, RowFromTop: s.RowFromTop}, true
}

// Occupied returns the number of bound slots.
func (b *Bench) Occupied() int {
	return len(b.index)
}
