package world

import "github.com/miniquest/miniquest/internal/geom"

// bodyIndex holds one collision rect per living enemy and npc. Order is
// insertion order so obstacle lists are deterministic.
type bodyIndex struct {
	ids   []EntityID
	rects []geom.Rect
	pos   map[EntityID]int
}

func newBodyIndex() *bodyIndex {
	return &bodyIndex{pos: make(map[EntityID]int)}
}

// add registers id. It reports false if id was already present.
func (b *bodyIndex) add(id EntityID, r geom.Rect) bool {
	if _, dup := b.pos[id]; dup {
		return false
	}
	b.pos[id] = len(b.ids)
	b.ids = append(b.ids, id)
	b.rects = append(b.rects, r)
	return true
}

// sync updates the rect of a registered id.
func (b *bodyIndex) sync(id EntityID, r geom.Rect) {
	if i, ok := b.pos[id]; ok {
		b.rects[i] = r
	}
}

// remove drops id. It reports false, changing nothing, if id was not
// registered.
func (b *bodyIndex) remove(id EntityID) bool {
	i, ok := b.pos[id]
	if !ok {
		return false
	}
	last := len(b.ids) - 1
	copy(b.ids[i:], b.ids[i+1:])
	copy(b.rects[i:], b.rects[i+1:])
	b.ids = b.ids[:last]
	b.rects = b.rects[:last]
	delete(b.pos, id)
	for j := i; j < last; j++ {
		b.pos[b.ids[j]] = j
	}
	return true
}

func (b *bodyIndex) has(id EntityID) bool {
	_, ok := b.pos[id]
	return ok
}

func (b *bodyIndex) len() int { return len(b.ids) }

// appendExcept appends every rect except the one registered for self.
func (b *bodyIndex) appendExcept(dst []geom.Rect, self EntityID) []geom.Rect {
	for i, id := range b.ids {
		if id != self {
			dst = append(dst, b.rects[i])
		}
	}
	return dst
}

func (b *bodyIndex) reset() {
	b.ids = b.ids[:0]
	b.rects = b.rects[:0]
	clear(b.pos)
}
