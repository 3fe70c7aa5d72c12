package shape

import "github.com/go-gl/mathgl/mgl64"

// CollisionInfo records an overlap between two shapes. A side that was
// synthesized for a query (and never entered an arena) is None.
type CollisionInfo struct {
	ShapeA       ID
	ShapeB       ID
	Penetration  mgl64.Vec3 // how far A reaches into B, pointing from A toward B
	ContactPoint mgl64.Vec3
}

func (c CollisionInfo) Depth() float64 {
	return c.Penetration.Len()
}

// CollisionList accumulates collisions up to a fixed capacity. A zero
// capacity means unbounded.
type CollisionList struct {
	items    []CollisionInfo
	capacity int
}

func NewCollisionList(capacity int) *CollisionList {
	if capacity < 0 {
		capacity = 0
	}
	return &CollisionList{items: make([]CollisionInfo, 0, min(capacity, 64)), capacity: capacity}
}

// Add appends c and reports whether there was room for it.
func (l *CollisionList) Add(c CollisionInfo) bool {
	if l.Full() {
		return false
	}
	l.items = append(l.items, c)
	return true
}

func (l *CollisionList) Full() bool {
	return l.capacity > 0 && len(l.items) >= l.capacity
}

func (l *CollisionList) Len() int               { return len(l.items) }
func (l *CollisionList) Cap() int               { return l.capacity }
func (l *CollisionList) At(i int) CollisionInfo { return l.items[i] }
func (l *CollisionList) Clear()                 { l.items = l.items[:0] }

// All returns a copy of the recorded collisions.
func (l *CollisionList) All() []CollisionInfo {
	out := make([]CollisionInfo, len(l.items))
	copy(out, l.items)
	return out
}
