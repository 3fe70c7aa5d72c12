package shape

import (
	"errors"
	"fmt"
)

var (
	// ErrStale indicates a handle whose slot was released.
	ErrStale = errors.New("shape: stale or unknown id")

	// ErrOwned indicates an attempt to claim a shape held by another owner.
	ErrOwned = errors.New("shape: already owned by another entity")
)

// ID is a handle into an Arena. The low 32 bits are the slot index plus
// one, the high 32 bits the slot generation.
type ID uint64

// None is the zero handle; it never names a shape.
const None ID = 0

func makeID(index int, gen uint32) ID {
	return ID(uint64(gen)<<32 | uint64(index+1))
}

func (id ID) index() int     { return int(uint32(id)) - 1 }
func (id ID) gen() uint32    { return uint32(id >> 32) }
func (id ID) IsNone() bool   { return id == None }
func (id ID) String() string { return fmt.Sprintf("%d:%d", id.index(), id.gen()) }

// Owner identifies the entity holding a shape.
type Owner uint64

const NoOwner Owner = 0

type slot struct {
	shape Shape
	pose  Pose
	owner Owner
	gen   uint32
	live  bool
}

// Arena owns shape storage. It is not safe for concurrent mutation;
// concurrent reads are fine while nothing allocates or releases.
type Arena struct {
	slots  []slot
	free   []int
	live   int
	owners Owner
}

func NewArena() *Arena {
	return &Arena{}
}

// NewOwner hands out a fresh owner identity scoped to this arena.
func (a *Arena) NewOwner() Owner {
	a.owners++
	return a.owners
}

// Alloc stores s in local space with an identity pose.
func (a *Arena) Alloc(s Shape) ID {
	return a.AllocOwned(s, NoOwner)
}

// AllocOwned allocates a slot that is born owned by o.
func (a *Arena) AllocOwned(s Shape, o Owner) ID {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = len(a.slots) - 1
	}
	sl := &a.slots[idx]
	sl.gen++
	sl.shape = s
	sl.pose = IdentityPose()
	sl.owner = o
	sl.live = true
	a.live++
	return makeID(idx, sl.gen)
}

// Release destroys the shape. Releasing a stale handle is a no-op.
func (a *Arena) Release(id ID) {
	sl := a.lookup(id)
	if sl == nil {
		return
	}
	sl.live = false
	sl.owner = NoOwner
	sl.shape = Shape{}
	sl.pose = Pose{}
	a.free = append(a.free, id.index())
	a.live--
}

func (a *Arena) lookup(id ID) *slot {
	i := id.index()
	if id == None || i < 0 || i >= len(a.slots) {
		return nil
	}
	sl := &a.slots[i]
	if !sl.live || sl.gen != id.gen() {
		return nil
	}
	return sl
}

func (a *Arena) Valid(id ID) bool {
	return a.lookup(id) != nil
}

func (a *Arena) Get(id ID) (Shape, bool) {
	sl := a.lookup(id)
	if sl == nil {
		return Shape{}, false
	}
	return sl.shape, true
}

// World returns the shape placed by its slot pose.
func (a *Arena) World(id ID) (Shape, bool) {
	sl := a.lookup(id)
	if sl == nil {
		return Shape{}, false
	}
	return sl.shape.Transformed(sl.pose), true
}

// SetPose moves the frame the shape is expressed in without touching its
// local geometry.
func (a *Arena) SetPose(id ID, p Pose) error {
	sl := a.lookup(id)
	if sl == nil {
		return fmt.Errorf("%w: %s", ErrStale, id)
	}
	sl.pose = p
	return nil
}

// Owner returns the back-reference of the shape, NoOwner when unset or
// when the handle is stale.
func (a *Arena) Owner(id ID) Owner {
	sl := a.lookup(id)
	if sl == nil {
		return NoOwner
	}
	return sl.owner
}

func (a *Arena) SetOwner(id ID, o Owner) error {
	sl := a.lookup(id)
	if sl == nil {
		return fmt.Errorf("%w: %s", ErrStale, id)
	}
	if sl.owner != NoOwner && sl.owner != o {
		return fmt.Errorf("%w: %s held by %d", ErrOwned, id, sl.owner)
	}
	sl.owner = o
	return nil
}

func (a *Arena) ClearOwner(id ID) {
	if sl := a.lookup(id); sl != nil {
		sl.owner = NoOwner
	}
}

// Len is the number of live shapes.
func (a *Arena) Len() int {
	return a.live
}
