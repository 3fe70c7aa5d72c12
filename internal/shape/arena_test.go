package shape

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestArenaAllocGet(t *testing.T) {
	a := NewArena()
	id := a.Alloc(NewSphere(mgl64.Vec3{1, 2, 3}, 0.5))

	if id == None {
		t.Fatal("expected non-zero id")
	}
	s, ok := a.Get(id)
	if !ok {
		t.Fatal("expected live shape")
	}
	if s.Radius != 0.5 || s.Center != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("unexpected shape %v", s)
	}
	if a.Len() != 1 {
		t.Errorf("expected 1 live shape, got %d", a.Len())
	}
}

func TestArenaReleaseInvalidatesHandle(t *testing.T) {
	a := NewArena()
	old := a.Alloc(NewSphere(mgl64.Vec3{}, 1))
	a.Release(old)

	if a.Valid(old) {
		t.Error("released handle still valid")
	}

	// the slot is reused but the old handle must not see the new shape
	fresh := a.Alloc(NewSphere(mgl64.Vec3{}, 2))
	if fresh == old {
		t.Fatal("handle reused after release")
	}
	if _, ok := a.Get(old); ok {
		t.Error("stale handle resolved to new shape")
	}
	if a.Len() != 1 {
		t.Errorf("expected 1 live shape, got %d", a.Len())
	}

	a.Release(old)
	if !a.Valid(fresh) {
		t.Error("releasing a stale handle destroyed the live shape")
	}
}

func TestArenaOwnership(t *testing.T) {
	a := NewArena()
	id := a.Alloc(NewSphere(mgl64.Vec3{}, 1))

	if a.Owner(id) != NoOwner {
		t.Error("new shape should be unowned")
	}
	if err := a.SetOwner(id, 7); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if err := a.SetOwner(id, 7); err != nil {
		t.Errorf("re-setting same owner should succeed: %v", err)
	}
	if err := a.SetOwner(id, 8); !errors.Is(err, ErrOwned) {
		t.Errorf("expected ErrOwned, got %v", err)
	}

	a.ClearOwner(id)
	if err := a.SetOwner(id, 8); err != nil {
		t.Errorf("owner change after clear: %v", err)
	}

	a.Release(id)
	if err := a.SetOwner(id, 8); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if a.Owner(id) != NoOwner {
		t.Error("stale handle reported an owner")
	}
}

func TestCollisionListCapacity(t *testing.T) {
	l := NewCollisionList(2)

	if !l.Add(CollisionInfo{}) || !l.Add(CollisionInfo{}) {
		t.Fatal("expected room for two collisions")
	}
	if l.Add(CollisionInfo{}) {
		t.Error("add past capacity succeeded")
	}
	if !l.Full() || l.Len() != 2 {
		t.Errorf("expected full list of 2, got %d", l.Len())
	}

	l.Clear()
	if l.Len() != 0 || l.Full() {
		t.Error("clear did not empty list")
	}

	unbounded := NewCollisionList(0)
	for i := 0; i < 100; i++ {
		if !unbounded.Add(CollisionInfo{}) {
			t.Fatalf("unbounded list refused add %d", i)
		}
	}
}

func TestArenaWorldFollowsPose(t *testing.T) {
	a := NewArena()
	id := a.Alloc(NewSphere(mgl64.Vec3{1, 0, 0}, 1))

	if err := a.SetPose(id, Pose{Translation: mgl64.Vec3{0, 5, 0}, Rotation: mgl64.QuatIdent()}); err != nil {
		t.Fatalf("set pose: %v", err)
	}
	w, ok := a.World(id)
	if !ok {
		t.Fatal("expected live shape")
	}
	if !w.Center.ApproxEqual(mgl64.Vec3{1, 5, 0}) {
		t.Errorf("world center = %v", w.Center)
	}
	local, _ := a.Get(id)
	if local.Center != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("local geometry changed: %v", local.Center)
	}
}

func TestArenaNewOwnerUnique(t *testing.T) {
	a := NewArena()
	seen := map[Owner]bool{}
	for i := 0; i < 10; i++ {
		o := a.NewOwner()
		if o == NoOwner || seen[o] {
			t.Fatalf("duplicate or zero owner %d", o)
		}
		seen[o] = true
	}
}
