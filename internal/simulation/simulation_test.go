package simulation_test

import (
	"context"
	"errors"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/shapesim/internal/entity"
	"github.com/san-kum/shapesim/internal/shape"
	"github.com/san-kum/shapesim/internal/simulation"
)

type countingMetric struct {
	observed int
	contacts int
}

func (m *countingMetric) Name() string { return "count" }

func (m *countingMetric) Observe(rec simulation.StepRecord) {
	m.observed++
	m.contacts += len(rec.Contacts)
}

func (m *countingMetric) Value() float64 { return float64(m.contacts) }
func (m *countingMetric) Reset()         { m.observed, m.contacts = 0, 0 }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var _ = Describe("Simulation", func() {
	var (
		arena *shape.Arena
		sim   *simulation.Simulation
		ctx   context.Context
	)

	BeforeEach(func() {
		arena = shape.NewArena()
		cfg := simulation.DefaultConfig()
		cfg.Dt = 0.1
		cfg.Steps = 10
		sim = simulation.New(cfg, arena, quietLogger())
		ctx = context.Background()
	})

	sphereAt := func(x float64, r float64) *entity.Entity {
		e := entity.New(arena, entity.SphereBuilder{Radius: r})
		e.SetTranslation(mgl64.Vec3{x, 0, 0})
		return e
	}

	Describe("attachment", func() {
		It("builds shapes and sets the back-reference on add", func() {
			e := sphereAt(0, 1)
			Expect(e.ShapesAreDirty()).To(BeTrue())

			Expect(sim.Add(e)).To(Succeed())
			Expect(e.ShapesAreDirty()).To(BeFalse())
			Expect(e.Simulation()).To(BeIdenticalTo(sim))
			Expect(sim.Contains(e)).To(BeTrue())
			for _, id := range e.Shapes() {
				Expect(arena.Owner(id)).To(Equal(e.ID()))
			}
		})

		It("rejects duplicates and entities hosted elsewhere", func() {
			e := sphereAt(0, 1)
			Expect(sim.Add(e)).To(Succeed())
			Expect(errors.Is(sim.Add(e), simulation.ErrDuplicate)).To(BeTrue())

			other := simulation.New(simulation.DefaultConfig(), arena, quietLogger())
			Expect(errors.Is(other.Add(e), entity.ErrAttached)).To(BeTrue())
			Expect(other.Contains(e)).To(BeFalse())
		})

		It("rejects entities from another arena", func() {
			e := entity.New(shape.NewArena(), entity.SphereBuilder{Radius: 1})
			Expect(errors.Is(sim.Add(e), entity.ErrForeignArena)).To(BeTrue())
			Expect(e.Simulation()).To(BeNil())
		})

		It("ignores hosts it did not issue", func() {
			e := sphereAt(0, 1)
			Expect(sim.Add(e)).To(Succeed())

			Expect(errors.Is(entity.NewHost(sim).Detach(e), entity.ErrForeignHost)).To(BeTrue())
			Expect(e.Simulation()).To(BeIdenticalTo(sim))

			loose := sphereAt(5, 1)
			Expect(errors.Is(entity.NewHost(sim).Attach(loose), entity.ErrForeignHost)).To(BeTrue())
			Expect(loose.Simulation()).To(BeNil())

			Expect(sim.Remove(e)).To(Succeed())
			Expect(sim.Contains(e)).To(BeFalse())
		})

		It("refuses to destroy a hosted entity", func() {
			e := sphereAt(0, 1)
			f := sphereAt(1, 1)
			Expect(sim.Add(e)).To(Succeed())
			Expect(sim.Add(f)).To(Succeed())

			Expect(errors.Is(e.Destroy(), entity.ErrHosted)).To(BeTrue())
			Expect(e.Shapes()).To(HaveLen(1))

			Expect(sim.Remove(e)).To(Succeed())
			Expect(e.Destroy()).To(Succeed())
			rec, err := sim.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Contacts).To(BeEmpty())
			Expect(e.Shapes()).To(BeEmpty())
		})

		It("clears the back-reference on remove but keeps the shapes", func() {
			e := sphereAt(0, 1)
			Expect(sim.Add(e)).To(Succeed())
			Expect(sim.Remove(e)).To(Succeed())

			Expect(e.Simulation()).To(BeNil())
			Expect(sim.Contains(e)).To(BeFalse())
			Expect(e.Shapes()).To(HaveLen(1))
			Expect(errors.Is(sim.Remove(e), simulation.ErrNotHosted)).To(BeTrue())
		})
	})

	Describe("stepping", func() {
		It("reports contacts resolved to both entities", func() {
			a := sphereAt(0, 1)
			b := sphereAt(1.5, 1)
			c := sphereAt(50, 1)
			for _, e := range []*entity.Entity{a, b, c} {
				Expect(sim.Add(e)).To(Succeed())
			}

			rec, err := sim.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Contacts).To(HaveLen(1))
			Expect(rec.Contacts[0].A).To(BeIdenticalTo(a))
			Expect(rec.Contacts[0].B).To(BeIdenticalTo(b))
			Expect(rec.Contacts[0].Depth).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("skips disabled entities", func() {
			a := sphereAt(0, 1)
			b := sphereAt(1, 1)
			Expect(sim.Add(a)).To(Succeed())
			Expect(sim.Add(b)).To(Succeed())
			b.SetEnableShapes(false)

			rec, err := sim.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Contacts).To(BeEmpty())
		})

		It("moves entities with velocity until they meet", func() {
			a := sphereAt(0, 0.5)
			b := sphereAt(5, 0.5)
			Expect(sim.Add(a)).To(Succeed())
			Expect(sim.Add(b)).To(Succeed())
			Expect(sim.SetVelocity(b, mgl64.Vec3{-10, 0, 0})).To(Succeed())

			result, err := sim.Run(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(5))
			Expect(b.Translation().X()).To(BeNumerically("~", 0, 1e-9))

			counts := result.CollisionCounts()
			Expect(counts[0]).To(BeZero())
			Expect(counts[4]).To(Equal(1.0))
			Expect(sim.Time()).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("rebuilds baked shapes that moved", func() {
			wall := entity.New(arena, entity.StaticBuilder{Parts: []shape.Shape{shape.NewSphere(mgl64.Vec3{}, 1)}})
			Expect(sim.Add(wall)).To(Succeed())
			Expect(sim.SetVelocity(wall, mgl64.Vec3{0, 1, 0})).To(Succeed())

			_, err := sim.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(wall.ShapesAreDirty()).To(BeFalse())

			hit, ok := sim.FindRayIntersection(mgl64.Vec3{-5, 0.1, 0}, mgl64.Vec3{1, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(hit.Entity).To(BeIdenticalTo(wall))
		})

		It("flags a full collision list", func() {
			cfg := simulation.DefaultConfig()
			cfg.MaxCollisions = 1
			small := simulation.New(cfg, arena, quietLogger())
			for i := 0; i < 4; i++ {
				Expect(small.Add(sphereAt(float64(i)*0.1, 1))).To(Succeed())
			}

			rec, err := small.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Overflowed).To(BeTrue())
			Expect(rec.Contacts).To(HaveLen(1))
		})

		It("feeds metrics and stops on cancellation", func() {
			m := &countingMetric{}
			sim.AddMetric(m)
			Expect(sim.Add(sphereAt(0, 1))).To(Succeed())
			Expect(sim.Add(sphereAt(1, 1))).To(Succeed())

			result, err := sim.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.observed).To(Equal(10))
			Expect(result.Metrics).To(HaveKeyWithValue("count", 10.0))

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = sim.Run(cancelled, 3)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())

			var stepErr *simulation.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
		})

		It("refuses an invalid config", func() {
			cfg := simulation.DefaultConfig()
			cfg.Dt = 0
			bad := simulation.New(cfg, arena, quietLogger())
			_, err := bad.Run(ctx, 1)
			Expect(errors.Is(err, simulation.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("queries", func() {
		It("returns the globally nearest ray hit", func() {
			near := sphereAt(5, 1)
			far := sphereAt(10, 1)
			Expect(sim.Add(far)).To(Succeed())
			Expect(sim.Add(near)).To(Succeed())

			hit, ok := sim.FindRayIntersection(mgl64.Vec3{}, mgl64.Vec3{2, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(hit.Entity).To(BeIdenticalTo(near))
			Expect(hit.Distance).To(BeNumerically("~", 4, 1e-9))
			Expect(hit.Point.ApproxEqual(mgl64.Vec3{4, 0, 0})).To(BeTrue())

			_, ok = sim.FindRayIntersection(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0})
			Expect(ok).To(BeFalse())
		})

		It("agrees with a serial scan when fanned out", func() {
			cfg := simulation.DefaultConfig()
			cfg.Workers = 4
			cfg.ParallelMin = 2
			wide := simulation.New(cfg, arena, quietLogger())
			for i := 0; i < 40; i++ {
				Expect(wide.Add(sphereAt(float64(40-i)*3, 1))).To(Succeed())
			}

			hit, ok := wide.FindRayIntersection(mgl64.Vec3{-10, 0, 0}, mgl64.Vec3{1, 0, 0})
			Expect(ok).To(BeTrue())
			Expect(hit.Entity.Translation().X()).To(BeNumerically("~", 3, 1e-9))
			Expect(hit.Distance).To(BeNumerically("~", 12, 1e-9))
		})

		It("probes with spheres and planes across entities", func() {
			floor := entity.New(arena, entity.PlaneBuilder{Normal: mgl64.Vec3{0, 1, 0}})
			ball := sphereAt(0, 1)
			Expect(sim.Add(floor)).To(Succeed())
			Expect(sim.Add(ball)).To(Succeed())

			contacts := sim.FindSphereCollisions(mgl64.Vec3{0, 0.2, 0}, 0.25)
			Expect(contacts).To(HaveLen(2))
			for _, c := range contacts {
				Expect(c.A).To(BeNil())
				Expect(c.B).NotTo(BeNil())
			}

			contacts = sim.FindPlaneCollisions(mgl64.Vec4{1, 0, 0, -0.5})
			Expect(contacts).To(HaveLen(1))
			Expect(contacts[0].A).To(BeIdenticalTo(ball))

			Expect(sim.FindPlaneCollisions(mgl64.Vec4{})).To(BeEmpty())
		})
	})
})

var _ = Describe("ParallelFor", func() {
	It("covers every index exactly once", func() {
		seen := make([]int, 1000)
		simulation.ParallelFor(len(seen), 10, 8, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for _, n := range seen {
			Expect(n).To(Equal(1))
		}
	})

	It("runs small ranges inline", func() {
		calls := 0
		simulation.ParallelFor(5, 10, 8, func(start, end int) {
			calls++
			Expect(start).To(Equal(0))
			Expect(end).To(Equal(5))
		})
		Expect(calls).To(Equal(1))
	})
})
