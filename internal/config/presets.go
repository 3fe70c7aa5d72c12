package config

var Presets = map[string]*Scene{
	"drop": {
		Name: "drop", Dt: 0.01, Steps: 300, MaxCollisions: 64,
		Entities: []EntityConfig{
			{Name: "floor", Kind: KindPlane, Normal: [3]float64{0, 1, 0}},
			{Name: "ball", Kind: KindSphere, Translation: [3]float64{0, 4, 0}, Velocity: [3]float64{0, -2, 0}, Radius: 0.5},
			{Name: "pill", Kind: KindCapsule, Translation: [3]float64{2, 5, 0}, Velocity: [3]float64{0, -2, 0}, Radius: 0.3, HalfHeight: 0.6},
		},
	},
	"headon": {
		Name: "headon", Dt: 0.01, Steps: 200, MaxCollisions: 64,
		Entities: []EntityConfig{
			{Name: "left", Kind: KindSphere, Translation: [3]float64{-5, 0, 0}, Velocity: [3]float64{3, 0, 0}, Radius: 1},
			{Name: "right", Kind: KindSphere, Translation: [3]float64{5, 0, 0}, Velocity: [3]float64{-3, 0, 0}, Radius: 1},
		},
	},
	"sweep": {
		Name: "sweep", Dt: 0.02, Steps: 250, MaxCollisions: 256,
		Entities: []EntityConfig{
			{Name: "arm", Kind: KindChain, Translation: [3]float64{-8, 1, 0}, Velocity: [3]float64{4, 0, 0}, Radius: 0.4, Count: 5, Spacing: 0.7},
			{Name: "post-a", Kind: KindCapsule, Translation: [3]float64{-2, 1, 0}, Radius: 0.3, HalfHeight: 1},
			{Name: "post-b", Kind: KindCapsule, Translation: [3]float64{2, 1, 0.5}, Radius: 0.3, HalfHeight: 1},
			{Name: "post-c", Kind: KindCapsule, Translation: [3]float64{6, 1, -2}, Radius: 0.3, HalfHeight: 1},
		},
	},
	"scenery": {
		Name: "scenery", Dt: 0.01, Steps: 400, MaxCollisions: 128,
		Entities: []EntityConfig{
			{Name: "rocks", Kind: KindStatic, Parts: []PartConfig{
				{Kind: KindSphere, Center: [3]float64{-2, 0, 0}, Radius: 1},
				{Kind: KindSphere, Center: [3]float64{1, 0, 1}, Radius: 0.8},
				{Kind: KindCapsule, Center: [3]float64{3, 0, -1}, Radius: 0.5, HalfHeight: 1},
			}},
			{Name: "probe", Kind: KindCompound, Translation: [3]float64{0, 0, -6}, Velocity: [3]float64{0, 0, 3}, Parts: []PartConfig{
				{Kind: KindSphere, Center: [3]float64{-1, 0, 0}, Radius: 0.5},
				{Kind: KindSphere, Center: [3]float64{1, 0, 0}, Radius: 0.5},
			}},
		},
	},
}

func GetPreset(name string) *Scene {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	return sc
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
