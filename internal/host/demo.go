package host

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/config"
	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// fadePeriodMS is the cycle of the fading scaffold.
const fadePeriodMS = 8000

// Demo is the procedural village the demo binary shows: a ground plane,
// houses, a tower, a glass pavilion, a fence drawn from both sides and a
// scaffold that fades in and out.
type Demo struct {
	Mesh *scene.Mesh

	scaffold *scene.Material
}

// NewDemo builds the demo scene on dev. dev may be nil.
func NewDemo(dev gpu.Device, cfg config.SceneConfig) *Demo {
	b := scene.NewBuilder().
		Info(scene.Info{
			CamNearZ:              cfg.CamNearZ,
			CamFarZ:               cfg.CamFarZ,
			ShadowFarZ:            cfg.ShadowFarZ,
			ShadowSplitWeight:     cfg.ShadowSplitWeight,
			TransparencyThreshold: cfg.TransparencyThreshold,
			GridName:              cfg.GridName,
		}).
		Ground(0, scene.DefaultEyeLevel).
		GridOffset(mgl64.Vec3{600000, 5340000, 170}).
		Eye(mgl64.Vec3{-12, 0, scene.DefaultEyeLevel}, mgl64.Vec3{1, 0, 0})

	grass := b.Material(colored("grass", mgl32.Vec3{0.3, 0.5, 0.2}))
	wall := b.Material(colored("wall", mgl32.Vec3{0.85, 0.8, 0.7}))
	roof := b.Material(colored("roof", mgl32.Vec3{0.6, 0.2, 0.15}))

	stone := colored("stone", mgl32.Vec3{0.55, 0.55, 0.55})
	stone.Illum = scene.IllumSpecular
	stone.Ks = mgl32.Vec3{0.3, 0.3, 0.3}
	stone.Ns = 32
	tower := b.Material(stone)

	lamp := colored("lamp", mgl32.Vec3{0.9, 0.85, 0.5})
	lamp.Ke = mgl32.Vec3{1, 0.9, 0.6}
	lamps := b.Material(lamp)

	pane := colored("glass", mgl32.Vec3{0.6, 0.75, 0.8})
	pane.D = 0.35
	pane.Illum = scene.IllumTranslucent
	glass := b.Material(pane)

	picket := colored("fence", mgl32.Vec3{0.45, 0.3, 0.15})
	picket.Backface = true
	picket.AlphaTest = true
	fence := b.Material(picket)

	scaffold := colored("scaffold", mgl32.Vec3{0.7, 0.6, 0.4})
	scaffold.Fading = true
	scaffold.FadeValue = 1
	scaffolding := b.Material(scaffold)

	b.GroundPlane(grass, 200, 0)

	for i, x := range []float32{10, 22, 34} {
		y := float32(-8 + 8*(i%2))
		b.Object("house").
			Box(wall, box(x, y, 0, x+6, y+5, 4)).
			Box(roof, box(x-0.5, y-0.5, 4, x+6.5, y+5.5, 4.6)).
			EndObject()
	}
	b.Object("tower").
		Box(tower, box(45, 10, 0, 49, 14, 25)).
		Box(lamps, box(46, 11, 25, 48, 13, 26.5)).
		EndObject()

	b.Object("pavilion")
	b.Quad(glass, vec(0, 6, 0), vec(6, 6, 0), vec(6, 6, 3), vec(0, 6, 3))
	b.Quad(glass, vec(6, 6, 0), vec(6, 10, 0), vec(6, 10, 3), vec(6, 6, 3))
	b.Box(roof, box(-0.2, 5.8, 3, 6.2, 10.2, 3.2))
	b.EndObject()

	b.Object("fence")
	for x := float32(-6); x < 40; x += 4 {
		b.Quad(fence, vec(x, -14, 0), vec(x+4, -14, 0), vec(x+4, -14, 1.2), vec(x, -14, 1.2))
	}
	b.EndObject()

	b.Box(scaffolding, box(28, 6, 0, 31, 9, 9))

	return &Demo{Mesh: b.Build(dev), scaffold: scaffold}
}

// Animate fades the scaffold over a fixed wall-clock cycle.
func (d *Demo) Animate(wallMS int64) {
	phase := float64(wallMS%fadePeriodMS) / fadePeriodMS
	d.scaffold.FadeValue = float32(0.5 + 0.5*math.Cos(2*math.Pi*phase))
	d.scaffold.CalcTraits()
}

func colored(name string, kd mgl32.Vec3) *scene.Material {
	m := scene.NewMaterial(name)
	m.Kd = kd
	m.Ka = kd.Mul(0.5)
	m.CalcTraits()
	return m
}

func box(x0, y0, z0, x1, y1, z1 float32) geom.AABB {
	return geom.AABB{Min: mgl32.Vec3{x0, y0, z0}, Max: mgl32.Vec3{x1, y1, z1}}
}

func vec(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }
