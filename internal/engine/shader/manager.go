// Package shader builds and caches the program variants the renderer needs.
//
// A scene program is selected by the renderer Params together with the
// traits of the material being drawn. Each distinct combination is compiled
// once from the embedded GLSL with a block of #define switches and cached;
// failed combinations are cached too so a broken variant is reported once
// instead of recompiled every frame.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/engine/shader/shaders"
	"github.com/Faultbox/scenery3d/internal/gpu"
)

// ErrCompile is returned when a variant fails to compile or link.
var ErrCompile = errors.New("shader variant failed to build")

const (
	desktopVersion = "#version 410 core"
	esVersion      = "#version 320 es"
)

// variant is the cache key of a scene program. Bits that cannot change the
// generated code are cleared so equivalent requests share one program.
type variant struct {
	params Params
	traits scene.MaterialTraits
}

func makeVariant(p Params, t scene.MaterialTraits) variant {
	if p.ShadowTransform {
		return variant{
			params: Params{OpenGLES: p.OpenGLES, ShadowTransform: true},
			traits: scene.MaterialTraits{
				HasDiffuseTexture: t.HasDiffuseTexture,
				AlphaTest:         t.AlphaTest,
			},
		}
	}

	if !p.Shadows {
		p.ShadowFilterQuality = FilterOff
		p.FrustumSplits = 0
		p.HWShadowSamplers = false
	}
	p.PCSS = p.PCSSEnabled()
	if p.FrustumSplits > MaxFrustumSplits {
		p.FrustumSplits = MaxFrustumSplits
	}

	return variant{
		params: p,
		traits: scene.MaterialTraits{
			HasDiffuseTexture:  t.HasDiffuseTexture,
			HasEmissiveTexture: t.HasEmissiveTexture,
			HasBumpTexture:     p.Bump && t.HasBumpTexture,
			HasHeightTexture:   p.Bump && t.HasHeightTexture,
			HasSpecularity:     t.HasSpecularity,
			AlphaTest:          t.AlphaTest,
		},
	}
}

type define struct {
	name  string
	value int
}

func flag(name string, on bool) define {
	if on {
		return define{name, 1}
	}
	return define{name, 0}
}

func (v variant) defines() []define {
	p, t := v.params, v.traits
	splits := p.FrustumSplits
	if splits < 1 {
		splits = 1
	}
	return []define{
		flag("SHADOWS", p.Shadows),
		define{"FRUSTUM_SPLITS", splits},
		flag("HW_SHADOW_SAMPLERS", p.HWShadowSamplers),
		flag("SHADOW_FILTER", p.Shadows && p.ShadowFilterQuality.Filtered()),
		flag("SHADOW_FILTER_HQ", p.Shadows && p.ShadowFilterQuality.HighQuality()),
		flag("PCSS", p.PCSS),
		flag("PIXEL_LIGHTING", p.PixelLighting),
		flag("BUMP", p.Bump),
		flag("TORCH", p.TorchLight),
		flag("GEOMETRY_SHADER", p.GeometryShader),
		flag("MAT_DIFFUSETEX", t.HasDiffuseTexture),
		flag("MAT_EMISSIVETEX", t.HasEmissiveTexture),
		flag("MAT_BUMPTEX", t.HasBumpTexture),
		flag("MAT_HEIGHTTEX", t.HasHeightTexture),
		flag("MAT_SPECULAR", t.HasSpecularity),
		flag("ALPHATEST", t.AlphaTest),
	}
}

func (v variant) name() string {
	var b strings.Builder
	if v.params.ShadowTransform {
		b.WriteString("depth")
	} else {
		b.WriteString("scene")
	}
	for _, d := range v.defines() {
		if d.value != 0 {
			fmt.Fprintf(&b, " %s", d.name)
			if d.name == "FRUSTUM_SPLITS" {
				fmt.Fprintf(&b, "=%d", d.value)
			}
		}
	}
	return b.String()
}

// assemble prepends the version line and the defines to src.
func assemble(version string, defs []define, src string) string {
	if src == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('\n')
	for _, d := range defs {
		fmt.Fprintf(&b, "#define %s %d\n", d.name, d.value)
	}
	b.WriteString("#line 1\n")
	b.WriteString(src)
	return b.String()
}

type entry struct {
	prog *Program
	err  error
}

type utility int

const (
	utilityCube utility = iota
	utilityTexture
	utilityDebug
)

// Manager owns every program it hands out.
type Manager struct {
	dev      gpu.Device
	log      *zap.Logger
	es       bool
	variants map[variant]entry
	utility  map[utility]entry
}

// NewManager returns an empty cache for dev. A nil logger disables logging.
func NewManager(dev gpu.Device, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		dev:      dev,
		log:      log,
		es:       dev.Caps().OpenGLES,
		variants: make(map[variant]entry),
		utility:  make(map[utility]entry),
	}
}

func (m *Manager) version() string {
	if m.es {
		return esVersion
	}
	return desktopVersion
}

// Scene returns the program for drawing a material with traits t under p.
func (m *Manager) Scene(p Params, t scene.MaterialTraits) (*Program, error) {
	v := makeVariant(p, t)
	if e, ok := m.variants[v]; ok {
		return e.prog, e.err
	}

	defs := v.defines()
	src := gpu.ProgramSource{Name: v.name()}
	if v.params.ShadowTransform {
		src.Vertex = assemble(m.version(), defs, shaders.DepthVertexShader)
		src.Fragment = assemble(m.version(), defs, shaders.DepthFragmentShader)
	} else {
		src.Vertex = assemble(m.version(), defs, shaders.SceneVertexShader)
		src.Fragment = assemble(m.version(), defs, shaders.SceneFragmentShader)
		if v.params.GeometryShader {
			src.Geometry = assemble(m.version(), defs, shaders.SceneGeometryShader)
		}
	}

	e := m.build(src)
	m.variants[v] = e
	return e.prog, e.err
}

// Cube returns the reprojection program sampling a cube texture, or a
// single face texture when cubemap is false.
func (m *Manager) Cube(cubemap bool) (*Program, error) {
	kind := utilityTexture
	if cubemap {
		kind = utilityCube
	}
	if e, ok := m.utility[kind]; ok {
		return e.prog, e.err
	}
	defs := []define{flag("CUBEMAP", cubemap)}
	name := "texture"
	if cubemap {
		name = "cube"
	}
	e := m.build(gpu.ProgramSource{
		Name:     name,
		Vertex:   assemble(m.version(), defs, shaders.CubeVertexShader),
		Fragment: assemble(m.version(), defs, shaders.CubeFragmentShader),
	})
	m.utility[kind] = e
	return e.prog, e.err
}

// Debug returns the flat-color line program. It is not available on
// OpenGL ES contexts.
func (m *Manager) Debug() (*Program, error) {
	if m.es {
		return nil, fmt.Errorf("debug program: %w", gpu.ErrUnsupported)
	}
	if e, ok := m.utility[utilityDebug]; ok {
		return e.prog, e.err
	}
	e := m.build(gpu.ProgramSource{
		Name:     "debug",
		Vertex:   assemble(m.version(), nil, shaders.DebugVertexShader),
		Fragment: assemble(m.version(), nil, shaders.DebugFragmentShader),
	})
	m.utility[utilityDebug] = e
	return e.prog, e.err
}

func (m *Manager) build(src gpu.ProgramSource) entry {
	handle, err := m.dev.CompileProgram(src)
	if err != nil {
		m.log.Error("shader variant failed", zap.String("variant", src.Name), zap.Error(err))
		return entry{err: fmt.Errorf("%w: %s: %w", ErrCompile, src.Name, err)}
	}
	m.log.Debug("shader variant built", zap.String("variant", src.Name))
	return entry{prog: newProgram(m.dev, src.Name, handle)}
}

// Len returns the number of cached scene variants, failed ones included.
func (m *Manager) Len() int { return len(m.variants) }

// Clear deletes every program and forgets failures.
func (m *Manager) Clear() {
	for _, e := range m.variants {
		if e.prog != nil {
			m.dev.DeleteProgram(e.prog.Handle)
		}
	}
	for _, e := range m.utility {
		if e.prog != nil {
			m.dev.DeleteProgram(e.prog.Handle)
		}
	}
	m.variants = make(map[variant]entry)
	m.utility = make(map[utility]entry)
}
