package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/internal/gpu/gputest"
)

func TestFilterQualityNames(t *testing.T) {
	for q := FilterOff; q <= FilterHighHardware; q++ {
		parsed, err := ParseFilterQuality(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, parsed)
	}
	_, err := ParseFilterQuality("ultra")
	assert.Error(t, err)

	q, err := ParseFilterQuality(" Low_Hardware ")
	require.NoError(t, err)
	assert.Equal(t, FilterLowHardware, q)
}

func TestFilterQualityTraits(t *testing.T) {
	tests := []struct {
		q        FilterQuality
		hardware bool
		pcss     bool
		filtered bool
		hq       bool
	}{
		{FilterOff, false, false, false, false},
		{FilterHardware, true, false, false, false},
		{FilterLow, false, true, true, false},
		{FilterLowHardware, true, false, true, false},
		{FilterHigh, false, true, true, true},
		{FilterHighHardware, true, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.q.String(), func(t *testing.T) {
			assert.Equal(t, tt.hardware, tt.q.UsesHardwareFilter())
			assert.Equal(t, tt.pcss, tt.q.AllowsPCSS())
			assert.Equal(t, tt.filtered, tt.q.Filtered())
			assert.Equal(t, tt.hq, tt.q.HighQuality())
		})
	}
}

func TestUniformNames(t *testing.T) {
	seen := make(map[string]bool)
	for u := Uniform(0); u < uniformCount; u++ {
		name := u.Name()
		require.NotEmpty(t, name, "uniform %d", u)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
	assert.Equal(t, "u_mShadow2", ShadowMatrix(2).Name())
	assert.Equal(t, "u_texShadow3", ShadowTexture(3).Name())
	assert.Empty(t, uniformCount.Name())
}

func TestManagerCachesVariants(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)

	p := Params{Shadows: true, FrustumSplits: 4, ShadowFilterQuality: FilterLow, PixelLighting: true}
	traits := scene.MaterialTraits{HasDiffuseTexture: true}

	a, err := m.Scene(p, traits)
	require.NoError(t, err)
	b, err := m.Scene(p, traits)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, dev.Compiled())

	// traits outside the key share the program
	c, err := m.Scene(p, scene.MaterialTraits{HasDiffuseTexture: true, IsFading: true, HasTransparency: true})
	require.NoError(t, err)
	assert.Same(t, a, c)

	// a different permutation compiles a new one
	p2 := p
	p2.TorchLight = true
	d, err := m.Scene(p2, traits)
	require.NoError(t, err)
	assert.NotSame(t, a, d)
	assert.Equal(t, 2, m.Len())
}

func TestManagerNormalizesKey(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)

	// shadow settings are irrelevant without shadows
	a, err := m.Scene(Params{FrustumSplits: 4, ShadowFilterQuality: FilterHigh}, scene.MaterialTraits{})
	require.NoError(t, err)
	b, err := m.Scene(Params{FrustumSplits: 1, HWShadowSamplers: true}, scene.MaterialTraits{})
	require.NoError(t, err)
	assert.Same(t, a, b)

	// bump textures only matter with bump mapping on
	c, err := m.Scene(Params{}, scene.MaterialTraits{HasBumpTexture: true})
	require.NoError(t, err)
	assert.Same(t, a, c)

	// depth variants ignore shading state
	d, err := m.Scene(Params{ShadowTransform: true, TorchLight: true, Shadows: true}, scene.MaterialTraits{HasSpecularity: true})
	require.NoError(t, err)
	e, err := m.Scene(Params{ShadowTransform: true}, scene.MaterialTraits{})
	require.NoError(t, err)
	assert.Same(t, d, e)
	assert.Equal(t, 2, dev.Compiled())
}

func TestManagerSources(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)

	prog, err := m.Scene(Params{
		Shadows:             true,
		FrustumSplits:       4,
		ShadowFilterQuality: FilterHigh,
		PCSS:                true,
		GeometryShader:      true,
	}, scene.MaterialTraits{AlphaTest: true, HasDiffuseTexture: true})
	require.NoError(t, err)

	src, ok := dev.ProgramSource(prog.Handle)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src.Vertex, desktopVersion+"\n"))
	assert.NotEmpty(t, src.Geometry)
	for _, want := range []string{
		"#define SHADOWS 1",
		"#define FRUSTUM_SPLITS 4",
		"#define SHADOW_FILTER_HQ 1",
		"#define PCSS 1",
		"#define ALPHATEST 1",
		"#define BUMP 0",
	} {
		assert.Contains(t, src.Fragment, want)
	}
	assert.Contains(t, prog.Name, "FRUSTUM_SPLITS=4")

	depth, err := m.Scene(Params{ShadowTransform: true}, scene.MaterialTraits{})
	require.NoError(t, err)
	src, _ = dev.ProgramSource(depth.Handle)
	assert.Empty(t, src.Geometry)
	assert.Contains(t, src.Vertex, "u_mMVP")
	assert.True(t, strings.HasPrefix(depth.Name, "depth"))
}

func TestManagerPCSSNeedsShaderFilter(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)

	prog, err := m.Scene(Params{Shadows: true, FrustumSplits: 1, ShadowFilterQuality: FilterHighHardware, PCSS: true}, scene.MaterialTraits{})
	require.NoError(t, err)
	src, _ := dev.ProgramSource(prog.Handle)
	assert.Contains(t, src.Fragment, "#define PCSS 0")
}

func TestManagerES(t *testing.T) {
	dev := gputest.New()
	dev.DeviceCaps.OpenGLES = true
	m := NewManager(dev, nil)

	prog, err := m.Scene(Params{OpenGLES: true}, scene.MaterialTraits{})
	require.NoError(t, err)
	src, _ := dev.ProgramSource(prog.Handle)
	assert.True(t, strings.HasPrefix(src.Fragment, esVersion))

	_, err = m.Debug()
	assert.ErrorIs(t, err, gpu.ErrUnsupported)
}

func TestManagerCachesFailures(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = func(src gpu.ProgramSource) bool { return strings.Contains(src.Name, "TORCH") }
	m := NewManager(dev, nil)

	_, err := m.Scene(Params{TorchLight: true}, scene.MaterialTraits{})
	require.ErrorIs(t, err, ErrCompile)
	assert.ErrorIs(t, err, gputest.ErrCompile)

	_, err = m.Scene(Params{TorchLight: true}, scene.MaterialTraits{})
	require.ErrorIs(t, err, ErrCompile)
	assert.Zero(t, dev.Compiled())

	_, err = m.Scene(Params{}, scene.MaterialTraits{})
	require.NoError(t, err)

	// clearing retries the failed variant
	m.Clear()
	dev.FailCompile = nil
	_, err = m.Scene(Params{TorchLight: true}, scene.MaterialTraits{})
	require.NoError(t, err)
}

func TestManagerUtilityPrograms(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)

	cube, err := m.Cube(true)
	require.NoError(t, err)
	tex, err := m.Cube(false)
	require.NoError(t, err)
	assert.NotSame(t, cube, tex)

	again, err := m.Cube(true)
	require.NoError(t, err)
	assert.Same(t, cube, again)

	src, _ := dev.ProgramSource(cube.Handle)
	assert.Contains(t, src.Vertex, "#define CUBEMAP 1")
	src, _ = dev.ProgramSource(tex.Handle)
	assert.Contains(t, src.Vertex, "#define CUBEMAP 0")

	dbg, err := m.Debug()
	require.NoError(t, err)
	assert.True(t, dbg.Has(UniformVecColor))

	assert.Equal(t, 3, dev.LivePrograms())
	m.Clear()
	assert.Zero(t, dev.LivePrograms())
}

func TestProgramSetters(t *testing.T) {
	dev := gputest.New()
	m := NewManager(dev, nil)
	prog, err := m.Scene(Params{}, scene.MaterialTraits{})
	require.NoError(t, err)

	prog.Bind()
	prog.SetFloat(UniformMtlAlpha, 0.25)
	prog.SetInt(UniformTexDiffuse, 0)

	v, ok := dev.Uniform(prog.Handle, "u_vMatAlpha")
	require.True(t, ok)
	assert.Equal(t, float32(0.25), v)
	v, ok = dev.Uniform(prog.Handle, "u_texDiffuse")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)
}
