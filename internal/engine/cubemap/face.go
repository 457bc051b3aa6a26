package cubemap

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Face indices follow the cube texture layer order in the horizontal frame.
const (
	FaceSouth = iota // +X
	FaceNorth        // -X
	FaceEast         // +Y
	FaceWest         // -Y
	FaceUp           // +Z
	FaceDown         // -Z

	FaceCount
)

var faceNames = [FaceCount]string{"S", "N", "E", "W", "U", "D"}

// FaceName returns the compass letter of face.
func FaceName(face int) string {
	if face < 0 || face >= FaceCount {
		return "?"
	}
	return faceNames[face]
}

// Mode is the capture target layout.
type Mode int

const (
	// ModeTextures renders into six 2D textures.
	ModeTextures Mode = iota
	// ModeCubemap renders each face of one cube texture in its own pass.
	ModeCubemap
	// ModeCubemapGSAccel renders all faces of one cube texture in a single
	// layered pass using a geometry shader.
	ModeCubemapGSAccel
)

var modeNames = [...]string{
	ModeTextures:       "textures",
	ModeCubemap:        "cubemap",
	ModeCubemapGSAccel: "cubemap_gsaccel",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses the names produced by String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return ModeTextures, fmt.Errorf("unknown cubemap mode %q", s)
}

// UsesCubeTexture reports whether m captures into a cube texture.
func (m Mode) UsesCubeTexture() bool { return m >= ModeCubemap }

// DominantFaces returns the horizontal faces the view direction points at
// most and second most. Only the horizontal components are considered.
func DominantFaces(dir mgl64.Vec3) (dominant, second int) {
	axis := 0
	if abs(dir[0]) < abs(dir[1]) {
		axis = 1
	}
	other := 1 - axis
	return faceOnAxis(axis, dir[axis]), faceOnAxis(other, dir[other])
}

func faceOnAxis(axis int, v float64) int {
	face := axis * 2
	if v < 0 {
		face++
	}
	return face
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// view builds the rotation that looks along -a with s to the right and t up:
// a direction d lands at eye coordinates (s·d, t·d, -a·d).
func view(s, t, a mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Mat4{
		s[0], t[0], -a[0], 0,
		s[1], t[1], -a[1], 0,
		s[2], t[2], -a[2], 0,
		0, 0, 0, 1,
	}
}

// cubeRotations match the cube texture sampling convention: for each layer
// the major axis and the directions of the s and t texture axes.
var cubeRotations = [FaceCount]mgl32.Mat4{
	FaceSouth: view(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}),
	FaceNorth: view(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{-1, 0, 0}),
	FaceEast:  view(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}),
	FaceWest:  view(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}),
	FaceUp:    view(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, 1}),
	FaceDown:  view(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}),
}

// meshRotations place the east face template on every face of the
// reprojection cube.
var meshRotations = [FaceCount]mgl32.Mat3{
	FaceSouth: mgl32.Rotate3DZ(-math32.Pi / 2),
	FaceNorth: mgl32.Rotate3DZ(math32.Pi / 2),
	FaceEast:  mgl32.Ident3(),
	FaceWest:  mgl32.Rotate3DZ(math32.Pi),
	FaceUp:    mgl32.Rotate3DX(math32.Pi / 2),
	FaceDown:  mgl32.Rotate3DX(-math32.Pi / 2),
}

// textureRotations render each face so that its 2D texture lines up with
// the texture coordinates of its mesh patch.
var textureRotations = func() [FaceCount]mgl32.Mat4 {
	var out [FaceCount]mgl32.Mat4
	for i, m := range meshRotations {
		out[i] = view(m.Mul3x1(mgl32.Vec3{1, 0, 0}), m.Mul3x1(mgl32.Vec3{0, 0, 1}), m.Mul3x1(mgl32.Vec3{0, 1, 0}))
	}
	return out
}()

// Rotations returns the face view rotations for mode.
func Rotations(mode Mode) [FaceCount]mgl32.Mat4 {
	if mode.UsesCubeTexture() {
		return cubeRotations
	}
	return textureRotations
}

// ViewDirection returns the direction a face rotation looks along.
func ViewDirection(rot mgl32.Mat4) mgl32.Vec3 {
	return rot.Row(2).Vec3().Mul(-1)
}

// Subdivisions is the number of quads along each edge of a mesh face.
const Subdivisions = 20

// Mesh is the subdivided unit cube the captured faces are reprojected with.
// Face f owns vertices [f*FaceVertices, (f+1)*FaceVertices) and indices
// [f*FaceIndices, (f+1)*FaceIndices).
type Mesh struct {
	Vertices  []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   []uint16
}

// Per-face mesh sizes.
const (
	FaceVertices = (Subdivisions + 1) * (Subdivisions + 1)
	FaceIndices  = Subdivisions * Subdivisions * 6
)

// NewMesh builds the reprojection cube.
func NewMesh() Mesh {
	const step = 2.0 / Subdivisions
	const texStep = 1.0 / Subdivisions

	front := make([]mgl32.Vec3, 0, FaceVertices)
	frontTex := make([]mgl32.Vec2, 0, FaceVertices)
	for y := 0; y <= Subdivisions; y++ {
		for x := 0; x <= Subdivisions; x++ {
			front = append(front, mgl32.Vec3{-1 + float32(x)*step, 1, -1 + float32(y)*step})
			frontTex = append(frontTex, mgl32.Vec2{float32(x) * texStep, float32(y) * texStep})
		}
	}

	idx := func(x, y int) uint16 { return uint16(y*(Subdivisions+1) + x) }
	frontIdx := make([]uint16, 0, FaceIndices)
	for y := 0; y < Subdivisions; y++ {
		for x := 0; x < Subdivisions; x++ {
			frontIdx = append(frontIdx,
				idx(x, y+1), idx(x, y), idx(x+1, y+1),
				idx(x+1, y+1), idx(x, y), idx(x+1, y))
		}
	}

	m := Mesh{
		Vertices:  make([]mgl32.Vec3, 0, FaceCount*FaceVertices),
		TexCoords: make([]mgl32.Vec2, 0, FaceCount*FaceVertices),
		Indices:   make([]uint16, 0, FaceCount*FaceIndices),
	}
	for f := 0; f < FaceCount; f++ {
		rot := meshRotations[f]
		for _, v := range front {
			m.Vertices = append(m.Vertices, rot.Mul3x1(v))
		}
		m.TexCoords = append(m.TexCoords, frontTex...)
		base := uint16(f * FaceVertices)
		for _, i := range frontIdx {
			m.Indices = append(m.Indices, base+i)
		}
	}
	return m
}

// bufferData returns all positions followed by all 2D texture coordinates,
// the layout of the static cube buffer.
func (m Mesh) bufferData() []float32 {
	out := make([]float32, 0, len(m.Vertices)*5)
	for _, v := range m.Vertices {
		out = append(out, v[0], v[1], v[2])
	}
	for _, t := range m.TexCoords {
		out = append(out, t[0], t[1])
	}
	return out
}
