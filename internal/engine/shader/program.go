package shader

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// Program is a linked program with its uniform locations resolved once.
// Setters ignore uniforms the program does not use.
type Program struct {
	Name   string
	Handle gpu.Program

	dev  gpu.Device
	locs [uniformCount]int32
}

func newProgram(dev gpu.Device, name string, handle gpu.Program) *Program {
	p := &Program{Name: name, Handle: handle, dev: dev}
	for u := Uniform(0); u < uniformCount; u++ {
		p.locs[u] = dev.UniformLocation(handle, uniformNames[u])
	}
	return p
}

// Has reports whether the program uses u.
func (p *Program) Has(u Uniform) bool { return p.locs[u] >= 0 }

// Location returns the location of u, -1 when unused.
func (p *Program) Location(u Uniform) int32 { return p.locs[u] }

// Bind makes p the current program.
func (p *Program) Bind() { p.dev.UseProgram(p.Handle) }

func (p *Program) SetInt(u Uniform, v int32) {
	if p.Has(u) {
		p.dev.Uniform1i(p.locs[u], v)
	}
}

func (p *Program) SetFloat(u Uniform, v float32) {
	if p.Has(u) {
		p.dev.Uniform1f(p.locs[u], v)
	}
}

func (p *Program) SetVec3(u Uniform, v mgl32.Vec3) {
	if p.Has(u) {
		p.dev.Uniform3f(p.locs[u], v)
	}
}

func (p *Program) SetVec4(u Uniform, v mgl32.Vec4) {
	if p.Has(u) {
		p.dev.Uniform4f(p.locs[u], v)
	}
}

func (p *Program) SetVec4s(u Uniform, v []mgl32.Vec4) {
	if p.Has(u) && len(v) > 0 {
		p.dev.Uniform4fv(p.locs[u], v)
	}
}

func (p *Program) SetMat3(u Uniform, m mgl32.Mat3) {
	if p.Has(u) {
		p.dev.UniformMat3(p.locs[u], m)
	}
}

func (p *Program) SetMat4(u Uniform, m mgl32.Mat4) {
	if p.Has(u) {
		p.dev.UniformMat4(p.locs[u], m)
	}
}

func (p *Program) SetMat4s(u Uniform, m []mgl32.Mat4) {
	if p.Has(u) && len(m) > 0 {
		p.dev.UniformMat4v(p.locs[u], m)
	}
}
