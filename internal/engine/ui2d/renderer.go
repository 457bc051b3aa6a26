// Package ui2d draws the 2D layer over the scenery: the settings panel,
// the message console and the renderer's debug text, using OpenGL directly.
package ui2d

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Canvas is the drawing surface widgets use. Coordinates are in pixels from
// the top-left corner.
type Canvas interface {
	DrawRect(x, y, width, height float32, color Color)
	DrawRectOutline(x, y, width, height, thickness float32, color Color)
	DrawText(x, y float32, text string, scale float32, color Color)
	MeasureText(text string, scale float32) (float32, float32)
	GetScreenSize() (int, int)
}

// depthSprite is a queued depth map preview.
type depthSprite struct {
	x, y, size float32
	texture    uint32
}

// Renderer batches 2D quads and text and draws them in End.
type Renderer struct {
	screenWidth  int
	screenHeight int

	solidShader uint32
	textShader  uint32
	depthShader uint32

	solidVAO uint32
	solidVBO uint32
	textVAO  uint32
	textVBO  uint32
	depthVAO uint32
	depthVBO uint32

	solidVertices []float32
	textVertices  []float32
	sprites       []depthSprite

	font *Font
}

// New creates the shaders, buffers and font. A GL context must be current.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{
		screenWidth:   width,
		screenHeight:  height,
		solidVertices: make([]float32, 0, 4096),
		textVertices:  make([]float32, 0, 4096),
	}

	var err error
	if r.solidShader, err = linkShaderProgram(solidVertexShader, solidFragmentShader); err != nil {
		return nil, fmt.Errorf("create solid shader: %w", err)
	}
	if r.textShader, err = linkShaderProgram(textVertexShader, textFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("create text shader: %w", err)
	}
	if r.depthShader, err = linkShaderProgram(depthVertexShader, depthFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("create depth shader: %w", err)
	}

	// pos(3) + color(4)
	r.solidVAO, r.solidVBO = createBuffers(3, 4)
	// pos(3) + texcoord(2) + color(4)
	r.textVAO, r.textVBO = createBuffers(3, 2, 4)
	// pos(3) + texcoord(2)
	r.depthVAO, r.depthVBO = createBuffers(3, 2)

	r.font = NewFont()
	return r, nil
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// GetScreenSize returns the current screen dimensions.
func (r *Renderer) GetScreenSize() (int, int) {
	return r.screenWidth, r.screenHeight
}

// Begin starts a new UI frame.
func (r *Renderer) Begin() {
	r.solidVertices = r.solidVertices[:0]
	r.textVertices = r.textVertices[:0]
	r.sprites = r.sprites[:0]
}

// End draws everything queued since Begin and restores the GL state it
// touched, including the bound vertex array.
func (r *Renderer) End() {
	var prevBlend, prevDepth, prevCull, prevVAO, prevProgram int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &prevVAO)
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &prevProgram)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := orthoMatrix(0, float32(r.screenWidth), float32(r.screenHeight), 0, -1, 1)

	if len(r.solidVertices) > 0 {
		gl.UseProgram(r.solidShader)
		setProjection(r.solidShader, &proj)
		streamDraw(r.solidVAO, r.solidVBO, r.solidVertices, 7)
	}

	if len(r.sprites) > 0 {
		r.drawSprites(&proj)
	}

	if len(r.textVertices) > 0 && r.font != nil {
		gl.UseProgram(r.textShader)
		setProjection(r.textShader, &proj)
		gl.Uniform1i(gl.GetUniformLocation(r.textShader, gl.Str("uTexture\x00")), 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.font.TextureID())
		streamDraw(r.textVAO, r.textVBO, r.textVertices, 9)
	}

	gl.BindVertexArray(uint32(prevVAO))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(uint32(prevProgram))

	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
}

// drawSprites shows the queued depth maps as grayscale. Comparison sampling
// is switched off while they are read.
func (r *Renderer) drawSprites(proj *[16]float32) {
	gl.Disable(gl.BLEND)
	gl.UseProgram(r.depthShader)
	setProjection(r.depthShader, proj)
	gl.Uniform1i(gl.GetUniformLocation(r.depthShader, gl.Str("uTexture\x00")), 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, s := range r.sprites {
		gl.BindTexture(gl.TEXTURE_2D, s.texture)
		var compare int32
		gl.GetTexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, &compare)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.NONE)

		x, y, w := s.x, s.y, s.size
		vertices := []float32{
			x, y, 0, 0, 1,
			x + w, y, 0, 1, 1,
			x + w, y + w, 0, 1, 0,
			x, y, 0, 0, 1,
			x + w, y + w, 0, 1, 0,
			x, y + w, 0, 0, 0,
		}
		streamDraw(r.depthVAO, r.depthVBO, vertices, 5)

		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, compare)
	}
	gl.Enable(gl.BLEND)
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.font != nil {
		r.font.Close()
	}
	for _, vao := range []*uint32{&r.solidVAO, &r.textVAO, &r.depthVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	for _, vbo := range []*uint32{&r.solidVBO, &r.textVBO, &r.depthVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
			*vbo = 0
		}
	}
	for _, p := range []*uint32{&r.solidShader, &r.textShader, &r.depthShader} {
		if *p != 0 {
			gl.DeleteProgram(*p)
			*p = 0
		}
	}
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, color Color) {
	r.addQuad(x, y, width, height, color)
}

// DrawRectOutline draws a rectangle outline.
func (r *Renderer) DrawRectOutline(x, y, width, height, thickness float32, color Color) {
	r.addQuad(x, y, width, thickness, color)
	r.addQuad(x, y+height-thickness, width, thickness, color)
	r.addQuad(x, y+thickness, thickness, height-thickness*2, color)
	r.addQuad(x+width-thickness, y+thickness, thickness, height-thickness*2, color)
}

// DrawPanel draws a panel with border.
func (r *Renderer) DrawPanel(x, y, width, height float32, bg, border Color) {
	r.DrawRect(x, y, width, height, bg)
	r.DrawRectOutline(x, y, width, height, 1, border)
}

// DrawDepthTexture queues a size² preview of a depth texture.
func (r *Renderer) DrawDepthTexture(x, y, size float32, texture uint32) {
	if texture == 0 {
		return
	}
	r.sprites = append(r.sprites, depthSprite{x: x, y: y, size: size, texture: texture})
}

// addQuad appends two triangles of x, y, z, r, g, b, a.
func (r *Renderer) addQuad(x, y, w, h float32, c Color) {
	r.solidVertices = append(r.solidVertices,
		x, y, 0, c.R, c.G, c.B, c.A,
		x+w, y, 0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, c.R, c.G, c.B, c.A,
		x, y, 0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, c.R, c.G, c.B, c.A,
		x, y+h, 0, c.R, c.G, c.B, c.A,
	)
}

// addTexturedQuad appends two triangles of x, y, z, u, v, r, g, b, a.
func (r *Renderer) addTexturedQuad(x, y, w, h float32, u0, v0, u1, v1 float32, c Color) {
	r.textVertices = append(r.textVertices,
		x, y, 0, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, 0, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, u1, v1, c.R, c.G, c.B, c.A,
		x, y, 0, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, 0, u0, v1, c.R, c.G, c.B, c.A,
	)
}

// DrawText draws text with its top-left corner at x, y.
func (r *Renderer) DrawText(x, y float32, text string, scale float32, color Color) {
	if r.font == nil {
		return
	}

	gw, gh := r.font.GlyphSize()
	charW := float32(gw) * scale
	charH := float32(gh) * scale

	curX := x
	for _, char := range text {
		if char == '\n' {
			curX = x
			y += charH
			continue
		}
		if char != ' ' {
			u0, v0, u1, v1 := r.font.GetGlyphUV(char)
			r.addTexturedQuad(curX, y, charW, charH, u0, v0, u1, v1, color)
		}
		curX += charW
	}
}

// MeasureText returns the width and height of rendered text.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	if r.font == nil {
		return 0, 0
	}
	return r.font.MeasureText(text, scale)
}

func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func setProjection(program uint32, proj *[16]float32) {
	loc := gl.GetUniformLocation(program, gl.Str("uProjection\x00"))
	gl.UniformMatrix4fv(loc, 1, false, &proj[0])
}

// streamDraw uploads vertices and draws them as triangles.
func streamDraw(vao, vbo uint32, vertices []float32, floatsPerVertex int) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/floatsPerVertex))
}

// createBuffers creates a VAO/VBO pair with consecutive float attributes
// of the given sizes at locations 0, 1, ...
func createBuffers(sizes ...int32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}
	var offset uintptr
	for i, s := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(i), s, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(uint32(i))
		offset += uintptr(s * 4)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

const solidVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;
uniform mat4 uProjection;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vColor = aColor;
}
` + "\x00"

const solidFragmentShader = `
#version 410 core
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vColor;
}
` + "\x00"

const textVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;
uniform mat4 uProjection;
out vec2 vTexCoord;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}
` + "\x00"

const textFragmentShader = `
#version 410 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;
void main() {
	float alpha = texture(uTexture, vTexCoord).a;
	FragColor = vec4(vColor.rgb, vColor.a * alpha);
}
` + "\x00"

const depthVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
uniform mat4 uProjection;
out vec2 vTexCoord;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
}
` + "\x00"

const depthFragmentShader = `
#version 410 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
out vec4 FragColor;
void main() {
	float d = texture(uTexture, vTexCoord).r;
	FragColor = vec4(vec3(d), 1.0);
}
` + "\x00"

// linkShaderProgram compiles and links a shader program.
func linkShaderProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", log)
	}

	return program, nil
}

// compileShader compiles a shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}
