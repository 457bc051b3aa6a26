package ui2d

// Layout metrics.
const (
	titleBarHeight = float32(20)
	padding        = float32(8)
	rowHeight      = float32(18)
	checkboxSize   = float32(14)
	textScale      = float32(1)
)

// Context is an immediate-mode panel toolkit drawn through a Canvas.
type Context struct {
	canvas Canvas
	input  *InputState

	activeWidget string

	windows       map[string]*WindowState
	currentWindow *WindowState

	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Open   bool
	Moving bool
}

// NewContext creates a context drawing on canvas.
func NewContext(canvas Canvas) *Context {
	return &Context{
		canvas:  canvas,
		input:   &InputState{},
		windows: make(map[string]*WindowState),
	}
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
}

// Window returns the state of window id, or nil before its first frame.
func (c *Context) Window(id string) *WindowState {
	return c.windows[id]
}

// BeginWindow starts a new window. The position is only used the first
// time; afterwards the window keeps where it was dragged to. Returns false
// if the window is closed.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) bool {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, X: x, Y: y, W: w, H: h, Open: true}
		c.windows[id] = ws
	}
	if !ws.Open {
		return false
	}
	c.currentWindow = ws

	if ws.Moving && c.input.MouseLeftDown {
		ws.X += c.input.MouseDeltaX
		ws.Y += c.input.MouseDeltaY
	}
	titleBar := Rect{ws.X, ws.Y, ws.W, titleBarHeight}
	if c.input.MouseLeftPressed && titleBar.Contains(c.input.MouseX, c.input.MouseY) {
		ws.Moving = true
		c.activeWidget = id + "_titlebar"
	}
	if c.input.MouseLeftReleased {
		ws.Moving = false
		if c.activeWidget == id+"_titlebar" {
			c.activeWidget = ""
		}
	}

	c.canvas.DrawRect(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg)
	c.canvas.DrawRectOutline(ws.X, ws.Y, ws.W, ws.H, 1, ColorPanelBorder)
	c.canvas.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarHeight-1, ColorButtonNormal)

	_, textH := c.canvas.MeasureText(title, textScale)
	c.canvas.DrawText(ws.X+padding, ws.Y+(titleBarHeight-textH)/2, title, textScale, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarHeight + padding
	c.rowH = 0
	return true
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	c.cursorY += c.rowH + 4
	c.rowH = height
}

// Button draws a button and returns true on the frame it is pressed.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.currentWindow == nil {
		return false
	}

	x, y := c.cursorX, c.cursorY
	h := c.rowH
	if h == 0 {
		h = rowHeight
	}
	if width == 0 {
		width = c.currentWindow.W - 2*padding
	}

	fullID := c.currentWindow.ID + "_" + id
	hovered := Rect{x, y, width, h}.Contains(c.input.MouseX, c.input.MouseY)
	clicked := false
	if hovered && c.input.MouseLeftPressed {
		c.activeWidget = fullID
		clicked = true
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		c.activeWidget = ""
	}

	color := ColorButtonNormal
	if c.activeWidget == fullID {
		color = ColorButtonActive
	} else if hovered {
		color = ColorButtonHover
	}
	c.canvas.DrawRect(x, y, width, h, color)
	c.canvas.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder)

	textW, textH := c.canvas.MeasureText(label, textScale)
	c.canvas.DrawText(x+(width-textW)/2, y+(h-textH)/2, label, textScale, ColorText)

	c.cursorX += width + 4
	return clicked
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text label with a specific color.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	c.canvas.DrawText(c.cursorX, c.cursorY, text, textScale, color)
	w, _ := c.canvas.MeasureText(text, textScale)
	c.cursorX += w + 4
}

// Checkbox draws a checkbox and returns its new state. The state flips
// when the mouse is pressed and released over the box.
func (c *Context) Checkbox(id string, label string, checked bool) bool {
	if c.currentWindow == nil {
		return checked
	}

	x, y := c.cursorX, c.cursorY
	fullID := c.currentWindow.ID + "_" + id
	labelW, textH := c.canvas.MeasureText(label, textScale)
	hovered := Rect{x, y, checkboxSize + padding + labelW, checkboxSize}.Contains(c.input.MouseX, c.input.MouseY)

	if hovered && c.input.MouseLeftPressed {
		c.activeWidget = fullID
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		if hovered {
			checked = !checked
		}
		c.activeWidget = ""
	}

	bg := ColorInputBg
	if hovered {
		bg = ColorButtonHover
	}
	c.canvas.DrawRect(x, y, checkboxSize, checkboxSize, bg)
	c.canvas.DrawRectOutline(x, y, checkboxSize, checkboxSize, 1, ColorPanelBorder)
	if checked {
		const inner = float32(3)
		c.canvas.DrawRect(x+inner, y+inner, checkboxSize-inner*2, checkboxSize-inner*2, ColorHighlight)
	}
	c.canvas.DrawText(x+checkboxSize+padding, y+(checkboxSize-textH)/2, label, textScale, ColorText)

	c.cursorX += checkboxSize + padding + labelW + padding
	return checked
}

// Spacer adds vertical space.
func (c *Context) Spacer(height float32) {
	c.cursorY += height
}

// Separator draws a horizontal separator line.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	c.cursorY += c.rowH + 4
	c.rowH = 0
	x := c.currentWindow.X + padding
	c.canvas.DrawRect(x, c.cursorY, c.currentWindow.W-2*padding, 1, ColorPanelBorder)
	c.cursorY += padding
	c.cursorX = x
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
