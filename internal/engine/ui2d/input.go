package ui2d

// InputState holds the mouse state the widgets react to.
type InputState struct {
	MouseX float32
	MouseY float32

	MouseDeltaX float32
	MouseDeltaY float32

	MouseLeftDown bool

	// Edges, valid for one frame after Update.
	MouseLeftPressed  bool
	MouseLeftReleased bool

	prevMouseLeft bool
	prevMouseX    float32
	prevMouseY    float32
}

// Update derives the deltas and the press and release edges. Call it at
// the start of each frame after updating the raw values.
func (i *InputState) Update() {
	i.MouseDeltaX = i.MouseX - i.prevMouseX
	i.MouseDeltaY = i.MouseY - i.prevMouseY
	i.prevMouseX = i.MouseX
	i.prevMouseY = i.MouseY

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft
	i.prevMouseLeft = i.MouseLeftDown
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(r Rect) bool {
	return r.Contains(i.MouseX, i.MouseY)
}
