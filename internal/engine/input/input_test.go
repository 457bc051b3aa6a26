package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
)

func key(typ uint32, sc sdl.Scancode, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: typ, Repeat: repeat, Keysym: sdl.Keysym{Scancode: sc}}
}

func TestKeysAreHeldUntilReleased(t *testing.T) {
	in := New()

	assert.False(t, in.handle(key(uint32(sdl.KEYDOWN), sdl.SCANCODE_W, 0)))
	assert.True(t, in.IsKeyHeld(sdl.SCANCODE_W))
	assert.True(t, in.IsKeyPressed(sdl.SCANCODE_W))
	assert.Equal(t, 1.0, in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S))

	in.handle(key(uint32(sdl.KEYDOWN), sdl.SCANCODE_S, 0))
	assert.Zero(t, in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S))

	in.handle(key(uint32(sdl.KEYUP), sdl.SCANCODE_W, 0))
	assert.False(t, in.IsKeyHeld(sdl.SCANCODE_W))
	assert.Equal(t, -1.0, in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S))

	require.Len(t, in.Events(), 3)
	assert.Equal(t, EventKeyUp, in.Events()[2].Type)
}

func TestKeyRepeatIsNotAnEvent(t *testing.T) {
	in := New()
	in.handle(key(uint32(sdl.KEYDOWN), sdl.SCANCODE_D, 0))
	in.handle(key(uint32(sdl.KEYDOWN), sdl.SCANCODE_D, 1))
	assert.Len(t, in.Events(), 1)
	assert.True(t, in.IsKeyHeld(sdl.SCANCODE_D))
}

const left = uint8(sdl.BUTTON_LEFT)

func TestMouseEvents(t *testing.T) {
	in := New()

	in.handle(&sdl.MouseMotionEvent{X: 10, Y: 20})
	in.handle(&sdl.MouseButtonEvent{Type: uint32(sdl.MOUSEBUTTONDOWN), Button: left, X: 12, Y: 22})
	assert.True(t, in.IsButtonHeld(left))
	x, y := in.MousePosition()
	assert.Equal(t, 12, x)
	assert.Equal(t, 22, y)

	in.handle(&sdl.MouseWheelEvent{Y: -2})
	in.handle(&sdl.MouseButtonEvent{Type: uint32(sdl.MOUSEBUTTONUP), Button: left, X: 12, Y: 22})
	assert.False(t, in.IsButtonHeld(left))

	events := in.Events()
	require.Len(t, events, 4)
	assert.Equal(t, EventMouseWheel, events[2].Type)
	assert.Equal(t, float32(-2), events[2].WheelY)
	assert.Equal(t, 12, events[2].MouseX)
}

func TestQuitAndResize(t *testing.T) {
	in := New()
	assert.False(t, in.handle(&sdl.WindowEvent{Event: uint8(sdl.WINDOWEVENT_RESIZED), Data1: 640, Data2: 480}))
	assert.True(t, in.handle(&sdl.QuitEvent{}))

	events := in.Events()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Type: EventWindowResize, Width: 640, Height: 480}, events[0])
	assert.Equal(t, EventQuit, events[1].Type)
}
