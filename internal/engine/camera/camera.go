// Package camera turns mouse and keyboard input into the observer's view
// direction, field of view and walking steps in the horizontal frame
// (+X south, +Y east, +Z zenith).
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LookCamera is a standing observer looking around.
type LookCamera struct {
	// Azimuth is measured from north through east, in degrees.
	Azimuth float64
	// Altitude is the angle above the horizon, in degrees.
	Altitude float64
	// FOV is the vertical field of view in degrees.
	FOV float64

	MinFOV, MaxFOV           float64
	MinAltitude, MaxAltitude float64

	// DragSensitivity is degrees per pixel at a 60 degree field of view.
	DragSensitivity float64
	ZoomSensitivity float64
	// WalkSpeed is metres per second.
	WalkSpeed float64
}

// NewLookCamera returns a camera looking south at the horizon.
func NewLookCamera(fov float64) *LookCamera {
	c := &LookCamera{
		Azimuth:         180,
		FOV:             fov,
		MinFOV:          5,
		MaxFOV:          220,
		MinAltitude:     -89,
		MaxAltitude:     89,
		DragSensitivity: 0.15,
		ZoomSensitivity: 0.1,
		WalkSpeed:       4,
	}
	c.FOV = mgl64.Clamp(c.FOV, c.MinFOV, c.MaxFOV)
	return c
}

// Direction returns the unit view vector.
func (c *LookCamera) Direction() mgl64.Vec3 {
	return horizontal(c.Azimuth, c.Altitude)
}

// SetDirection points the camera along d. Zero vectors are ignored.
func (c *LookCamera) SetDirection(d mgl64.Vec3) {
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.Altitude = mgl64.Clamp(mgl64.RadToDeg(math.Asin(mgl64.Clamp(d.Z(), -1, 1))), c.MinAltitude, c.MaxAltitude)
	c.Azimuth = normalize(mgl64.RadToDeg(math.Atan2(d.Y(), -d.X())))
}

// HandleDrag drags the sky: moving the mouse right turns the view left.
// The rate scales with the field of view.
func (c *LookCamera) HandleDrag(deltaX, deltaY float32) {
	k := c.DragSensitivity * c.FOV / 60
	c.Azimuth = normalize(c.Azimuth - float64(deltaX)*k)
	c.Altitude = mgl64.Clamp(c.Altitude+float64(deltaY)*k, c.MinAltitude, c.MaxAltitude)
}

// HandleZoom narrows the field of view for positive wheel steps.
func (c *LookCamera) HandleZoom(delta float32) {
	c.FOV = mgl64.Clamp(c.FOV-float64(delta)*c.FOV*c.ZoomSensitivity, c.MinFOV, c.MaxFOV)
}

// Walk returns the horizontal displacement for dt seconds of walking.
// forward and right are in [-1,1].
func (c *LookCamera) Walk(forward, right, dt float64) mgl64.Vec3 {
	f := horizontal(c.Azimuth, 0).Mul(forward)
	r := horizontal(c.Azimuth+90, 0).Mul(right)
	return f.Add(r).Mul(c.WalkSpeed * dt)
}

func horizontal(azimuth, altitude float64) mgl64.Vec3 {
	az := mgl64.DegToRad(azimuth)
	alt := mgl64.DegToRad(altitude)
	return mgl64.Vec3{
		-math.Cos(alt) * math.Cos(az),
		math.Cos(alt) * math.Sin(az),
		math.Sin(alt),
	}
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
