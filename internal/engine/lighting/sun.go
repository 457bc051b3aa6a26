package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AltAzDirection converts an azimuth (degrees from north through east) and an
// altitude (degrees above the horizon) to a unit vector in the horizontal
// frame: +X south, +Y east, +Z zenith.
func AltAzDirection(azimuth, altitude float64) mgl64.Vec3 {
	az := mgl64.DegToRad(azimuth)
	alt := mgl64.DegToRad(altitude)

	return mgl64.Vec3{
		-math.Cos(alt) * math.Cos(az),
		math.Cos(alt) * math.Sin(az),
		math.Sin(alt),
	}
}

// Altitude returns the altitude in degrees of a direction in the horizontal frame.
func Altitude(dir mgl64.Vec3) float64 {
	n := dir.Normalize()
	return mgl64.RadToDeg(math.Asin(mgl64.Clamp(n.Z(), -1, 1)))
}
