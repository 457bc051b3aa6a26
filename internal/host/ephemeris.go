// Package host provides the services a planetarium would give the scenery
// renderer: body positions, the landscape brightness and the simulation
// clock.
package host

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/engine/lighting"
)

const (
	j2000 = 2451545.0
	// unixEpochJD is the Julian day of 1970-01-01T00:00:00Z.
	unixEpochJD = 2440587.5
	// fullMoonMagnitude is the moon's visual magnitude at zero phase angle.
	fullMoonMagnitude = -12.73
)

// JulianDay converts t to a Julian day (UT).
func JulianDay(t time.Time) float64 {
	return unixEpochJD + float64(t.UnixNano())/float64(24*time.Hour)
}

// Observer is a location on Earth in degrees, east longitude positive.
type Observer struct {
	Latitude  float64
	Longitude float64
}

// Sky is the ephemeris snapshot the light model needs.
type Sky struct {
	// Alt-az unit vectors, +X south, +Y east, +Z zenith.
	Sun   mgl64.Vec3
	Moon  mgl64.Vec3
	Venus mgl64.Vec3

	MoonMagnitude   float32
	VenusPhaseAngle float32 // radians
}

// Compute returns the sky at jd. Accuracy is a fraction of a degree for
// the sun and moon, which is plenty for lighting.
func (o Observer) Compute(jd float64) Sky {
	eps := obliquity(jd)
	sun := eclipticVector(sunLongitude(jd), 0)
	moon := eclipticVector(moonEcliptic(jd))
	venus, phase := venusGeocentric(jd)

	sky := Sky{
		Sun:             o.horizontal(toEquatorial(sun, eps), jd),
		Moon:            o.horizontal(toEquatorial(moon, eps), jd),
		Venus:           o.horizontal(toEquatorial(venus.Normalize(), eps), jd),
		VenusPhaseAngle: float32(phase),
	}
	elongation := mgl64.RadToDeg(math.Acos(mgl64.Clamp(sun.Dot(moon), -1, 1)))
	sky.MoonMagnitude = float32(moonMagnitude(180 - elongation))
	return sky
}

// Inputs fills the ephemeris part of the light model inputs.
func (s Sky) Inputs() lighting.Inputs {
	return lighting.Inputs{
		Sun:             s.Sun,
		Moon:            s.Moon,
		Venus:           s.Venus,
		MoonMagnitude:   s.MoonMagnitude,
		VenusPhaseAngle: s.VenusPhaseAngle,
		EclipseFactor:   1,
	}
}

// horizontal rotates an equatorial unit vector into the alt-az frame.
func (o Observer) horizontal(eq mgl64.Vec3, jd float64) mgl64.Vec3 {
	ra := mgl64.RadToDeg(math.Atan2(eq.Y(), eq.X()))
	dec := math.Asin(mgl64.Clamp(eq.Z(), -1, 1))

	h := mgl64.DegToRad(siderealTime(jd) + o.Longitude - ra)
	lat := mgl64.DegToRad(o.Latitude)

	alt := math.Asin(math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(h))
	az := math.Atan2(-math.Cos(dec)*math.Sin(h),
		math.Sin(dec)*math.Cos(lat)-math.Cos(dec)*math.Sin(lat)*math.Cos(h))
	return lighting.AltAzDirection(mgl64.RadToDeg(az), mgl64.RadToDeg(alt))
}

// siderealTime is the Greenwich mean sidereal time in degrees.
func siderealTime(jd float64) float64 {
	return normDeg(280.46061837 + 360.98564736629*(jd-j2000))
}

func obliquity(jd float64) float64 {
	return 23.439 - 0.0000004*(jd-j2000)
}

// sunLongitude is the sun's apparent ecliptic longitude in degrees.
func sunLongitude(jd float64) float64 {
	n := jd - j2000
	l := 280.460 + 0.9856474*n
	g := mgl64.DegToRad(357.528 + 0.9856003*n)
	return normDeg(l + 1.915*math.Sin(g) + 0.020*math.Sin(2*g))
}

// moonEcliptic returns the moon's geocentric ecliptic longitude and
// latitude in degrees.
func moonEcliptic(jd float64) (lon, lat float64) {
	t := (jd - j2000) / 36525
	s := func(deg float64) float64 { return math.Sin(mgl64.DegToRad(deg)) }

	lon = 218.32 + 481267.881*t +
		6.29*s(135.0+477198.87*t) -
		1.27*s(259.3-413335.36*t) +
		0.66*s(235.7+890534.22*t) +
		0.21*s(269.9+954397.74*t) -
		0.19*s(357.5+35999.05*t) -
		0.11*s(186.5+966404.03*t)
	lat = 5.13*s(93.3+483202.02*t) +
		0.28*s(228.2+960400.89*t) -
		0.28*s(318.3+6003.15*t) -
		0.17*s(217.6-407332.21*t)
	return normDeg(lon), lat
}

// moonMagnitude is the visual magnitude at phase angle i in degrees.
func moonMagnitude(i float64) float64 {
	i = math.Abs(i)
	return fullMoonMagnitude + 0.026*i + 4e-9*i*i*i*i
}

type orbit struct {
	a, e, incl float64
	l0, l1     float64 // mean longitude at J2000 and per century
	peri, node float64
}

var (
	venusOrbit = orbit{0.72333566, 0.00677672, 3.39467605, 181.97909950, 58517.81538729, 131.60246718, 76.67984255}
	earthOrbit = orbit{1.00000261, 0.01671123, -0.00001531, 100.46457166, 35999.37244981, 102.93768193, 0}
)

// heliocentric returns the ecliptic position in AU.
func (o orbit) heliocentric(t float64) mgl64.Vec3 {
	m := mgl64.DegToRad(normDeg(o.l0 + o.l1*t - o.peri))
	e := m
	for i := 0; i < 8; i++ {
		e -= (e - o.e*math.Sin(e) - m) / (1 - o.e*math.Cos(e))
	}
	xp := o.a * (math.Cos(e) - o.e)
	yp := o.a * math.Sqrt(1-o.e*o.e) * math.Sin(e)

	w := mgl64.DegToRad(o.peri - o.node)
	n := mgl64.DegToRad(o.node)
	i := mgl64.DegToRad(o.incl)
	cw, sw := math.Cos(w), math.Sin(w)
	cn, sn := math.Cos(n), math.Sin(n)
	ci, si := math.Cos(i), math.Sin(i)
	return mgl64.Vec3{
		(cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		(cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		sw*si*xp + cw*si*yp,
	}
}

// venusGeocentric returns Venus' geocentric ecliptic position and its phase
// angle in radians.
func venusGeocentric(jd float64) (mgl64.Vec3, float64) {
	t := (jd - j2000) / 36525
	v := venusOrbit.heliocentric(t)
	e := earthOrbit.heliocentric(t)

	toSun := v.Mul(-1).Normalize()
	toEarth := e.Sub(v).Normalize()
	return e.Sub(v).Mul(-1), math.Acos(mgl64.Clamp(toSun.Dot(toEarth), -1, 1))
}

func eclipticVector(lon, lat float64) mgl64.Vec3 {
	l, b := mgl64.DegToRad(lon), mgl64.DegToRad(lat)
	return mgl64.Vec3{math.Cos(b) * math.Cos(l), math.Cos(b) * math.Sin(l), math.Sin(b)}
}

func toEquatorial(v mgl64.Vec3, eps float64) mgl64.Vec3 {
	e := mgl64.DegToRad(eps)
	return mgl64.Vec3{
		v.X(),
		v.Y()*math.Cos(e) - v.Z()*math.Sin(e),
		v.Y()*math.Sin(e) + v.Z()*math.Cos(e),
	}
}

func normDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
