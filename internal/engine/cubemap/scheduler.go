package cubemap

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// JDSecond is one second expressed in Julian days.
const JDSecond = 1.0 / 86400

// DefaultLazyInterval is the default simulation time between full refreshes, in seconds.
const DefaultLazyInterval = 2.0

// movementSettleMS is how long the eye must rest before the faces skipped
// during movement are refreshed.
const movementSettleMS = 700

// Refresh is the work a frame has to do on the captured faces.
type Refresh int

const (
	// RefreshIdle reuses the faces of an earlier frame.
	RefreshIdle Refresh = iota
	// RefreshFull redraws every face.
	RefreshFull
	// RefreshDominant redraws the face the view points at.
	RefreshDominant
	// RefreshDominantAndSecond also redraws the second dominant face.
	RefreshDominantAndSecond
)

func (r Refresh) String() string {
	switch r {
	case RefreshFull:
		return "full"
	case RefreshDominant:
		return "dominant"
	case RefreshDominantAndSecond:
		return "dominant+second"
	}
	return "idle"
}

// Faces returns the faces r redraws given the current dominant faces.
func (r Refresh) Faces(dominant, second int) []int {
	switch r {
	case RefreshFull:
		return []int{FaceSouth, FaceNorth, FaceEast, FaceWest, FaceUp, FaceDown}
	case RefreshDominant:
		return []int{dominant}
	case RefreshDominantAndSecond:
		return []int{dominant, second}
	}
	return nil
}

// Sample is the clock and observer state the scheduler decides on.
type Sample struct {
	// JD is the simulation time as a Julian day.
	JD float64
	// WallMS is the wall clock in milliseconds.
	WallMS int64
	Eye    mgl64.Vec3
}

// motion tracks eye movement between frames.
type motion int

const (
	// motionStill: no partial refresh is outstanding.
	motionStill motion = iota
	// motionMoving: the eye moved last frame and only some faces were redrawn.
	motionMoving
	// motionSettling: the eye stopped after partial refreshes; a full
	// refresh follows once it has rested long enough.
	motionSettling
)

// Scheduler decides how much of the cubemap each frame redraws. Its result
// depends only on the samples it was given and on MarkRefreshed calls.
type Scheduler struct {
	// Lazy enables the refresh heuristic. Without it every frame is a full refresh.
	Lazy bool
	// Interval is the simulation time between full refreshes, in seconds.
	Interval float64
	// OnlyDominantOnMove redraws only the dominant face while the eye moves.
	OnlyDominantOnMove bool
	// SecondDominantOnMove adds the second dominant face to movement refreshes.
	SecondDominantOnMove bool

	phase     motion
	settledAt int64
	eye       mgl64.Vec3
	hasEye    bool

	lastJD     float64
	lastWallMS int64
	stale      bool
}

// NewScheduler returns a scheduler with the default settings that forces a
// full refresh first.
func NewScheduler() *Scheduler {
	return &Scheduler{
		Interval:             DefaultLazyInterval,
		OnlyDominantOnMove:   true,
		SecondDominantOnMove: true,
		stale:                true,
	}
}

// Invalidate forces the next frame to redraw every face.
func (s *Scheduler) Invalidate() { s.stale = true }

// MarkRefreshed records a completed full refresh at sample time.
func (s *Scheduler) MarkRefreshed(at Sample) {
	s.lastJD = at.JD
	s.lastWallMS = at.WallMS
	s.stale = false
}

// LastRefresh returns the simulation and wall time of the last full refresh.
func (s *Scheduler) LastRefresh() (jd float64, wallMS int64) {
	return s.lastJD, s.lastWallMS
}

// Next advances the scheduler by one frame.
func (s *Scheduler) Next(in Sample) Refresh {
	moved := !s.hasEye || in.Eye != s.eye
	s.eye = in.Eye
	s.hasEye = true

	if !s.Lazy {
		s.phase = motionStill
		return RefreshFull
	}

	switch {
	case s.stale || math.Abs(in.JD-s.lastJD) > s.Interval*JDSecond:
		s.phase = motionStill
		return RefreshFull

	case moved:
		if !s.OnlyDominantOnMove {
			s.phase = motionStill
			return RefreshFull
		}
		s.phase = motionMoving
		if s.SecondDominantOnMove {
			return RefreshDominantAndSecond
		}
		return RefreshDominant

	case s.phase == motionMoving:
		s.phase = motionSettling
		s.settledAt = in.WallMS
		return RefreshIdle

	case s.phase == motionSettling && in.WallMS-s.settledAt > movementSettleMS:
		s.phase = motionStill
		return RefreshFull
	}
	return RefreshIdle
}
