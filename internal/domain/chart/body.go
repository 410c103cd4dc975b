// Package chart defines the birth-chart data model consumed by the synastry
// engine: the ten canonical planetary bodies, their ecliptic longitudes, and
// the twelve house cusps.  Charts arrive pre-resolved (ephemeris lookup is an
// external collaborator); this package only validates and carries them.
package chart

// Body identifies one of the ten canonical planetary bodies.
type Body string

const (
	Sun     Body = "sun"
	Moon    Body = "moon"
	Mercury Body = "mercury"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
	Saturn  Body = "saturn"
	Uranus  Body = "uranus"
	Neptune Body = "neptune"
	Pluto   Body = "pluto"
)

// Bodies is the fixed, ordered list of canonical bodies.  The order matters:
// aspect matrices are indexed positionally by it, so it must never change.
var Bodies = [...]Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto,
}

// NumBodies is the number of canonical bodies.
const NumBodies = len(Bodies)

// bodyIndex maps each canonical body to its position in Bodies.
var bodyIndex = func() map[Body]int {
	m := make(map[Body]int, NumBodies)
	for i, b := range Bodies {
		m[b] = i
	}
	return m
}()

// Index returns the positional index of b in Bodies, or false if b is not a
// canonical body.
func Index(b Body) (int, bool) {
	i, ok := bodyIndex[b]
	return i, ok
}

// IsValid reports whether b is one of the ten canonical bodies.
func (b Body) IsValid() bool {
	_, ok := bodyIndex[b]
	return ok
}

// String returns the string representation of the body.
func (b Body) String() string {
	return string(b)
}
