package vortex

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Velocity is a zonal/meridional velocity in m/s.
type Velocity struct {
	U float64
	V float64
}

// TrackPoint is one vortex center fix. Velocity is the center's translation
// velocity and may be nil when the track source does not supply it.
type TrackPoint struct {
	Time     time.Time
	Lon      float64
	Lat      float64
	Velocity *Velocity
}

// Point returns the fix as an orb point (lon, lat).
func (p TrackPoint) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Track is a center track ordered by time, one point per field time step.
type Track []TrackPoint

// Validate checks that the track is non-empty and every fix is a finite
// position with latitude in [-90, 90]. Longitudes may use either the
// [-180, 180] or the [0, 360] convention.
func (t Track) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no points", ErrInvalidTrack)
	}
	for i, p := range t {
		ll := s2.LatLngFromDegrees(p.Lat, math.Remainder(p.Lon, 360))
		if !ll.IsValid() {
			return fmt.Errorf("%w: point %d at lon=%v lat=%v", ErrInvalidTrack, i, p.Lon, p.Lat)
		}
	}
	return nil
}

// Centers returns the positions of the track.
func (t Track) Centers() []Center {
	out := make([]Center, len(t))
	for i, p := range t {
		out[i] = Center{Lon: p.Lon, Lat: p.Lat}
	}
	return out
}

// TimeCoords returns the fix times as Unix seconds.
func (t Track) TimeCoords() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = float64(p.Time.Unix())
	}
	return out
}

// Velocities returns the supplied center velocities.
func (t Track) Velocities() ([]Velocity, error) {
	out := make([]Velocity, len(t))
	for i, p := range t {
		if p.Velocity == nil {
			return nil, fmt.Errorf("%w: point %d", ErrMissingVelocity, i)
		}
		out[i] = *p.Velocity
	}
	return out, nil
}

// TranslationVelocity derives the center velocity at every fix from the
// positions: centered differences inside the track, one-sided at the ends.
// A single fix does not move.
func (t Track) TranslationVelocity() ([]Velocity, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(t); i++ {
		if !t[i].Time.After(t[i-1].Time) {
			return nil, fmt.Errorf("%w: point %d at %s", ErrTrackOrder, i, t[i].Time.Format(time.RFC3339))
		}
	}

	out := make([]Velocity, len(t))
	if len(t) == 1 {
		return out, nil
	}
	for i := range t {
		a, b := max(i-1, 0), min(i+1, len(t)-1)
		from, to := t[a].Point(), t[b].Point()
		speed := geo.DistanceHaversine(from, to) / t[b].Time.Sub(t[a].Time).Seconds()
		sin, cos := math.Sincos(radians(geo.Bearing(from, to)))
		out[i] = Velocity{U: speed * sin, V: speed * cos}
	}
	return out, nil
}

// WithTranslationVelocity returns a copy of t where fixes without a velocity
// get the one derived from positions. Positions are not consulted when every
// fix already carries a velocity.
func (t Track) WithTranslationVelocity() (Track, error) {
	if !slices.ContainsFunc(t, func(p TrackPoint) bool { return p.Velocity == nil }) {
		return slices.Clone(t), nil
	}
	derived, err := t.TranslationVelocity()
	if err != nil {
		return nil, err
	}
	out := make(Track, len(t))
	for i, p := range t {
		if p.Velocity == nil {
			v := derived[i]
			p.Velocity = &v
		}
		out[i] = p
	}
	return out, nil
}

// VelocityFields returns the center velocity as u/v fields along timeDim, or
// as scalars for a single-point track, ready for StormRelative.
func (t Track) VelocityFields(timeDim string) (uc, vc Field, err error) {
	vel, err := t.Velocities()
	if err != nil {
		return Field{}, Field{}, err
	}
	us := make([]float64, len(vel))
	vs := make([]float64, len(vel))
	for i, v := range vel {
		us[i], vs[i] = v.U, v.V
	}
	if len(vel) == 1 {
		return Field{Name: "uc", Values: us}, Field{Name: "vc", Values: vs}, nil
	}
	dims := []string{timeDim}
	shape := []int{len(vel)}
	coords := map[string][]float64{timeDim: t.TimeCoords()}
	return Field{Name: "uc", Dims: dims, Shape: shape, Coords: coords, Values: us},
		Field{Name: "vc", Dims: dims, Shape: shape, Coords: coords, Values: vs}, nil
}
