package vortex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Dimension names of the cylindrical grid.
const (
	AzimuthDim = "azim"
	RadiusDim  = "radi"
)

// Defaults for a cylindrical grid: 10 degree azimuth spacing out to 10 degrees
// of great-circle radius.
const (
	DefaultAzimuthCount = 36
	DefaultRadiusCount  = 11
	DefaultMaxRadius    = 10.0
)

// Grid describes the static azimuth/radius grid of an analysis.
type Grid struct {
	AzimuthCount int
	RadiusCount  int
	MaxRadius    float64 // degrees of great-circle distance
}

// DefaultGrid returns a 36 x 11 grid reaching 10 degrees from the center.
func DefaultGrid() Grid {
	return Grid{
		AzimuthCount: DefaultAzimuthCount,
		RadiusCount:  DefaultRadiusCount,
		MaxRadius:    DefaultMaxRadius,
	}
}

// Validate checks that the grid has at least one point along each axis and a
// finite, non-negative radius no larger than a half great circle.
func (g Grid) Validate() error {
	if g.AzimuthCount < 1 {
		return fmt.Errorf("%w: azimuth count %d", ErrInvalidGrid, g.AzimuthCount)
	}
	if g.RadiusCount < 1 {
		return fmt.Errorf("%w: radius count %d", ErrInvalidGrid, g.RadiusCount)
	}
	if math.IsNaN(g.MaxRadius) || g.MaxRadius < 0 || g.MaxRadius > 180 {
		return fmt.Errorf("%w: max radius %v", ErrInvalidGrid, g.MaxRadius)
	}
	return nil
}

// Azimuths returns AzimuthCount values evenly spaced over [0, 360).
func (g Grid) Azimuths() []float64 {
	if g.AzimuthCount <= 1 {
		return []float64{0}
	}
	n := float64(g.AzimuthCount)
	return floats.Span(make([]float64, g.AzimuthCount), 0, 360-360/n)
}

// Radii returns RadiusCount values evenly spaced over [0, MaxRadius].
func (g Grid) Radii() []float64 {
	if g.RadiusCount <= 1 {
		return []float64{0}
	}
	return floats.Span(make([]float64, g.RadiusCount), 0, g.MaxRadius)
}

// Points is the number of (azimuth, radius) points per time step.
func (g Grid) Points() int {
	return g.AzimuthCount * g.RadiusCount
}
