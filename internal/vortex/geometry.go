package vortex

import (
	"math"
	"slices"

	"github.com/golang/geo/s1"
)

// Center is a vortex center position in degrees.
type Center struct {
	Lon float64
	Lat float64
}

// Sample is the location of one cylindrical grid point. Lon and Lat are in
// degrees; Eta is the bearing angle in radians, the angle between the
// radial direction and local north at the sample point.
type Sample struct {
	Lon float64
	Lat float64
	Eta float64
}

// Locate maps the grid point at azimuth and radius (both in degrees) around
// c onto the sphere.
//
// The bearing returned by acos is two-valued over [0, pi]; it is folded so
// that it stays continuous across the whole azimuth range, which the
// tangential/radial rotation depends on. Centers at or near the poles are not
// special-cased and may produce degenerate longitudes.
func Locate(c Center, azimuth, radius float64) Sample {
	lat0 := radians(c.Lat)
	a := radians(azimuth)
	r := radians(radius)

	sinA, cosA := math.Sincos(a)
	sinR, cosR := math.Sincos(r)
	sinLat0, cosLat0 := math.Sincos(lat0)

	lat := math.Asin(clampUnit(sinLat0*cosR + cosLat0*sinR*cosA))
	dlam := math.Asin(clampUnit(sinR*sinA)) / math.Cos(lat)

	sinD, cosD := math.Sincos(dlam)
	eta := math.Acos(clampUnit(sinLat0*sinD*sinA - cosD*cosA))
	if azimuth < 180 {
		eta = math.Pi - eta
	} else {
		eta += math.Pi
	}

	return Sample{
		Lon: c.Lon - degrees(dlam),
		Lat: degrees(lat),
		Eta: eta,
	}
}

// Geometry holds the sample coordinates of a moving cylindrical grid, one
// (time, azim, radi) field each for longitude, latitude and bearing.
type Geometry struct {
	Lons Field
	Lats Field
	Etas Field
}

// Steps is the number of time steps covered by the geometry.
func (g Geometry) Steps() int {
	if len(g.Lons.Shape) == 0 {
		return 0
	}
	return g.Lons.Shape[0]
}

// at returns the sample at time step t and flat grid offset p.
func (g Geometry) at(t, p int) Sample {
	i := t*(g.Lons.Shape[1]*g.Lons.Shape[2]) + p
	return Sample{Lon: g.Lons.Values[i], Lat: g.Lats.Values[i], Eta: g.Etas.Values[i]}
}

// NewGeometry evaluates Locate for every center and grid point.
func NewGeometry(centers []Center, times []float64, azimuths, radii []float64, timeDim string) Geometry {
	nt, na, nr := len(centers), len(azimuths), len(radii)
	dims := []string{timeDim, AzimuthDim, RadiusDim}
	shape := []int{nt, na, nr}
	coords := map[string][]float64{
		AzimuthDim: slices.Clone(azimuths),
		RadiusDim:  slices.Clone(radii),
	}
	if len(times) == nt {
		coords[timeDim] = slices.Clone(times)
	}

	lons := make([]float64, nt*na*nr)
	lats := make([]float64, nt*na*nr)
	etas := make([]float64, nt*na*nr)

	i := 0
	for _, c := range centers {
		for _, a := range azimuths {
			for _, r := range radii {
				s := Locate(c, a, r)
				lons[i], lats[i], etas[i] = s.Lon, s.Lat, s.Eta
				i++
			}
		}
	}

	return Geometry{
		Lons: Field{Name: "lon", Dims: dims, Shape: shape, Coords: coords, Values: lons},
		Lats: Field{Name: "lat", Dims: slices.Clone(dims), Shape: slices.Clone(shape), Coords: cloneCoords(coords), Values: lats},
		Etas: Field{Name: "eta", Dims: slices.Clone(dims), Shape: slices.Clone(shape), Coords: cloneCoords(coords), Values: etas},
	}
}

func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

func degrees(rad float64) float64 {
	return s1.Angle(rad).Degrees()
}

// clampUnit keeps rounding error from pushing an asin/acos argument past +-1.
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
