package vortex

import (
	"math"
	"time"
)

var baseTime = time.Date(2004, time.October, 19, 0, 0, 0, 0, time.UTC)

// span returns n values from start in steps of step.
func span(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// latLonField builds a (lat, lon) field with values from fn.
func latLonField(name string, lons, lats []float64, fn func(lon, lat float64) float64) Field {
	values := make([]float64, 0, len(lons)*len(lats))
	for _, la := range lats {
		for _, lo := range lons {
			values = append(values, fn(lo, la))
		}
	}
	return Field{
		Name:   name,
		Dims:   []string{"lat", "lon"},
		Shape:  []int{len(lats), len(lons)},
		Coords: map[string][]float64{"lat": lats, "lon": lons},
		Values: values,
	}
}

// timeLatLonField builds a (time, lat, lon) field with values from fn.
func timeLatLonField(name string, nt int, lons, lats []float64, fn func(t int, lon, lat float64) float64) Field {
	values := make([]float64, 0, nt*len(lons)*len(lats))
	for t := 0; t < nt; t++ {
		for _, la := range lats {
			for _, lo := range lons {
				values = append(values, fn(t, lo, la))
			}
		}
	}
	return Field{
		Name:   name,
		Dims:   []string{"time", "lat", "lon"},
		Shape:  []int{nt, len(lats), len(lons)},
		Coords: map[string][]float64{"time": span(0, 21600, nt), "lat": lats, "lon": lons},
		Values: values,
	}
}

func trackOf(centers ...Center) Track {
	tr := make(Track, len(centers))
	for i, c := range centers {
		tr[i] = TrackPoint{Time: baseTime.Add(time.Duration(i) * 6 * time.Hour), Lon: c.Lon, Lat: c.Lat}
	}
	return tr
}

func constant(v float64) func(lon, lat float64) float64 {
	return func(_, _ float64) float64 { return v }
}

func inf() float64 { return math.Inf(1) }
