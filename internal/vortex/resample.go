package vortex

import (
	"fmt"
	"slices"
)

// Options configures a Resampler.
type Options struct {
	Grid    Grid
	LonDim  string
	LatDim  string
	TimeDim string
	Policy  OutOfDomain
}

// DefaultOptions returns the default grid with lon/lat/time dimension names
// and missing values outside the source grid.
func DefaultOptions() Options {
	return Options{
		Grid:    DefaultGrid(),
		LonDim:  "lon",
		LatDim:  "lat",
		TimeDim: "time",
		Policy:  OutOfDomainMissing,
	}
}

// Resampler interpolates lat/lon fields onto a cylindrical grid that moves
// with a center track. It holds no mutable state and is safe for concurrent
// use.
type Resampler struct {
	opts     Options
	azimuths []float64
	radii    []float64
}

// Result is the output of Resample: the resampled fields, in the same variant
// as the input, plus the sample coordinate grids.
type Result struct {
	Source Source
	Geometry
}

// NewResampler validates opts and precomputes the azimuth and radius axes.
func NewResampler(opts Options) (*Resampler, error) {
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}
	names := []string{opts.LonDim, opts.LatDim, opts.TimeDim}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: empty dimension name", ErrDimension)
		}
		if n == AzimuthDim || n == RadiusDim || slices.Contains(names[:i], n) {
			return nil, fmt.Errorf("%w: dimension name %q is reserved or repeated", ErrDimension, n)
		}
	}
	return &Resampler{
		opts:     opts,
		azimuths: opts.Grid.Azimuths(),
		radii:    opts.Grid.Radii(),
	}, nil
}

// Options returns the configuration the resampler was built with.
func (r *Resampler) Options() Options { return r.opts }

// Azimuths returns the azimuth axis in degrees.
func (r *Resampler) Azimuths() []float64 { return slices.Clone(r.azimuths) }

// Radii returns the radius axis in degrees.
func (r *Resampler) Radii() []float64 { return slices.Clone(r.radii) }

// Geometry computes the sample coordinates for every step of track.
func (r *Resampler) Geometry(track Track) (Geometry, error) {
	if err := track.Validate(); err != nil {
		return Geometry{}, err
	}
	return NewGeometry(track.Centers(), track.TimeCoords(), r.azimuths, r.radii, r.opts.TimeDim), nil
}

// Resample interpolates src at the cylindrical grid of track.
func (r *Resampler) Resample(track Track, src Source) (Result, error) {
	geom, err := r.Geometry(track)
	if err != nil {
		return Result{}, err
	}
	return r.ResampleGeometry(geom, src)
}

// ResampleGeometry interpolates src at precomputed sample coordinates, so a
// geometry can be shared between calls for the same track.
func (r *Resampler) ResampleGeometry(geom Geometry, src Source) (Result, error) {
	if src.kind == KindUnsupported {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, src.kind)
	}
	if geom.Steps() == 0 || geom.Lons.Len(AzimuthDim) != len(r.azimuths) || geom.Lons.Len(RadiusDim) != len(r.radii) {
		return Result{}, fmt.Errorf("%w: geometry does not match the resampler grid", ErrShapeMismatch)
	}

	out := make([]Field, len(src.fields))
	for i, f := range src.fields {
		rf, err := r.resampleField(geom, f)
		if err != nil {
			return Result{}, fmt.Errorf("resample %q: %w", f.Name, err)
		}
		out[i] = rf
	}
	return Result{Source: Source{kind: src.kind, fields: out}, Geometry: geom}, nil
}

func (r *Resampler) resampleField(geom Geometry, f Field) (Field, error) {
	if err := f.Validate(); err != nil {
		return Field{}, err
	}
	lonAx, latAx := f.Axis(r.opts.LonDim), f.Axis(r.opts.LatDim)
	if lonAx < 0 || latAx < 0 {
		return Field{}, fmt.Errorf("%w: field needs %q and %q dims, has %v", ErrDimension, r.opts.LonDim, r.opts.LatDim, f.Dims)
	}
	if slices.Contains(f.Dims, AzimuthDim) || slices.Contains(f.Dims, RadiusDim) {
		return Field{}, fmt.Errorf("%w: field already has cylindrical dims", ErrDimension)
	}
	lon, err := newAxis(r.opts.LonDim, f.Coords[r.opts.LonDim])
	if err != nil {
		return Field{}, err
	}
	lat, err := newAxis(r.opts.LatDim, f.Coords[r.opts.LatDim])
	if err != nil {
		return Field{}, err
	}

	nt := geom.Steps()
	timeAx := f.Axis(r.opts.TimeDim)
	if timeAx >= 0 && nt != 1 && f.Shape[timeAx] != nt {
		return Field{}, fmt.Errorf("%w: track has %d steps, field %q dim has %d",
			ErrTimeMismatch, nt, r.opts.TimeDim, f.Shape[timeAx])
	}
	addTime := timeAx < 0 && nt > 1

	// Output layout: [time], passthrough dims in source order, azim, radi.
	// srcAx maps each outer output axis to its source axis (-1 for an added
	// time axis).
	var (
		dims   []string
		shape  []int
		srcAx  []int
		coords = map[string][]float64{}
	)
	if addTime {
		dims = append(dims, r.opts.TimeDim)
		shape = append(shape, nt)
		srcAx = append(srcAx, -1)
		if c, ok := geom.Lons.Coords[r.opts.TimeDim]; ok {
			coords[r.opts.TimeDim] = slices.Clone(c)
		}
	}
	for ax, d := range f.Dims {
		if ax == lonAx || ax == latAx {
			continue
		}
		dims = append(dims, d)
		shape = append(shape, f.Shape[ax])
		srcAx = append(srcAx, ax)
		if c, ok := f.Coords[d]; ok {
			coords[d] = slices.Clone(c)
		}
	}
	outer := len(dims)
	na, nr := len(r.azimuths), len(r.radii)
	dims = append(dims, AzimuthDim, RadiusDim)
	shape = append(shape, na, nr)
	coords[AzimuthDim] = slices.Clone(r.azimuths)
	coords[RadiusDim] = slices.Clone(r.radii)

	res := Field{Name: f.Name, Dims: dims, Shape: shape, Coords: coords}
	res.Values = make([]float64, res.Size())

	srcStrides := strides(f.Shape)
	p := plane{
		values:    f.Values,
		lonStride: srcStrides[lonAx],
		latStride: srcStrides[latAx],
		lon:       lon,
		lat:       lat,
		policy:    r.opts.Policy,
	}

	idx := make([]int, outer)
	points := na * nr
	for block := 0; ; block++ {
		t, base := 0, 0
		for k, ax := range srcAx {
			switch {
			case ax < 0:
				t = idx[k]
			default:
				base += idx[k] * srcStrides[ax]
				if ax == timeAx && nt > 1 {
					t = idx[k]
				}
			}
		}
		p.base = base
		dst := res.Values[block*points : (block+1)*points]
		for g := range dst {
			s := geom.at(t, g)
			dst[g] = p.bilinear(s.Lon, s.Lat)
		}
		if !nextIndex(idx, shape[:outer]) {
			break
		}
	}
	return res, nil
}

// nextIndex advances a row-major multi-index; false once it wraps.
func nextIndex(idx, shape []int) bool {
	for ax := len(idx) - 1; ax >= 0; ax-- {
		idx[ax]++
		if idx[ax] < shape[ax] {
			return true
		}
		idx[ax] = 0
	}
	return false
}
