package vortex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resampleUV(t *testing.T, r *Resampler, track Track, u, v Field) (Field, Field, Geometry) {
	t.Helper()
	ds, err := NewDataset(u, v)
	require.NoError(t, err)
	res, err := r.Resample(track, Named(ds))
	require.NoError(t, err)
	out, _ := res.Source.Dataset()
	ru, _ := out.Get(u.Name)
	rv, _ := out.Get(v.Name)
	return ru, rv, res.Geometry
}

func TestProject_UniformEastwardWind(t *testing.T) {
	r := newTestResampler(t, nil)
	lons, lats := span(100, 1, 41), span(0, 1, 41)
	u, v, geom := resampleUV(t, r, trackOf(Center{120, 20}),
		latLonField("u", lons, lats, constant(10)),
		latLonField("v", lons, lats, constant(0)))

	ut, vr, err := Project(u, v, geom.Etas)
	require.NoError(t, err)
	assert.Equal(t, "ut", ut.Name)
	assert.Equal(t, "vr", vr.Name)
	assert.Equal(t, u.Dims, ut.Dims)

	for i := range ut.Values {
		eta := geom.Etas.Values[i]
		assert.InDelta(t, -10*math.Cos(eta), ut.Values[i], 1e-9)
		assert.InDelta(t, -10*math.Sin(eta), vr.Values[i], 1e-9)
	}
}

func TestProject_OutputCoordsAreIndependent(t *testing.T) {
	r := newTestResampler(t, nil)
	lons, lats := span(100, 1, 41), span(0, 1, 41)
	u, v, geom := resampleUV(t, r, trackOf(Center{120, 20}),
		latLonField("u", lons, lats, constant(3)),
		latLonField("v", lons, lats, constant(4)))

	ut, vr, err := Project(u, v, geom.Etas)
	require.NoError(t, err)
	ut.Coords[AzimuthDim][1] = 999

	assert.InDelta(t, 10.0, u.Coords[AzimuthDim][1], 0)
	assert.InDelta(t, 10.0, vr.Coords[AzimuthDim][1], 0)
	assert.InDelta(t, 10.0, r.Azimuths()[1], 0)
}

func TestProject_PreservesMagnitude(t *testing.T) {
	r := newTestResampler(t, nil)
	lons, lats := span(100, 0.5, 81), span(0, 0.5, 81)
	track := trackOf(Center{118, 17}, Center{119.5, 18.2})
	u, v, geom := resampleUV(t, r, track,
		timeLatLonField("u", 2, lons, lats, func(ti int, lon, lat float64) float64 { return math.Sin(lon/7) * 20 * float64(ti+1) }),
		timeLatLonField("v", 2, lons, lats, func(ti int, lon, lat float64) float64 { return math.Cos(lat/5)*15 - float64(ti) }))

	ut, vr, err := Project(u, v, geom.Etas)
	require.NoError(t, err)

	for i := range u.Values {
		before := u.Values[i]*u.Values[i] + v.Values[i]*v.Values[i]
		after := ut.Values[i]*ut.Values[i] + vr.Values[i]*vr.Values[i]
		require.InDelta(t, before, after, 1e-9*math.Max(1, before), "index %d", i)
	}
}

func TestProject_BroadcastsOverLevels(t *testing.T) {
	eta := Field{
		Name:   "eta",
		Dims:   []string{"time", AzimuthDim, RadiusDim},
		Shape:  []int{1, 2, 1},
		Values: []float64{0, math.Pi / 2},
	}
	// (lev, azim, radi) with a single-step track: eta's time dim broadcasts.
	u := Field{Name: "u", Dims: []string{"lev", AzimuthDim, RadiusDim}, Shape: []int{2, 2, 1}, Values: []float64{1, 1, 2, 2}}
	v := Field{Name: "v", Dims: []string{"lev", AzimuthDim, RadiusDim}, Shape: []int{2, 2, 1}, Values: []float64{0, 0, 0, 0}}

	ut, vr, err := Project(u, v, eta)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 0, -2, 0}, ut.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{0, -1, 0, -2}, vr.Values, 1e-12)
}

func TestProject_ShapeMismatch(t *testing.T) {
	eta := Field{Name: "eta", Dims: []string{AzimuthDim}, Shape: []int{2}, Values: []float64{0, 1}}
	u := Field{Name: "u", Dims: []string{AzimuthDim}, Shape: []int{2}, Values: []float64{1, 2}}

	t.Run("u and v differ", func(t *testing.T) {
		v := Field{Name: "v", Dims: []string{AzimuthDim}, Shape: []int{3}, Values: []float64{1, 2, 3}}
		_, _, err := Project(u, v, eta)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("eta dim not in u", func(t *testing.T) {
		bad := Field{Name: "eta", Dims: []string{RadiusDim}, Shape: []int{2}, Values: []float64{0, 1}}
		_, _, err := Project(u, u, bad)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("eta size differs", func(t *testing.T) {
		bad := Field{Name: "eta", Dims: []string{AzimuthDim}, Shape: []int{3}, Values: []float64{0, 1, 2}}
		_, _, err := Project(u, u, bad)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}
