package vortex

import (
	"fmt"
	"math"
)

// Project rotates zonal/meridional components u and v, already on the
// cylindrical grid, into azimuthal (ut) and radial (vr) components using the
// bearing field eta in radians:
//
//	ut = -u*cos(eta) - v*sin(eta)
//	vr = -u*sin(eta) + v*cos(eta)
//
// u and v must share dims and shape. eta is matched to them by dimension
// name; its size-1 dims broadcast.
func Project(u, v, eta Field) (ut, vr Field, err error) {
	for _, f := range []Field{u, v, eta} {
		if err := f.Validate(); err != nil {
			return Field{}, Field{}, err
		}
	}
	if !u.SameLayout(v) {
		return Field{}, Field{}, fmt.Errorf("%w: u %v%v vs v %v%v", ErrShapeMismatch, u.Dims, u.Shape, v.Dims, v.Shape)
	}
	idx, err := broadcastIndex(u, eta)
	if err != nil {
		return Field{}, Field{}, err
	}

	ut, vr = u.like("ut"), u.like("vr")
	for i, j := range idx {
		sin, cos := math.Sincos(eta.Values[j])
		ut.Values[i] = -u.Values[i]*cos - v.Values[i]*sin
		vr.Values[i] = -u.Values[i]*sin + v.Values[i]*cos
	}
	return ut, vr, nil
}
