package vortex

import (
	"fmt"
	"math"
)

// TranslationComponents projects a center translation velocity onto the
// azimuthal and radial directions at azimuth (degrees).
//
// The -pi/2 offset turns the meteorological azimuth (0 = north, clockwise)
// into the bearing convention Project uses.
func TranslationComponents(v Velocity, azimuth float64) (azimuthal, radial float64) {
	theta := math.Atan2(v.V, v.U)
	speed := math.Hypot(v.U, v.V)
	sin, cos := math.Sincos(theta - radians(azimuth) - math.Pi/2)
	return speed * sin, speed * cos
}

// StormRelative subtracts the translation of the center (uc, vc) from the
// azimuthal and radial fields ut and vr. The azimuth of each point comes from
// the azim coordinate of ut; uc and vc are matched to ut by dimension name,
// so a time series must share ut's time dim and a scalar applies everywhere.
// A velocity series that does not fit ut reports both ErrTimeMismatch and
// ErrShapeMismatch.
func StormRelative(uc, vc, ut, vr Field) (utRel, vrRel Field, err error) {
	for _, f := range []Field{uc, vc, ut, vr} {
		if err := f.Validate(); err != nil {
			return Field{}, Field{}, err
		}
	}
	if !ut.SameLayout(vr) {
		return Field{}, Field{}, fmt.Errorf("%w: ut %v%v vs vr %v%v", ErrShapeMismatch, ut.Dims, ut.Shape, vr.Dims, vr.Shape)
	}
	if !uc.SameLayout(vc) {
		return Field{}, Field{}, fmt.Errorf("%w: center velocity components differ", ErrShapeMismatch)
	}
	az, ok := ut.Coords[AzimuthDim]
	if !ok {
		return Field{}, Field{}, fmt.Errorf("%w: %q has no %q coordinate", ErrDimension, ut.Name, AzimuthDim)
	}

	azField := Field{Name: AzimuthDim, Dims: []string{AzimuthDim}, Shape: []int{len(az)}, Values: az}
	ai, err := broadcastIndex(ut, azField)
	if err != nil {
		return Field{}, Field{}, err
	}
	vi, err := broadcastIndex(ut, uc)
	if err != nil {
		return Field{}, Field{}, fmt.Errorf("%w: center velocity: %w", ErrTimeMismatch, err)
	}

	utRel, vrRel = ut.like(ut.Name+"_rel"), vr.like(vr.Name+"_rel")
	for i := range ut.Values {
		ca, cr := TranslationComponents(Velocity{U: uc.Values[vi[i]], V: vc.Values[vi[i]]}, az[ai[i]])
		utRel.Values[i] = ut.Values[i] - ca
		vrRel.Values[i] = vr.Values[i] - cr
	}
	return utRel, vrRel, nil
}
