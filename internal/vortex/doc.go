// Package vortex converts fields on a regular longitude/latitude grid into a
// storm-centered cylindrical (azimuth, radius) grid that moves with a vortex
// center, and splits horizontal winds into azimuthal and radial parts.
//
// # Grid
//
// A [Grid] has AzimuthCount azimuths evenly spaced over [0, 360) and
// RadiusCount radii evenly spaced over [0, MaxRadius], both in degrees. The
// azimuth follows the meteorological convention (0 = north). Radius is the
// great-circle angular distance from the center.
//
// # Geometry
//
// [Locate] maps (center, azimuth, radius) to a longitude, latitude and local
// bearing eta with closed-form spherical trigonometry:
//
//	lat  = asin(sin(lat0)cos(r) + cos(lat0)sin(r)cos(a))
//	dlam = asin(sin(r)sin(a)) / cos(lat)
//	lon  = lon0 - dlam
//	eta  = acos(sin(lat0)sin(dlam)sin(a) - cos(dlam)cos(a))
//
// followed by eta = pi - eta for a < 180 and eta = eta + pi otherwise.
// [Geometry] holds these values for every (time, azim, radi) point.
//
// # Resampling
//
// [Resampler.Resample] accepts a [Source], a tagged union of one field, an
// ordered collection, or a named [Dataset], and returns the same variant with
// each field's lon/lat dims replaced by azim/radi. Values come from bilinear
// interpolation of each lon/lat slice at the sample points of the matching
// time step. Points outside the source grid are NaN under
// [OutOfDomainMissing] or the nearest-edge value under [OutOfDomainClamp];
// there is no longitude wraparound.
//
// A track with one point applies to every time step. Otherwise the track
// length must equal the field's time dim, and a field without a time dim
// gains one.
//
// # Vectors
//
// [Project] rotates u/v into azimuthal/radial components with eta.
// [StormRelative] removes the center translation, whose projection at each
// azimuth is given by [TranslationComponents]. [Track.TranslationVelocity]
// derives the center velocity from consecutive fixes when a track source does
// not provide it.
//
// Everything in this package is a pure function of its inputs. Centers at or
// very near a pole are not special-cased and can yield degenerate values.
package vortex
