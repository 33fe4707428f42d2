// Package domain models the messages exchanged by the vortex ETL service.
//
// # Requests
//
// A [VortexRequest] arrives on the source topic as JSON. It carries a center
// track, the gridded fields to move onto the storm-centered grid, and the
// names of any u/v field pairs to decompose:
//
//	{
//	  "id": "haima-2004",
//	  "track": [{"time": "2004-09-11T00:00:00Z", "lon": 125.1, "lat": 20.3, "u": -4.2, "v": 3.1}],
//	  "grid": {"azimuth_count": 72, "radius_count": 31, "max_radius": 6},
//	  "fields": [{"name": "u", "dims": ["time", "lat", "lon"], "coords": {...}, "values": [...]}],
//	  "vectors": [{"u": "u", "v": "v"}],
//	  "storm_relative": true
//	}
//
// The track is aligned with the fields' time axis by the producer: one fix
// per time step, or a single fix for all of them. Center velocities are
// optional; when storm-relative winds are requested without them the
// service derives them from consecutive fixes. The grid is optional and
// defaults to the service configuration.
//
// # Fields
//
// Every dim of a [Field] must have coordinates and the shape is implied by
// them. Values are row-major. JSON null marks a missing value, which the
// engine represents as NaN; resampled points outside the source grid come
// back as null.
//
// # Results
//
// A [CylindricalEvent] holds each field on (azim, radi) plus passthrough dims,
// the longitude, latitude and bearing of every (time, azim, radi) sample, and
// the azimuthal/radial [Components] of each vector pair. Events are keyed by
// request ID.
package domain
