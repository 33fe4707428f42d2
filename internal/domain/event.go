package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// TrackPoint is one center fix as published by the track collaborator.
// U and V are the center translation velocity in m/s when known.
type TrackPoint struct {
	Time time.Time `json:"time"`
	Lon  float64   `json:"lon"`
	Lat  float64   `json:"lat"`
	U    *float64  `json:"u,omitempty"`
	V    *float64  `json:"v,omitempty"`
}

// GridSpec overrides the service's default cylindrical grid.
type GridSpec struct {
	AzimuthCount int     `json:"azimuth_count"`
	RadiusCount  int     `json:"radius_count"`
	MaxRadius    float64 `json:"max_radius"`
}

// Field is a gridded variable on the wire. Every dim must have coordinates;
// the shape is the length of each dim's coordinates. Values are row-major and
// null marks a missing value.
type Field struct {
	Name   string               `json:"name"`
	Dims   []string             `json:"dims"`
	Coords map[string][]float64 `json:"coords"`
	Values Values               `json:"values"`
}

// VectorPair names the zonal and meridional fields of one vector quantity.
type VectorPair struct {
	U string `json:"u"`
	V string `json:"v"`
}

// VortexRequest asks for a set of fields to be moved onto the cylindrical
// grid of a center track.
type VortexRequest struct {
	ID            string       `json:"id"`
	Track         []TrackPoint `json:"track"`
	Grid          *GridSpec    `json:"grid,omitempty"`
	Fields        []Field      `json:"fields"`
	Vectors       []VectorPair `json:"vectors,omitempty"`
	StormRelative bool         `json:"storm_relative,omitempty"`
}

// Components holds one vector quantity in cylindrical components.
type Components struct {
	U            string `json:"u"`
	V            string `json:"v"`
	Azimuthal    Field  `json:"ut"`
	Radial       Field  `json:"vr"`
	AzimuthalRel *Field `json:"ut_rel,omitempty"`
	RadialRel    *Field `json:"vr_rel,omitempty"`
}

// CylindricalEvent is the result published to the sink topic.
type CylindricalEvent struct {
	ID            string       `json:"id"`
	Grid          GridSpec     `json:"grid"`
	OutOfDomain   string       `json:"out_of_domain"`
	Fields        []Field      `json:"fields"`
	Lons          Field        `json:"lons"`
	Lats          Field        `json:"lats"`
	Etas          Field        `json:"etas"`
	Components    []Components `json:"components,omitempty"`
	MissingValues int          `json:"missing_values"`
	ProcessedAt   time.Time    `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
