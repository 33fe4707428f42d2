package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
)

// ParseRawEvent deserializes a RawEvent's value into a VortexRequest.
// A request without an ID takes the message key.
func ParseRawEvent(raw RawEvent) (VortexRequest, error) {
	var req VortexRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return VortexRequest{}, fmt.Errorf("parse raw event: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if err := req.Validate(); err != nil {
		return VortexRequest{}, fmt.Errorf("invalid request %q: %w", req.ID, err)
	}
	return req, nil
}

// Validate checks the request for structural problems the engine would
// otherwise report less clearly.
func (r VortexRequest) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if len(r.Track) == 0 {
		return errors.New("track is empty")
	}
	if len(r.Fields) == 0 {
		return errors.New("no fields to resample")
	}
	names := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f.Name == "" {
			return errors.New("field without a name")
		}
		if names[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		names[f.Name] = true
	}
	for _, p := range r.Vectors {
		if !names[p.U] || !names[p.V] {
			return fmt.Errorf("vector pair %s/%s references an unknown field", p.U, p.V)
		}
	}
	return nil
}

// CenterTrack converts the wire track into the engine's track.
func (r VortexRequest) CenterTrack() vortex.Track {
	track := make(vortex.Track, len(r.Track))
	for i, p := range r.Track {
		track[i] = vortex.TrackPoint{Time: p.Time, Lon: p.Lon, Lat: p.Lat}
		if p.U != nil && p.V != nil {
			track[i].Velocity = &vortex.Velocity{U: *p.U, V: *p.V}
		}
	}
	return track
}

// Dataset converts the request fields into a named engine dataset.
func (r VortexRequest) Dataset() (vortex.Dataset, error) {
	fields := make([]vortex.Field, len(r.Fields))
	for i, f := range r.Fields {
		vf, err := ToField(f)
		if err != nil {
			return vortex.Dataset{}, err
		}
		fields[i] = vf
	}
	return vortex.NewDataset(fields...)
}

// ToField converts a wire field, deriving the shape from its coordinates.
func ToField(f Field) (vortex.Field, error) {
	shape := make([]int, len(f.Dims))
	for i, d := range f.Dims {
		c, ok := f.Coords[d]
		if !ok {
			return vortex.Field{}, fmt.Errorf("field %q: dim %q has no coordinates", f.Name, d)
		}
		shape[i] = len(c)
	}
	vf := vortex.Field{
		Name:   f.Name,
		Dims:   f.Dims,
		Shape:  shape,
		Coords: f.Coords,
		Values: f.Values,
	}
	if err := vf.Validate(); err != nil {
		return vortex.Field{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return vf, nil
}

// FromField converts an engine field to its wire form. Dims without
// coordinates get their indices as coordinates.
func FromField(f vortex.Field) Field {
	coords := make(map[string][]float64, len(f.Dims))
	for i, d := range f.Dims {
		if c, ok := f.Coords[d]; ok {
			coords[d] = c
			continue
		}
		idx := make([]float64, f.Shape[i])
		for j := range idx {
			idx[j] = float64(j)
		}
		coords[d] = idx
	}
	return Field{Name: f.Name, Dims: f.Dims, Coords: coords, Values: f.Values}
}

// GridOr returns the requested grid, or fallback when none is given.
func (r VortexRequest) GridOr(fallback vortex.Grid) vortex.Grid {
	if r.Grid == nil {
		return fallback
	}
	return vortex.Grid{
		AzimuthCount: r.Grid.AzimuthCount,
		RadiusCount:  r.Grid.RadiusCount,
		MaxRadius:    r.Grid.MaxRadius,
	}
}

// NewCylindricalEvent assembles the sink event for a resample result and
// stamps it with the current time.
func NewCylindricalEvent(id string, opts vortex.Options, res vortex.Result, comps []Components) CylindricalEvent {
	fields := res.Source.Fields()
	event := CylindricalEvent{
		ID: id,
		Grid: GridSpec{
			AzimuthCount: opts.Grid.AzimuthCount,
			RadiusCount:  opts.Grid.RadiusCount,
			MaxRadius:    opts.Grid.MaxRadius,
		},
		OutOfDomain: opts.Policy.String(),
		Fields:      make([]Field, len(fields)),
		Lons:        FromField(res.Lons),
		Lats:        FromField(res.Lats),
		Etas:        FromField(res.Etas),
		Components:  comps,
		ProcessedAt: clock.Now().UTC(),
	}
	for i, f := range fields {
		event.Fields[i] = FromField(f)
		event.MissingValues += f.Missing()
	}
	return event
}

// SerializeCylindricalEvent marshals a CylindricalEvent into an OutputEvent.
func SerializeCylindricalEvent(event CylindricalEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize cylindrical event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"request_id":   event.ID,
			"processed_at": event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
