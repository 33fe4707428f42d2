package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	"github.com/couchcryptid/storm-vortex-etl/internal/observability"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
)

// VortexTransformer implements Transformer by moving the fields of a
// VortexRequest onto its storm-centered cylindrical grid.
type VortexTransformer struct {
	defaults   vortex.Options
	resamplers *lruCache[*vortex.Resampler]
	geometries *GeometryCache
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates a VortexTransformer. Requests without a grid use
// defaults.Grid; the dimension names and out-of-domain policy always come
// from defaults.
func NewTransformer(defaults vortex.Options, geometries *GeometryCache, logger *slog.Logger, metrics *observability.Metrics) (*VortexTransformer, error) {
	r, err := vortex.NewResampler(defaults)
	if err != nil {
		return nil, err
	}
	resamplers := newLRUCache[*vortex.Resampler](16)
	resamplers.put(gridKey(defaults.Grid), r)
	return &VortexTransformer{
		defaults:   defaults,
		resamplers: resamplers,
		geometries: geometries,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

func (t *VortexTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.OutputEvent{}, err
	}

	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	r, err := t.resampler(req.GridOr(t.defaults.Grid))
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
	}

	track := req.CenterTrack()
	if req.StormRelative {
		if track, err = track.WithTranslationVelocity(); err != nil {
			return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
		}
	}

	start := time.Now()
	geom, err := t.geometries.Geometry(r, track)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
	}
	t.observeStage("geometry", start)

	ds, err := req.Dataset()
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
	}

	start = time.Now()
	res, err := r.ResampleGeometry(geom, vortex.Named(ds))
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
	}
	t.observeStage("resample", start)

	start = time.Now()
	comps, err := t.components(req, track, res)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("request %q: %w", req.ID, err)
	}
	t.observeStage("project", start)

	event := domain.NewCylindricalEvent(req.ID, r.Options(), res, comps)
	t.metrics.GridPoints.Observe(float64(geom.Lons.Size()))
	t.metrics.MissingValues.Add(float64(event.MissingValues))
	if event.MissingValues > 0 {
		t.logger.Debug("resampled values outside source grid",
			"request_id", req.ID,
			"missing", event.MissingValues,
			"policy", event.OutOfDomain,
		)
	}

	return domain.SerializeCylindricalEvent(event)
}

// resampler returns a resampler for grid with the default dimension names.
func (t *VortexTransformer) resampler(grid vortex.Grid) (*vortex.Resampler, error) {
	key := gridKey(grid)
	if r, ok := t.resamplers.get(key); ok {
		return r, nil
	}
	opts := t.defaults
	opts.Grid = grid
	r, err := vortex.NewResampler(opts)
	if err != nil {
		return nil, err
	}
	t.resamplers.put(key, r)
	return r, nil
}

// components decomposes every requested vector pair into azimuthal and
// radial components, and their storm-relative versions when asked for.
func (t *VortexTransformer) components(req domain.VortexRequest, track vortex.Track, res vortex.Result) ([]domain.Components, error) {
	if len(req.Vectors) == 0 {
		return nil, nil
	}
	ds, ok := res.Source.Dataset()
	if !ok {
		return nil, fmt.Errorf("%w: expected a named result", vortex.ErrUnsupportedSource)
	}

	var uc, vc vortex.Field
	if req.StormRelative {
		var err error
		if uc, vc, err = track.VelocityFields(t.defaults.TimeDim); err != nil {
			return nil, err
		}
	}

	comps := make([]domain.Components, 0, len(req.Vectors))
	for _, pair := range req.Vectors {
		u, _ := ds.Get(pair.U)
		v, _ := ds.Get(pair.V)
		ut, vr, err := vortex.Project(u, v, res.Etas)
		if err != nil {
			return nil, fmt.Errorf("vector %s/%s: %w", pair.U, pair.V, err)
		}
		c := domain.Components{
			U:         pair.U,
			V:         pair.V,
			Azimuthal: domain.FromField(ut),
			Radial:    domain.FromField(vr),
		}
		if req.StormRelative {
			utRel, vrRel, err := vortex.StormRelative(uc, vc, ut, vr)
			if err != nil {
				return nil, fmt.Errorf("vector %s/%s: %w", pair.U, pair.V, err)
			}
			a, r := domain.FromField(utRel), domain.FromField(vrRel)
			c.AzimuthalRel, c.RadialRel = &a, &r
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func (t *VortexTransformer) observeStage(stage string, start time.Time) {
	t.metrics.TransformStages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
