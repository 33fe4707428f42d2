// Command validate checks a cylindrical event produced by the ETL service
// against the request it was made from. It verifies the grid layout, that
// radius zero lands on the track centers, that rotating winds into
// azimuthal/radial components preserves their magnitude, that storm-relative
// components invert back to the ground-relative ones, and that replaying the
// request through the transformer reproduces the event.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -request data/mock/haima_request.json \
//	  -event data/mock/haima_event.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	"github.com/couchcryptid/storm-vortex-etl/internal/observability"
	"github.com/couchcryptid/storm-vortex-etl/internal/pipeline"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

// tolerance for recomputed values; events pass through JSON so only
// formatting round-off is expected.
const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) < 20 {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requestPath := flag.String("request", "", "path to the vortex request JSON")
	eventPath := flag.String("event", "", "path to the cylindrical event JSON")
	lonDim := flag.String("lon-dim", "lon", "longitude dimension name used by the service")
	latDim := flag.String("lat-dim", "lat", "latitude dimension name used by the service")
	timeDim := flag.String("time-dim", "time", "time dimension name used by the service")
	flag.Parse()

	if *requestPath == "" || *eventPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := vortex.DefaultOptions()
	opts.LonDim, opts.LatDim, opts.TimeDim = *lonDim, *latDim, *timeDim
	if code := run(os.Stdout, *requestPath, *eventPath, opts); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, requestPath, eventPath string, opts vortex.Options) int {
	fmt.Fprintln(w, "=== Cylindrical Event Validation ===")
	fmt.Fprintln(w)

	req, err := loadJSON[domain.VortexRequest](requestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load request: %v\n", err)
		return 1
	}
	event, err := loadJSON[domain.CylindricalEvent](eventPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load event: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateGrid(event, opts.TimeDim),
		validateCenters(event, req),
		validateMagnitude(event),
		validateStormRelative(event, req),
		validateReplay(event, req, opts),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Event %s: %d fields, %d vector pairs, %d x %d grid, %d missing values\n",
		event.ID, len(event.Fields), len(event.Components),
		event.Grid.AzimuthCount, event.Grid.RadiusCount, event.MissingValues)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ── Phases ──

func validateGrid(event domain.CylindricalEvent, timeDim string) *phase {
	p := &phase{name: "Grid layout"}
	g := vortex.Grid{
		AzimuthCount: event.Grid.AzimuthCount,
		RadiusCount:  event.Grid.RadiusCount,
		MaxRadius:    event.Grid.MaxRadius,
	}
	if err := g.Validate(); err != nil {
		p.errorf("grid: %v", err)
		return p
	}

	wantDims := []string{timeDim, vortex.AzimuthDim, vortex.RadiusDim}
	for _, f := range []domain.Field{event.Lons, event.Lats, event.Etas} {
		if !cmp.Equal(f.Dims, wantDims) {
			p.errorf("%s dims %v, want %v", f.Name, f.Dims, wantDims)
			continue
		}
		if !floatsEqual(f.Coords[vortex.AzimuthDim], g.Azimuths()) {
			p.errorf("%s azimuths %v, want %v", f.Name, f.Coords[vortex.AzimuthDim], g.Azimuths())
		}
		if !floatsEqual(f.Coords[vortex.RadiusDim], g.Radii()) {
			p.errorf("%s radii %v, want %v", f.Name, f.Coords[vortex.RadiusDim], g.Radii())
		}
		if want := len(f.Coords[timeDim]) * g.Points(); len(f.Values) != want {
			p.errorf("%s has %d values, want %d", f.Name, len(f.Values), want)
		}
	}

	missing := 0
	for _, f := range event.Fields {
		if len(f.Dims) < 2 || !cmp.Equal(f.Dims[len(f.Dims)-2:], wantDims[1:]) {
			p.errorf("field %s dims %v do not end in azim, radi", f.Name, f.Dims)
		}
		for _, x := range f.Values {
			if math.IsNaN(x) {
				missing++
			}
		}
	}
	if missing != event.MissingValues {
		p.errorf("missing_values is %d but %d values are null", event.MissingValues, missing)
	}
	return p
}

func validateCenters(event domain.CylindricalEvent, req domain.VortexRequest) *phase {
	p := &phase{name: "Radius zero at track centers"}
	if len(event.Lons.Dims) != 3 {
		p.errorf("lons dims %v", event.Lons.Dims)
		return p
	}
	steps := len(event.Lons.Coords[event.Lons.Dims[0]])
	if steps != len(req.Track) {
		p.errorf("event has %d time steps, request track has %d fixes", steps, len(req.Track))
		return p
	}
	na, nr := event.Grid.AzimuthCount, event.Grid.RadiusCount
	for t, fix := range req.Track {
		for a := range na {
			i := (t*na + a) * nr
			if i >= len(event.Lons.Values) || i >= len(event.Lats.Values) {
				p.errorf("step %d azimuth %d: no sample", t, a)
				return p
			}
			if d := math.Remainder(event.Lons.Values[i]-fix.Lon, 360); math.Abs(d) > tolerance {
				p.errorf("step %d azimuth %d: lon %v, center %v", t, a, event.Lons.Values[i], fix.Lon)
			}
			if math.Abs(event.Lats.Values[i]-fix.Lat) > tolerance {
				p.errorf("step %d azimuth %d: lat %v, center %v", t, a, event.Lats.Values[i], fix.Lat)
			}
		}
	}
	return p
}

func validateMagnitude(event domain.CylindricalEvent) *phase {
	p := &phase{name: "Rotation preserves wind speed"}
	fields := make(map[string]domain.Field, len(event.Fields))
	for _, f := range event.Fields {
		fields[f.Name] = f
	}
	for _, c := range event.Components {
		u, okU := fields[c.U]
		v, okV := fields[c.V]
		if !okU || !okV {
			p.errorf("components %s/%s reference missing fields", c.U, c.V)
			continue
		}
		if len(c.Azimuthal.Values) != len(u.Values) || len(c.Radial.Values) != len(u.Values) {
			p.errorf("components %s/%s: %d values, fields have %d", c.U, c.V, len(c.Azimuthal.Values), len(u.Values))
			continue
		}
		for i := range u.Values {
			ground := math.Hypot(u.Values[i], v.Values[i])
			cyl := math.Hypot(c.Azimuthal.Values[i], c.Radial.Values[i])
			if math.IsNaN(ground) != math.IsNaN(cyl) || math.Abs(ground-cyl) > 1e-6*math.Max(1, ground) {
				p.errorf("%s/%s[%d]: speed %v, components give %v", c.U, c.V, i, ground, cyl)
			}
		}
	}
	return p
}

func validateStormRelative(event domain.CylindricalEvent, req domain.VortexRequest) *phase {
	p := &phase{name: "Storm-relative components invert"}
	if !req.StormRelative {
		return p
	}
	track, err := req.CenterTrack().WithTranslationVelocity()
	if err != nil {
		p.errorf("track: %v", err)
		return p
	}
	vel, err := track.Velocities()
	if err != nil {
		p.errorf("track: %v", err)
		return p
	}

	for _, c := range event.Components {
		if c.AzimuthalRel == nil || c.RadialRel == nil {
			p.errorf("components %s/%s lack storm-relative values", c.U, c.V)
			continue
		}
		f := c.Azimuthal
		az := f.Coords[vortex.AzimuthDim]
		for i := range f.Values {
			t := 0
			if len(vel) > 1 {
				t = coordIndex(f, i, f.Dims[0])
			}
			ca, cr := vortex.TranslationComponents(vortex.Velocity{U: vel[t].U, V: vel[t].V}, az[coordIndex(f, i, vortex.AzimuthDim)])
			if !approx(c.AzimuthalRel.Values[i]+ca, f.Values[i]) || !approx(c.RadialRel.Values[i]+cr, c.Radial.Values[i]) {
				p.errorf("%s/%s[%d]: relative components do not add back to ground-relative", c.U, c.V, i)
			}
		}
	}
	return p
}

// validateReplay runs the request through the transformer again with the
// event's grid, policy and timestamp and compares the results.
func validateReplay(event domain.CylindricalEvent, req domain.VortexRequest, opts vortex.Options) *phase {
	p := &phase{name: "Replay reproduces event"}

	domain.SetClock(clockwork.NewFakeClockAt(event.ProcessedAt))
	defer domain.SetClock(nil)

	policy, err := vortex.ParseOutOfDomain(event.OutOfDomain)
	if err != nil {
		p.errorf("out_of_domain: %v", err)
		return p
	}
	opts.Policy = policy
	opts.Grid = vortex.Grid{
		AzimuthCount: event.Grid.AzimuthCount,
		RadiusCount:  event.Grid.RadiusCount,
		MaxRadius:    event.Grid.MaxRadius,
	}

	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tfm, err := pipeline.NewTransformer(opts, pipeline.NewGeometryCache(1, metrics), logger, metrics)
	if err != nil {
		p.errorf("transformer: %v", err)
		return p
	}

	req.Grid = &event.Grid
	data, err := json.Marshal(req)
	if err != nil {
		p.errorf("encode request: %v", err)
		return p
	}
	out, err := tfm.Transform(context.Background(), domain.RawEvent{Key: []byte(req.ID), Value: data})
	if err != nil {
		p.errorf("transform: %v", err)
		return p
	}
	var replay domain.CylindricalEvent
	if err := json.Unmarshal(out.Value, &replay); err != nil {
		p.errorf("decode replay: %v", err)
		return p
	}

	equal := cmpopts.EquateApprox(0, tolerance)
	nan := cmpopts.EquateNaNs()
	if diff := cmp.Diff(event, replay, equal, nan, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("event differs from replay (-event +replay):\n%s", diff)
	}
	return p
}

// ── Helpers ──

// coordIndex returns the index along dim of the flat offset i in f.
func coordIndex(f domain.Field, i int, dim string) int {
	stride := 1
	for k := len(f.Dims) - 1; k >= 0; k-- {
		n := len(f.Coords[f.Dims[k]])
		if f.Dims[k] == dim {
			return (i / stride) % n
		}
		stride *= n
	}
	return 0
}

func approx(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func floatsEqual(a, b []float64) bool {
	return cmp.Equal(a, b, cmpopts.EquateApprox(0, tolerance))
}
