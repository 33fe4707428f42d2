// Command genmock generates a synthetic vortex request for exercising the
// ETL service. A scenario file describes a center track, a source domain, an
// idealized vortex and the environmental flow; the command samples a
// modified Rankine vortex embedded in that flow onto a regular lat/lon grid
// and writes the request as JSON.
//
// Usage:
//
//	go run ./cmd/genmock -s data/mock/haima.yaml -o data/mock/haima_request.json
//
// Without a scenario file the built-in Haima (2004) scenario is used.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// scenario is the YAML description of a synthetic storm.
type scenario struct {
	ID            string        `yaml:"id"`
	Start         time.Time     `yaml:"start"`
	Step          time.Duration `yaml:"step"`
	Track         []fix         `yaml:"track"`
	Domain        box           `yaml:"domain"`
	Levels        []float64     `yaml:"levels"`
	Vortex        vortexParams  `yaml:"vortex"`
	Environment   flow          `yaml:"environment"`
	Grid          *gridParams   `yaml:"grid"`
	StormRelative bool          `yaml:"storm_relative"`
}

type fix struct {
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
}

type box struct {
	LonMin     float64 `yaml:"lon_min"`
	LonMax     float64 `yaml:"lon_max"`
	LatMin     float64 `yaml:"lat_min"`
	LatMax     float64 `yaml:"lat_max"`
	Resolution float64 `yaml:"resolution"`
}

type vortexParams struct {
	MaxWind         float64 `yaml:"max_wind"`         // m/s
	RadiusMaxWind   float64 `yaml:"radius_max_wind"`  // km
	Decay           float64 `yaml:"decay"`            // outer exponent of the modified Rankine profile
	PressureDrop    float64 `yaml:"pressure_drop"`    // hPa
	AmbientPressure float64 `yaml:"ambient_pressure"` // hPa
}

type flow struct {
	U float64 `yaml:"u"`
	V float64 `yaml:"v"`
}

type gridParams struct {
	AzimuthCount int     `yaml:"azimuth_count"`
	RadiusCount  int     `yaml:"radius_count"`
	MaxRadius    float64 `yaml:"max_radius"`
}

const defaultScenario = `
id: haima-2004
start: 2004-09-11T00:00:00Z
step: 6h
track:
  - {lon: 125.8, lat: 20.1}
  - {lon: 124.9, lat: 20.9}
  - {lon: 123.9, lat: 21.8}
  - {lon: 122.8, lat: 22.9}
domain: {lon_min: 112, lon_max: 136, lat_min: 10, lat_max: 32, resolution: 0.5}
levels: [850, 500, 200]
vortex: {max_wind: 33, radius_max_wind: 60, decay: 0.5, pressure_drop: 40, ambient_pressure: 1008}
environment: {u: -5, v: 3}
grid: {azimuth_count: 72, radius_count: 31, max_radius: 6}
storm_relative: true
`

func main() {
	parser := argparse.NewParser("genmock", "Generates a synthetic vortex request from a storm scenario")

	scenarioPath := parser.String("s", "scenario", &argparse.Options{
		Default: "",
		Help:    "YAML scenario file; the built-in Haima (2004) scenario when empty"})

	output := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "output path for the request JSON; stdout when empty"})

	id := parser.String("", "id", &argparse.Options{
		Default: "",
		Help:    "override the request ID"})

	noVelocity := parser.Flag("", "no_velocity", &argparse.Options{
		Help: "omit center velocities so the service derives them from the track"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	if err := run(*scenarioPath, *output, *id, !*noVelocity); err != nil {
		log.Fatal(err)
	}
}

func run(scenarioPath, output, id string, withVelocity bool) error {
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	if id != "" {
		sc.ID = id
	}

	req, err := buildRequest(sc, withVelocity)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	log.Printf("%s: %d fixes, %d fields on %d x %d points",
		req.ID, len(req.Track), len(req.Fields),
		len(req.Fields[0].Coords["lat"]), len(req.Fields[0].Coords["lon"]))
	return nil
}

func loadScenario(path string) (scenario, error) {
	data := []byte(defaultScenario)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return scenario{}, fmt.Errorf("read scenario: %w", err)
		}
	}

	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return scenario{}, fmt.Errorf("scenario %q: %w", path, err)
	}
	return sc, nil
}

func (sc scenario) validate() error {
	switch {
	case sc.ID == "":
		return fmt.Errorf("id is required")
	case len(sc.Track) == 0:
		return fmt.Errorf("track is empty")
	case len(sc.Track) > 1 && sc.Step <= 0:
		return fmt.Errorf("step must be positive")
	case sc.Domain.Resolution <= 0:
		return fmt.Errorf("domain resolution must be positive")
	case sc.Domain.LonMax <= sc.Domain.LonMin || sc.Domain.LatMax <= sc.Domain.LatMin:
		return fmt.Errorf("domain is empty")
	case sc.Vortex.RadiusMaxWind <= 0:
		return fmt.Errorf("radius_max_wind must be positive")
	}
	return nil
}

// buildRequest samples the scenario's vortex and environment at every fix.
// Fields have dims (time, [lev,] lat, lon); winds weaken with height in
// proportion to pressure level.
func buildRequest(sc scenario, withVelocity bool) (domain.VortexRequest, error) {
	lats := axis(sc.Domain.LatMin, sc.Domain.LatMax, sc.Domain.Resolution)
	lons := axis(sc.Domain.LonMin, sc.Domain.LonMax, sc.Domain.Resolution)
	times := make([]float64, len(sc.Track))
	track := make([]domain.TrackPoint, len(sc.Track))
	for i, f := range sc.Track {
		t := sc.Start.Add(time.Duration(i) * sc.Step).UTC()
		times[i] = float64(t.Unix())
		track[i] = domain.TrackPoint{Time: t, Lon: f.Lon, Lat: f.Lat}
	}
	if withVelocity {
		vel, err := translation(sc)
		if err != nil {
			return domain.VortexRequest{}, err
		}
		for i := range vel {
			track[i].U, track[i].V = &vel[i].U, &vel[i].V
		}
	}

	levels := sc.Levels
	scales := []float64{1}
	dims := []string{"time", "lat", "lon"}
	coords := map[string][]float64{"time": times, "lat": lats, "lon": lons}
	if len(levels) > 0 {
		scales = make([]float64, len(levels))
		for i, l := range levels {
			scales[i] = l / levels[0]
		}
		dims = []string{"time", "lev", "lat", "lon"}
		coords["lev"] = levels
	}

	n := len(times) * len(scales) * len(lats) * len(lons)
	u, v := make(domain.Values, 0, n), make(domain.Values, 0, n)
	slp := make(domain.Values, 0, len(times)*len(lats)*len(lons))
	for _, f := range sc.Track {
		center := orb.Point{f.Lon, f.Lat}
		for _, s := range scales {
			for _, lat := range lats {
				for _, lon := range lons {
					uu, vv := sc.Vortex.wind(center, orb.Point{lon, lat})
					u = append(u, s*uu+sc.Environment.U)
					v = append(v, s*vv+sc.Environment.V)
				}
			}
		}
		for _, lat := range lats {
			for _, lon := range lons {
				slp = append(slp, sc.Vortex.pressure(center, orb.Point{lon, lat}))
			}
		}
	}

	slpCoords := map[string][]float64{"time": times, "lat": lats, "lon": lons}
	req := domain.VortexRequest{
		ID:    sc.ID,
		Track: track,
		Fields: []domain.Field{
			{Name: "u", Dims: dims, Coords: coords, Values: u},
			{Name: "v", Dims: dims, Coords: coords, Values: v},
			{Name: "slp", Dims: []string{"time", "lat", "lon"}, Coords: slpCoords, Values: slp},
		},
		Vectors:       []domain.VectorPair{{U: "u", V: "v"}},
		StormRelative: sc.StormRelative,
	}
	if sc.Grid != nil {
		req.Grid = &domain.GridSpec{
			AzimuthCount: sc.Grid.AzimuthCount,
			RadiusCount:  sc.Grid.RadiusCount,
			MaxRadius:    sc.Grid.MaxRadius,
		}
	}
	return req, req.Validate()
}

// axis returns lo, lo+step, ... up to and including hi when it falls on the step.
func axis(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, lo+float64(n-1)*step)
}

// wind is the cyclonic (counterclockwise in the northern hemisphere) wind of
// the vortex at p.
func (vp vortexParams) wind(center, p orb.Point) (u, v float64) {
	r := geo.Distance(center, p) / 1000
	if r == 0 {
		return 0, 0
	}
	speed := vp.MaxWind * r / vp.RadiusMaxWind
	if r > vp.RadiusMaxWind {
		speed = vp.MaxWind * math.Pow(vp.RadiusMaxWind/r, vp.Decay)
	}
	if center.Lat() < 0 {
		speed = -speed
	}
	sin, cos := math.Sincos(geo.Bearing(center, p) * math.Pi / 180)
	// Tangent to the circle, 90 degrees left of the outward bearing.
	return -speed * cos, speed * sin
}

func (vp vortexParams) pressure(center, p orb.Point) float64 {
	r := geo.Distance(center, p) / 1000
	return vp.AmbientPressure - vp.PressureDrop*math.Exp(-r/vp.RadiusMaxWind)
}

// translation is the motion of the scenario's center between fixes.
func translation(sc scenario) ([]vortex.Velocity, error) {
	track := make(vortex.Track, len(sc.Track))
	for i, f := range sc.Track {
		track[i] = vortex.TrackPoint{Time: sc.Start.Add(time.Duration(i) * sc.Step), Lon: f.Lon, Lat: f.Lat}
	}
	return track.TranslationVelocity()
}
