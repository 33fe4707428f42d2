package vortex

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// OutOfDomain selects what interpolation returns for a sample point outside
// the source grid's longitude/latitude coverage.
type OutOfDomain int

const (
	// OutOfDomainMissing yields NaN outside the source grid.
	OutOfDomainMissing OutOfDomain = iota
	// OutOfDomainClamp yields the value at the nearest grid edge.
	OutOfDomainClamp
)

func (p OutOfDomain) String() string {
	switch p {
	case OutOfDomainMissing:
		return "missing"
	case OutOfDomainClamp:
		return "clamp"
	default:
		return fmt.Sprintf("OutOfDomain(%d)", int(p))
	}
}

// ParseOutOfDomain parses "missing" or "clamp".
func ParseOutOfDomain(s string) (OutOfDomain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "missing", "":
		return OutOfDomainMissing, nil
	case "clamp":
		return OutOfDomainClamp, nil
	default:
		return 0, fmt.Errorf("unknown out-of-domain policy %q", s)
	}
}

// axis is a strictly monotonic coordinate, ascending or descending.
type axis struct {
	coords     []float64
	descending bool
}

func newAxis(name string, coords []float64) (axis, error) {
	if len(coords) < 2 {
		return axis{}, fmt.Errorf("%w: %q needs at least 2 coordinate values, got %d", ErrDimension, name, len(coords))
	}
	desc := coords[1] < coords[0]
	for i := 1; i < len(coords); i++ {
		prev, cur := coords[i-1], coords[i]
		if math.IsNaN(cur) || math.IsNaN(prev) || cur == prev || (cur < prev) != desc {
			return axis{}, fmt.Errorf("%w: %q coordinates are not strictly monotonic at index %d", ErrDimension, name, i)
		}
	}
	return axis{coords: coords, descending: desc}, nil
}

// locate returns the lower bracketing index i and the weight w of index i+1
// for x. ok is false when x is outside the axis and the policy is Missing.
func (a axis) locate(x float64, policy OutOfDomain) (i int, w float64, ok bool) {
	if math.IsNaN(x) {
		return 0, 0, false
	}
	c := a.coords
	n := len(c)
	lo, hi := c[0], c[n-1]
	if a.descending {
		lo, hi = hi, lo
	}
	if x < lo || x > hi {
		if policy != OutOfDomainClamp {
			return 0, 0, false
		}
		x = math.Max(lo, math.Min(hi, x))
	}

	var k int
	if a.descending {
		k = sort.Search(n, func(j int) bool { return c[j] <= x })
	} else {
		k = sort.SearchFloat64s(c, x)
	}
	i = min(max(k-1, 0), n-2)
	w = (x - c[i]) / (c[i+1] - c[i])
	return i, w, true
}

// plane addresses one 2-D longitude/latitude slice of a field.
type plane struct {
	values    []float64
	base      int
	lonStride int
	latStride int
	lon       axis
	lat       axis
	policy    OutOfDomain
}

// bilinear interpolates the plane at (lon, lat). NaN corners with a non-zero
// weight propagate.
func (p plane) bilinear(lon, lat float64) float64 {
	i, wx, ok := p.lon.locate(lon, p.policy)
	if !ok {
		return math.NaN()
	}
	j, wy, ok := p.lat.locate(lat, p.policy)
	if !ok {
		return math.NaN()
	}

	var sum float64
	for _, c := range [4]struct {
		di, dj int
		w      float64
	}{
		{0, 0, (1 - wx) * (1 - wy)},
		{1, 0, wx * (1 - wy)},
		{0, 1, (1 - wx) * wy},
		{1, 1, wx * wy},
	} {
		if c.w == 0 {
			continue
		}
		sum += c.w * p.values[p.base+(i+c.di)*p.lonStride+(j+c.dj)*p.latStride]
	}
	return sum
}
