package pipeline

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-vortex-etl/internal/observability"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
)

// GeometryCache memoizes sample geometries per track and grid. Requests for
// the same storm often repeat the same track with different fields.
type GeometryCache struct {
	cache   *lruCache[vortex.Geometry]
	metrics *observability.Metrics
}

// NewGeometryCache creates a cache holding up to maxEntries geometries.
func NewGeometryCache(maxEntries int, metrics *observability.Metrics) *GeometryCache {
	return &GeometryCache{
		cache:   newLRUCache[vortex.Geometry](maxEntries),
		metrics: metrics,
	}
}

// Geometry returns the sample geometry of track on r's grid, computing and
// storing it on a miss. Cached geometries are shared and must not be mutated.
func (c *GeometryCache) Geometry(r *vortex.Resampler, track vortex.Track) (vortex.Geometry, error) {
	key := geometryKey(r.Options(), track)
	if geom, ok := c.cache.get(key); ok {
		c.metrics.GeometryCache.WithLabelValues("hit").Inc()
		return geom, nil
	}
	c.metrics.GeometryCache.WithLabelValues("miss").Inc()

	geom, err := r.Geometry(track)
	if err != nil {
		return vortex.Geometry{}, err
	}
	c.cache.put(key, geom)
	return geom, nil
}

// Len reports the number of cached geometries.
func (c *GeometryCache) Len() int {
	return c.cache.len()
}

func geometryKey(opts vortex.Options, track vortex.Track) string {
	var b strings.Builder
	b.WriteString(opts.TimeDim)
	b.WriteByte('|')
	b.WriteString(gridKey(opts.Grid))
	for _, p := range track {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(p.Time.Unix(), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lon, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lat, 'g', -1, 64))
	}
	return b.String()
}

func gridKey(g vortex.Grid) string {
	return strconv.Itoa(g.AzimuthCount) + "x" + strconv.Itoa(g.RadiusCount) + "x" +
		strconv.FormatFloat(g.MaxRadius, 'g', -1, 64)
}
