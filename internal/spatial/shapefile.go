package spatial

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Centroid is a geographic centroid keyed by a lower-cased neighborhood name.
type Centroid struct {
	Lat float64
	Lng float64
}

// CentroidsFromShapefile reads neighborhood boundary polygons and returns the
// area centroid of each, keyed by the lower-cased value of nameField. It is
// the offline alternative to geocoding against the HTTP API.
func CentroidsFromShapefile(path, nameField string) (map[string]Centroid, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("spatial: shapefile field %q not found", nameField)
	}

	log := zap.L().With(zap.String("component", "spatial.shapefile"))
	centroids := make(map[string]Centroid)

	for reader.Next() {
		row, shape := reader.Shape()
		name := strings.ToLower(strings.TrimSpace(reader.ReadAttribute(row, nameIdx)))
		if name == "" {
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			log.Debug("skipping non-polygon shape", zap.Int("row", row))
			continue
		}

		c, ok := PolygonCentroid(poly)
		if !ok {
			log.Warn("skipping malformed polygon", zap.Int("row", row), zap.String("name", name))
			continue
		}
		centroids[name] = c
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "spatial: read shapefile")
	}

	log.Info("shapefile centroids loaded", zap.Int("count", len(centroids)))
	return centroids, nil
}

// PolygonCentroid returns the area centroid of a shapefile polygon. The
// second return is false for nil or degenerate shapes.
func PolygonCentroid(p *shp.Polygon) (Centroid, bool) {
	g := polygonToGeom(p)
	if g == nil {
		return Centroid{}, false
	}
	c := xy.PolygonsCentroid(g)
	return Centroid{Lat: c[1], Lng: c[0]}, true
}

// polygonToGeom converts a shapefile Polygon (all rings) to a geom.Polygon.
func polygonToGeom(p *shp.Polygon) *geom.Polygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	poly := geom.NewPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("spatial: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	return poly
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(f.String(), name) {
			return i
		}
	}
	return -1
}
