package geometry

import (
	"fmt"
	"log/slog"
	"math"
)

// MultiPolygon is a geometry made of several single-part polygons.
type MultiPolygon []Polygon

const (
	// TouchThreshold is the distance at or below which two polygons count as touching.
	TouchThreshold = 1e-5
	// TouchWeight replaces the distance of touching pairs so the spanning tree
	// still gets an edge between them.
	TouchWeight = 1e-5
	// BridgeDivisor divides the line scale to obtain the bridge radius.
	BridgeDivisor = 5.0
	// MinClearance is the vertex clearance below which a union result is
	// rounded and repaired.
	MinClearance = 1.0
)

// UnionOptions tunes PolygonUnion.
type UnionOptions struct {
	TouchThreshold float64 `mapstructure:"touch_threshold" yaml:"touch_threshold" json:"touch_threshold"`
	TouchWeight    float64 `mapstructure:"touch_weight" yaml:"touch_weight" json:"touch_weight"`
	BridgeDivisor  float64 `mapstructure:"bridge_divisor" yaml:"bridge_divisor" json:"bridge_divisor"`
	MinClearance   float64 `mapstructure:"min_clearance" yaml:"min_clearance" json:"min_clearance"`
}

// DefaultUnionOptions returns the package defaults.
func DefaultUnionOptions() UnionOptions {
	return UnionOptions{
		TouchThreshold: TouchThreshold,
		TouchWeight:    TouchWeight,
		BridgeDivisor:  BridgeDivisor,
		MinClearance:   MinClearance,
	}
}

// Union merges polygons into one connected polygon using the default options.
func Union(polys []Polygon, scale float64) (Polygon, error) {
	return DefaultUnionOptions().Union(polys, scale)
}

// UnionMulti flattens multi-part inputs and merges all parts.
func (o UnionOptions) UnionMulti(geoms []MultiPolygon, scale float64) (Polygon, error) {
	var flat []Polygon
	for _, g := range geoms {
		flat = append(flat, g...)
	}
	return o.Union(flat, scale)
}

// Union merges the polygons into one simple polygon covering all of them.
//
// Disjoint parts are connected along a minimum spanning tree of their pairwise
// distances: each tree edge becomes a bridge of radius max(1, scale/divisor)
// around the segment joining the nearest boundary points. Parts and bridges
// are merged by polygon clipping and the outer ring is returned, which fills
// any enclosed holes. When clipping does not yield one valid ring the merge
// is redone on a pixel grid.
func (o UnionOptions) Union(polys []Polygon, scale float64) (Polygon, error) {
	parts := make([]Polygon, 0, len(polys))
	for _, p := range polys {
		if len(p) > 0 {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return nil, newGeometryError("union", ErrEmptyGeometry)
	case 1:
		return parts[0], nil
	}

	n := len(parts)
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	nearest := make(map[treeEdge][2]Point, n*(n-1))
	for i := range n {
		for j := i + 1; j < n; j++ {
			d, a, b := boundaryDistance(parts[i], parts[j])
			if d <= o.TouchThreshold {
				d = o.TouchWeight
			}
			weights[i][j], weights[j][i] = d, d
			nearest[treeEdge{From: i, To: j}] = [2]Point{a, b}
			nearest[treeEdge{From: j, To: i}] = [2]Point{b, a}
		}
	}

	divisor := o.BridgeDivisor
	if divisor <= 0 {
		divisor = BridgeDivisor
	}
	radius := math.Max(1, scale/divisor)

	bounds := parts[0].Bounds()
	for _, p := range parts[1:] {
		bounds = bounds.Union(p.Bounds())
	}
	edges := minimumSpanningTree(weights)
	bridges := make([][2]Point, 0, len(edges))
	for _, e := range edges {
		seg := nearest[e]
		bridges = append(bridges, seg)
		bb := BoundingBox(seg[:])
		bounds = bounds.Union(Box{MinX: bb.MinX - radius, MinY: bb.MinY - radius, MaxX: bb.MaxX + radius, MaxY: bb.MaxY + radius})
	}

	out, err := vectorUnion(parts, bridges, radius)
	if err == nil {
		out, err = o.settle(out, parts)
	}
	if err != nil {
		slog.Debug("Vector union failed, merging on the pixel grid", "parts", n, "error", err)
		if out, err = rasterUnion(parts, bridges, radius, bounds); err != nil {
			return nil, err
		}
		if out, err = o.settle(out, parts); err != nil {
			return nil, fmt.Errorf("union: %w", err)
		}
	}
	slog.Debug("Merged polygons", "parts", n, "bridges", len(bridges), "radius", radius, "vertices", len(out))
	return out, nil
}

// settle rounds and repairs a merged ring whose clearance is below
// MinClearance. The result must still cover every part.
func (o UnionOptions) settle(out Polygon, parts []Polygon) (Polygon, error) {
	if out.MinimumClearance() >= o.MinClearance {
		return out, nil
	}
	repaired, err := Repair(out.Round())
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if !repaired.CoversPolygon(p) {
			return nil, newGeometryError("union", ErrNotContained)
		}
	}
	return repaired, nil
}
