package geometry

import (
	"container/list"
	"fmt"
	"math"
	"slices"

	"github.com/MeKo-Tech/pagealign/internal/mempool"
)

// maxRasterCells bounds the grid used by Union. Larger extents are merged on
// coarser cells.
const maxRasterCells = 1 << 26

// grid is a binary raster of unit cells. Cell (x, y) covers
// [x, x+1] x [y, y+1] in grid-local coordinates; the origin maps grid-local
// coordinates back to the page frame.
type grid struct {
	originX int
	originY int
	w       int
	h       int
	cells   []bool
}

// rasterUnion merges parts and bridges on a grid of square cells. The cell
// size is one pixel unless the extent would exceed half of maxRasterCells.
func rasterUnion(parts []Polygon, bridges [][2]Point, radius float64, bounds Box) (Polygon, error) {
	cell := 1.0
	if extent := (bounds.Width() + 6) * (bounds.Height() + 6); extent > maxRasterCells/2 {
		cell = math.Ceil(math.Sqrt(extent / (maxRasterCells / 2)))
	}
	inv := 1 / cell

	g := newGrid(scaleBox(bounds, inv), 2)
	if g.size() > maxRasterCells {
		return nil, newGeometryError("union", fmt.Errorf("raster of %dx%d cells exceeds limit", g.w, g.h))
	}
	g.alloc()
	defer g.release()
	for _, p := range parts {
		g.fillPolygon(scalePolygon(p, inv))
	}
	r := math.Max(radius*inv, 1)
	for _, b := range bridges {
		g.fillCapsule(scalePoint(b[0], inv), scalePoint(b[1], inv), r)
	}
	g.closeDiagonals()
	if c := g.components(); c != 1 {
		return nil, newGeometryError("union", fmt.Errorf("%w: %d components", ErrUnionDisconnected, c))
	}
	return scalePolygon(g.traceOuter(), cell), nil
}

func scalePoint(p Point, f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

func scalePolygon(p Polygon, f float64) Polygon {
	if f == 1 {
		return p
	}
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = scalePoint(pt, f)
	}
	return out
}

func scaleBox(b Box, f float64) Box {
	return Box{MinX: b.MinX * f, MinY: b.MinY * f, MaxX: b.MaxX * f, MaxY: b.MaxY * f}
}

func newGrid(b Box, pad int) *grid {
	ox := int(math.Floor(b.MinX)) - pad
	oy := int(math.Floor(b.MinY)) - pad
	w := int(math.Ceil(b.MaxX)) + pad - ox
	h := int(math.Ceil(b.MaxY)) + pad - oy
	return &grid{originX: ox, originY: oy, w: w, h: h}
}

func (g *grid) size() int { return g.w * g.h }

func (g *grid) alloc() { g.cells = mempool.GetCells(g.w * g.h) }

// release returns the cells to the pool; the grid is unusable afterwards.
func (g *grid) release() {
	mempool.PutCells(g.cells)
	g.cells = nil
}

func (g *grid) at(x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	return g.cells[y*g.w+x]
}

func (g *grid) set(x, y int) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = true
}

func (g *grid) local(p Point) Point {
	return Point{X: p.X - float64(g.originX), Y: p.Y - float64(g.originY)}
}

// fillPolygon sets every cell whose interior meets the polygon interior: cells
// whose centre lies inside plus cells crossed by an edge.
func (g *grid) fillPolygon(p Polygon) {
	n := len(p)
	if n == 0 {
		return
	}
	loc := make(Polygon, n)
	for i, pt := range p {
		loc[i] = g.local(pt)
	}

	b := loc.Bounds()
	xs := make([]float64, 0, 8)
	for y := max(0, int(math.Floor(b.MinY))); y < min(g.h, int(math.Ceil(b.MaxY))+1); y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, c := loc[i], loc[j]
			if (a.Y > cy) != (c.Y > cy) {
				xs = append(xs, a.X+(cy-a.Y)*(c.X-a.X)/(c.Y-a.Y))
			}
		}
		slices.Sort(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			from := int(math.Ceil(xs[k] - 0.5))
			to := int(math.Floor(xs[k+1] - 0.5))
			for x := from; x <= to; x++ {
				g.set(x, y)
			}
		}
	}

	for i := range n {
		g.markSegment(loc[i], loc[(i+1)%n])
	}
}

// markSegment sets the cells whose open interior the segment passes through.
func (g *grid) markSegment(a, b Point) {
	if a.X > b.X {
		a, b = b, a
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 {
		if a.X == math.Floor(a.X) {
			return
		}
		g.markSpan(int(math.Floor(a.X)), math.Min(a.Y, b.Y), math.Max(a.Y, b.Y))
		return
	}
	for col := int(math.Floor(a.X)); float64(col) < b.X; col++ {
		t0 := math.Max(0, (float64(col)-a.X)/dx)
		t1 := math.Min(1, (float64(col+1)-a.X)/dx)
		if t1 <= t0 {
			continue
		}
		y0, y1 := a.Y+t0*dy, a.Y+t1*dy
		g.markSpan(col, math.Min(y0, y1), math.Max(y0, y1))
	}
}

func (g *grid) markSpan(col int, ylo, yhi float64) {
	if ylo == yhi {
		if ylo != math.Floor(ylo) {
			g.set(col, int(math.Floor(ylo)))
		}
		return
	}
	for row := int(math.Floor(ylo)); float64(row) < yhi; row++ {
		if ylo < float64(row+1) && yhi > float64(row) {
			g.set(col, row)
		}
	}
}

// fillCapsule sets every cell whose centre lies within r of segment ab.
func (g *grid) fillCapsule(a, b Point, r float64) {
	la, lb := g.local(a), g.local(b)
	box := BoundingBox([]Point{la, lb})
	for y := max(0, int(math.Floor(box.MinY-r))); y < min(g.h, int(math.Ceil(box.MaxY+r))+1); y++ {
		for x := max(0, int(math.Floor(box.MinX-r))); x < min(g.w, int(math.Ceil(box.MaxX+r))+1); x++ {
			c := Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if pointSegmentDistance(c, la, lb) <= r {
				g.set(x, y)
			}
		}
	}
}

// closeDiagonals fills one cell of every 2x2 window whose only set cells are
// diagonal neighbours, so the set becomes 4-connected without pinch points.
func (g *grid) closeDiagonals() {
	for changed := true; changed; {
		changed = false
		for y := 0; y+1 < g.h; y++ {
			for x := 0; x+1 < g.w; x++ {
				tl, tr := g.at(x, y), g.at(x+1, y)
				bl, br := g.at(x, y+1), g.at(x+1, y+1)
				switch {
				case tl && br && !tr && !bl:
					g.set(x+1, y)
					changed = true
				case tr && bl && !tl && !br:
					g.set(x, y)
					changed = true
				}
			}
		}
	}
}

// components counts 4-connected components of set cells.
func (g *grid) components() int {
	visited := mempool.GetCells(len(g.cells))
	defer mempool.PutCells(visited)
	count := 0
	for start, on := range g.cells {
		if !on || visited[start] {
			continue
		}
		count++
		q := list.New()
		q.PushBack(start)
		visited[start] = true
		for q.Len() > 0 {
			e := q.Front()
			q.Remove(e)
			ci, ok := e.Value.(int)
			if !ok {
				continue
			}
			cx, cy := ci%g.w, ci/g.w
			for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := cx+d[0], cy+d[1]
				if !g.at(nx, ny) {
					continue
				}
				ni := ny*g.w + nx
				if !visited[ni] {
					visited[ni] = true
					q.PushBack(ni)
				}
			}
		}
	}
	return count
}

// headings in clockwise order for a y-down frame: east, south, west, north.
var (
	stepX = [4]int{1, 0, -1, 0}
	stepY = [4]int{0, 1, 0, -1}
)

// aheadCells returns the cells in front of grid vertex (x, y) on the left and
// on the right of heading d.
func aheadCells(x, y, d int) (lx, ly, rx, ry int) {
	switch d {
	case 0:
		return x, y - 1, x, y
	case 1:
		return x, y, x - 1, y
	case 2:
		return x - 1, y, x - 1, y - 1
	default:
		return x - 1, y - 1, x, y - 1
	}
}

// traceOuter follows the cell edges around the outer boundary of the set
// cells, keeping set cells on the right. Holes are not traced, so the result
// encloses them. Only corner vertices are emitted, in page coordinates.
func (g *grid) traceOuter() Polygon {
	start := slices.Index(g.cells, true)
	if start < 0 {
		return nil
	}
	sx, sy := start%g.w, start/g.w
	x, y, d := sx, sy, 0
	pts := Polygon{{X: float64(sx + g.originX), Y: float64(sy + g.originY)}}
	maxSteps := 4*len(g.cells) + 8
	for range maxSteps {
		x += stepX[d]
		y += stepY[d]
		if x == sx && y == sy {
			break
		}
		lx, ly, rx, ry := aheadCells(x, y, d)
		nd := d
		switch {
		case g.at(lx, ly):
			nd = (d + 3) % 4
		case g.at(rx, ry):
		default:
			nd = (d + 1) % 4
		}
		if nd != d {
			pts = append(pts, Point{X: float64(x + g.originX), Y: float64(y + g.originY)})
		}
		d = nd
	}
	return pts
}
