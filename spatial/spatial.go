// Package spatial implements a hand-rolled bulk-loaded spatial index over
// live agent positions, answering toroidal neighbor-count queries.
//
// No R-tree library exists anywhere in the retrieved corpus (checked both
// _examples/ and _examples/other_examples/), so this is grounded directly
// on spec.md §4.5 and the Rust original's rstar usage
// (_examples/original_source/.../spatial.rs: bulk_load + locate_in_envelope),
// with the toroidal-wrap query idiom borrowed from the teacher's
// systems/spatial.go ToroidalDelta helper.
package spatial

import "sort"

// Point is one live agent's position, tagged with the agent id it belongs
// to so a query can exclude the querying agent itself.
type Point struct {
	X, Y float64
	ID   uint32
}

const leafCapacity = 8

type box struct {
	minX, minY, maxX, maxY float64
}

func boxOf(p Point) box {
	return box{p.X, p.Y, p.X, p.Y}
}

func union(a, b box) box {
	return box{
		minX: min64(a.minX, b.minX),
		minY: min64(a.minY, b.minY),
		maxX: max64(a.maxX, b.maxX),
		maxY: max64(a.maxY, b.maxY),
	}
}

func (b box) intersects(o box) bool {
	return b.minX <= o.maxX && b.maxX >= o.minX && b.minY <= o.maxY && b.maxY >= o.minY
}

func (b box) contains(x, y float64) bool {
	return x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// node is either a leaf holding points directly, or an internal node
// holding children, with bbox always the tight union of its contents.
type node struct {
	bbox     box
	points   []Point
	children []*node
}

func (n *node) isLeaf() bool {
	return n.children == nil
}

// Tree is a bulk-loaded spatial index over a fixed set of points.
type Tree struct {
	root      *node
	worldSize float64
}

// BuildIndexActive bulk-loads a Tree over the given points (already
// filtered down to agents whose organism is alive — the caller computes
// live_flags and passes only the surviving positions in).
func BuildIndexActive(points []Point, worldSize float64) *Tree {
	if len(points) == 0 {
		return &Tree{root: nil, worldSize: worldSize}
	}
	buf := make([]Point, len(points))
	copy(buf, points)
	return &Tree{root: build(buf, 0), worldSize: worldSize}
}

// build recursively bulk-loads by alternating-axis median split. Each level
// fully sorts its slice, so construction is O(n log² n), not O(n log n);
// range queries descend only into nodes whose bounding box meets the query
// window.
func build(points []Point, depth int) *node {
	if len(points) <= leafCapacity {
		b := boxOf(points[0])
		for _, p := range points[1:] {
			b = union(b, boxOf(p))
		}
		return &node{bbox: b, points: points}
	}

	axis := depth % 2
	sort.Slice(points, func(i, j int) bool {
		if axis == 0 {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})
	mid := len(points) / 2
	left := build(points[:mid], depth+1)
	right := build(points[mid:], depth+1)
	return &node{bbox: union(left.bbox, right.bbox), children: []*node{left, right}}
}

func (n *node) query(qbox box, out *[]Point) {
	if n == nil || !n.bbox.intersects(qbox) {
		return
	}
	if n.isLeaf() {
		for _, p := range n.points {
			if qbox.contains(p.X, p.Y) {
				*out = append(*out, p)
			}
		}
		return
	}
	for _, c := range n.children {
		c.query(qbox, out)
	}
}

// CountNeighbors counts live agents (other than selfID) within radius of
// center under toroidal distance, per spec.md §4.5: the query considers
// the canonical window plus up to eight wrapped copies, radius clamped to
// world_size/2, self excluded, and only points with toroidal Euclidean
// distance <= radius counted.
func (t *Tree) CountNeighbors(centerX, centerY, radius float64, selfID uint32) int {
	if t.root == nil {
		return 0
	}
	half := t.worldSize / 2
	if radius > half {
		radius = half
	}

	seen := make(map[uint32]bool)
	count := 0
	shifts := []float64{-t.worldSize, 0, t.worldSize}
	var candidates []Point

	for _, sx := range shifts {
		for _, sy := range shifts {
			qcx := centerX - sx
			qcy := centerY - sy
			qbox := box{qcx - radius, qcy - radius, qcx + radius, qcy + radius}
			candidates = candidates[:0]
			t.root.query(qbox, &candidates)
			for _, p := range candidates {
				if p.ID == selfID || seen[p.ID] {
					continue
				}
				dx := toroidalAxisDelta(centerX, p.X, t.worldSize)
				dy := toroidalAxisDelta(centerY, p.Y, t.worldSize)
				if dx*dx+dy*dy <= radius*radius {
					seen[p.ID] = true
					count++
				}
			}
		}
	}
	return count
}

// toroidalAxisDelta returns the shortest signed distance from a to b along
// one axis of a ring of circumference size.
func toroidalAxisDelta(a, b, size float64) float64 {
	d := b - a
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}
