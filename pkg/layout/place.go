package layout

import "math"

// Placement constants, in units of BaseSpacing where applicable.
const (
	// GoldenRatio drives the spiral angle of unconnected nodes.
	GoldenRatio = 1.618034

	// MaxCorrections bounds the nearest-neighbour correction loop.
	MaxCorrections = 10

	spiralScale       = 0.8
	minDistanceFactor = 0.75
	verticalBias      = 0.3
	correctionMargin  = 1.001
	bridgeBonus       = 3
	imbalancePenalty  = 0.5
	coincidenceEps    = 1e-9
)

// spiralAngle is the angle step between consecutive spiral slots.
var spiralAngle = math.Pi * GoldenRatio

// SpiralPosition returns the count-th slot of the golden-ratio spiral.
// Slot 0 is the origin; slot k sits at radius 0.8·spacing·√k.
func SpiralPosition(count int, spacing float64) Point {
	if count <= 0 {
		return Point{}
	}
	angle := float64(count) * spiralAngle
	radius := spacing * spiralScale * math.Sqrt(float64(count))
	return Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

// NewNodePosition places one additional node next to an existing layout.
// The result depends only on len(placed); no overlap check is made.
// A non-positive spacing falls back to DefaultBaseSpacing.
func NewNodePosition(placed []Point, spacing float64) Point {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		spacing = DefaultBaseSpacing
	}
	return SpiralPosition(len(placed), spacing)
}

// greedy computes one position per node. Pinned nodes keep their input
// coordinates; every other node is placed once, in order.
func greedy(ix *index, order []int, spacing float64) []Point {
	pos := make([]Point, ix.len())
	placed := make([]bool, ix.len())
	processed := make([]Point, 0, ix.len())

	for i, n := range ix.nodes {
		if !n.Pinned() {
			continue
		}
		x, y := n.Position()
		pos[i] = Point{X: x, Y: y}
		placed[i] = true
		processed = append(processed, pos[i])
	}

	minDist := spacing * minDistanceFactor
	for _, i := range order {
		var cand Point
		if c, ok := anchor(ix, i, pos, placed); ok {
			bias := float64(len(ix.parents[i])-len(ix.children[i])) * spacing * verticalBias
			cand = Point{X: c.X, Y: c.Y + bias}
		} else {
			cand = SpiralPosition(len(processed), spacing)
		}
		cand = repel(cand, processed, minDist, len(processed))
		cand = correct(cand, processed, minDist, len(processed))
		cand = separate(cand, processed, minDist, len(processed))

		pos[i] = cand
		placed[i] = true
		processed = append(processed, cand)
	}
	return pos
}

// anchor returns the average of the placed neighbours of i, each weighted
// by 1 + its importance. ok is false when no neighbour is placed yet.
func anchor(ix *index, i int, pos []Point, placed []bool) (Point, bool) {
	var sx, sy, total float64
	for _, j := range ix.neighbours(i) {
		if !placed[j] {
			continue
		}
		w := 1 + float64(ix.importance(j))
		sx += pos[j].X * w
		sy += pos[j].Y * w
		total += w
	}
	if total == 0 {
		return Point{}, false
	}
	return Point{X: sx / total, Y: sy / total}, true
}

// repel pushes p away from every point closer than minDist. The push per
// neighbour is minDist²/d − d, capped at minDist.
func repel(p Point, others []Point, minDist float64, salt int) Point {
	var dx, dy float64
	for k, o := range others {
		vx, vy := p.X-o.X, p.Y-o.Y
		d := math.Hypot(vx, vy)
		if d >= minDist {
			continue
		}
		var push float64
		if d < coincidenceEps {
			vx, vy = fallbackDirection(salt + k)
			push = minDist
		} else {
			vx, vy = vx/d, vy/d
			push = math.Min(minDist, minDist*minDist/d-d)
		}
		dx += vx * push
		dy += vy * push
	}
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// correct moves p directly away from its nearest too-close neighbour until
// the minimum distance holds or MaxCorrections rounds have run. If the
// rounds run out, p is handed to escape.
func correct(p Point, others []Point, minDist float64, salt int) Point {
	for round := 0; round < MaxCorrections; round++ {
		j, d := nearest(p, others)
		if j < 0 || d >= minDist {
			return p
		}
		vx, vy := p.X-others[j].X, p.Y-others[j].Y
		if d < coincidenceEps {
			vx, vy = fallbackDirection(salt + round)
		} else {
			vx, vy = vx/d, vy/d
		}
		step := minDist * correctionMargin
		p = Point{X: others[j].X + vx*step, Y: others[j].Y + vy*step}
	}
	return escape(p, others, minDist, salt)
}

// escape searches rings of slots around p, each one minimum distance
// further out, for a point clear of every other node. The search is bounded
// by the number of nodes; if no slot is clear, the slot farthest from its
// nearest neighbour wins.
func escape(p Point, others []Point, minDist float64, salt int) Point {
	j, d := nearest(p, others)
	if j < 0 || d >= minDist {
		return p
	}
	best, bestD := p, d
	step := minDist * correctionMargin
	offset := float64(salt) * spiralAngle
	for ring := 1; ring <= len(others)+1; ring++ {
		slots := 6 * ring
		radius := float64(ring) * step
		for k := 0; k < slots; k++ {
			angle := offset + float64(k)*2*math.Pi/float64(slots)
			c := Point{X: p.X + radius*math.Cos(angle), Y: p.Y + radius*math.Sin(angle)}
			_, cd := nearest(c, others)
			if cd >= minDist {
				return c
			}
			if cd > bestD {
				best, bestD = c, cd
			}
		}
	}
	return best
}

// separate guarantees p does not coincide with any point in others.
func separate(p Point, others []Point, minDist float64, salt int) Point {
	for attempt := 0; attempt <= len(others); attempt++ {
		j, d := nearest(p, others)
		if j < 0 || d >= coincidenceEps {
			return p
		}
		vx, vy := fallbackDirection(salt + attempt)
		p = Point{X: p.X + vx*minDist, Y: p.Y + vy*minDist}
	}
	return p
}

func nearest(p Point, others []Point) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for k, o := range others {
		if d := math.Hypot(p.X-o.X, p.Y-o.Y); d < bestD {
			best, bestD = k, d
		}
	}
	return best, bestD
}

// fallbackDirection is a deterministic unit vector used when two points
// coincide and no direction can be derived from their offset.
func fallbackDirection(seed int) (float64, float64) {
	angle := float64(seed+1) * spiralAngle
	return math.Cos(angle), math.Sin(angle)
}
