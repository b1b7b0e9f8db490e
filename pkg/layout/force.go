package layout

import "math"

// Force simulation constants, relative to BaseSpacing (L).
const (
	repulsionStrength = 0.05   // pair force = 0.05·L³/d²
	springStrength    = 0.05   // edge force = 0.05·(d − L)
	gravityStrength   = 0.0005 // origin pull = 0.0005·(1+degree)·|p|
	minForceDistance  = 0.05   // d is clamped to at least 0.05·L
	maxVelocity       = 0.1    // per-step displacement cap, in L
	settleThreshold   = 1e-4   // early exit when every step is below this, in L
)

// simulate refines seed positions with a damped force system. Pinned
// nodes are excluded from every update. The returned slice is a new copy;
// if the simulation ever produces a non-finite value the seed is returned.
func simulate(ix *index, seed []Point, opts Options) []Point {
	n := ix.len()
	pos := append([]Point(nil), seed...)
	if n < 2 || opts.Iterations <= 0 {
		return pos
	}

	L := opts.BaseSpacing
	kRep := repulsionStrength * L * L * L
	minD2 := (minForceDistance * L) * (minForceDistance * L)
	vmax := maxVelocity * L

	fixed := make([]bool, n)
	degree := make([]float64, n)
	for i := range ix.nodes {
		fixed[i] = ix.pinned(i)
		degree[i] = float64(ix.importance(i))
	}

	type spring struct{ a, b int }
	var springs []spring
	for a := range ix.nodes {
		for _, b := range ix.children[a] {
			springs = append(springs, spring{a, b})
		}
		for _, b := range ix.queueOut[a] {
			springs = append(springs, spring{a, b})
		}
		for _, b := range ix.linkOut[a] {
			springs = append(springs, spring{a, b})
		}
	}

	vel := make([]Point, n)
	force := make([]Point, n)
	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range force {
			force[i] = Point{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d2 := dx*dx + dy*dy
				if d2 < coincidenceEps {
					dx, dy = fallbackDirection(i + j)
				} else {
					d := math.Sqrt(d2)
					dx, dy = dx/d, dy/d
				}
				f := kRep / math.Max(d2, minD2)
				force[i].X += dx * f
				force[i].Y += dy * f
				force[j].X -= dx * f
				force[j].Y -= dy * f
			}
		}

		for _, s := range springs {
			dx, dy := pos[s.b].X-pos[s.a].X, pos[s.b].Y-pos[s.a].Y
			d := math.Hypot(dx, dy)
			if d < coincidenceEps {
				continue
			}
			f := springStrength * (d - L)
			fx, fy := dx/d*f, dy/d*f
			force[s.a].X += fx
			force[s.a].Y += fy
			force[s.b].X -= fx
			force[s.b].Y -= fy
		}

		maxStep := 0.0
		for i := 0; i < n; i++ {
			if fixed[i] {
				continue
			}
			g := gravityStrength * (1 + degree[i])
			force[i].X -= g * pos[i].X
			force[i].Y -= g * pos[i].Y

			v := Point{X: (vel[i].X + force[i].X) * opts.Damping, Y: (vel[i].Y + force[i].Y) * opts.Damping}
			if speed := math.Hypot(v.X, v.Y); speed > vmax {
				v.X, v.Y = v.X/speed*vmax, v.Y/speed*vmax
			}
			vel[i] = v
			pos[i].X += v.X
			pos[i].Y += v.Y
			if step := math.Hypot(v.X, v.Y); step > maxStep {
				maxStep = step
			}
		}

		if !allFinite(pos) {
			return append([]Point(nil), seed...)
		}
		if maxStep < settleThreshold*L {
			break
		}
	}
	return spread(pos, fixed, L*minDistanceFactor)
}

// spread restores the greedy minimum distance after the simulation: every
// unpinned node closer than minDist to another node is moved out with the
// same correction and escape search the greedy pass uses. Nodes are visited
// in input order, each against the current position of every other node.
func spread(pos []Point, fixed []bool, minDist float64) []Point {
	others := make([]Point, 0, len(pos))
	for i := range pos {
		if fixed[i] {
			continue
		}
		others = others[:0]
		others = append(others, pos[:i]...)
		others = append(others, pos[i+1:]...)
		p := correct(pos[i], others, minDist, i)
		pos[i] = separate(p, others, minDist, i)
	}
	return pos
}

func allFinite(ps []Point) bool {
	for _, p := range ps {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}
