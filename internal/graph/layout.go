package graph

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// Spacing between concentric level rings, in layout units.
const levelSpacing = 80.0

// Position is a node placed on the radial layout.
type Position struct {
	ID    uuid.UUID `json:"id"`
	Level int       `json:"level"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
}

// RadialPositions places nodes on concentric rings, one ring per level,
// nodes within a ring spread at equal angles in input order. Deterministic:
// the same node list always yields the same positions.
func RadialPositions(nodes []Node) []Position {
	perLevel := make(map[int]int)
	for _, n := range nodes {
		perLevel[n.Level]++
	}

	index := make(map[int]int)
	positions := make([]Position, 0, len(nodes))
	for _, n := range nodes {
		count := perLevel[n.Level]
		if count < 1 {
			count = 1
		}
		angle := float64(index[n.Level]) * (2 * math.Pi / float64(count))
		index[n.Level]++

		radius := float64(n.Level) * levelSpacing
		positions = append(positions, Position{
			ID:    n.ID,
			Level: n.Level,
			X:     math.Cos(angle) * radius,
			Y:     math.Sin(angle) * radius,
		})
	}
	return positions
}

// OrbitBody is one node in the animated orbit simulation.
type OrbitBody struct {
	ID     uuid.UUID `json:"id"`
	Level  int       `json:"level"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Z      float64   `json:"z"`
	VX     float64   `json:"vx"`
	VY     float64   `json:"vy"`
	VZ     float64   `json:"vz"`
}

// OrbitState is a snapshot of the simulation. Step produces the next
// snapshot without mutating its input, so callers can branch or replay.
type OrbitState struct {
	Bodies []OrbitBody `json:"bodies"`
}

const (
	orbitDamping = 0.98
	orbitPull    = 0.02
	orbitBand    = 20.0
)

// NewOrbitState seeds the simulation from the radial layout, jittering
// each body's height and velocity. The seed makes runs reproducible.
func NewOrbitState(nodes []Node, seed int64) OrbitState {
	rng := rand.New(rand.NewSource(seed))
	positions := RadialPositions(nodes)

	bodies := make([]OrbitBody, len(nodes))
	for i, n := range nodes {
		bodies[i] = OrbitBody{
			ID:    n.ID,
			Level: n.Level,
			X:     positions[i].X,
			Y:     positions[i].Y,
			Z:     float64(n.Level-4)*40 + (rng.Float64()-0.5)*50,
			VX:    (rng.Float64() - 0.5) * 0.3,
			VY:    (rng.Float64() - 0.5) * 0.3,
			VZ:    (rng.Float64() - 0.5) * 0.2,
		}
	}
	return OrbitState{Bodies: bodies}
}

// Step advances the simulation one tick. Each body drifts with its
// velocity; when it leaves the tolerance band around its level ring a
// centering pull accelerates it back, and damping bleeds velocity off so
// orbits stay bounded.
func Step(state OrbitState) OrbitState {
	next := OrbitState{Bodies: make([]OrbitBody, len(state.Bodies))}
	for i, b := range state.Bodies {
		x := b.X + b.VX
		y := b.Y + b.VY
		z := b.Z + b.VZ
		vx, vy, vz := b.VX, b.VY, b.VZ

		distance := math.Sqrt(x*x + y*y + z*z)
		target := float64(b.Level) * levelSpacing
		if distance > target+orbitBand || distance < target-orbitBand {
			vx -= x * orbitPull
			vy -= y * orbitPull
			vz -= z * orbitPull
		}

		vx *= orbitDamping
		vy *= orbitDamping
		vz *= orbitDamping

		next.Bodies[i] = OrbitBody{ID: b.ID, Level: b.Level, X: x, Y: y, Z: z, VX: vx, VY: vy, VZ: vz}
	}
	return next
}
