package graph

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/medgraph/medgraph/internal/record"
)

func layoutNodes() []Node {
	return []Node{
		{ID: uuid.New(), Type: record.TypePatient, Level: 1},
		{ID: uuid.New(), Type: record.TypeEncounter, Level: 3},
		{ID: uuid.New(), Type: record.TypeEncounter, Level: 3},
		{ID: uuid.New(), Type: record.TypeEncounter, Level: 3},
		{ID: uuid.New(), Type: record.TypeDocument, Level: 8},
	}
}

func TestRadialPositions(t *testing.T) {
	nodes := layoutNodes()
	positions := RadialPositions(nodes)
	if len(positions) != len(nodes) {
		t.Fatalf("expected %d positions, got %d", len(nodes), len(positions))
	}

	for i, p := range positions {
		radius := math.Sqrt(p.X*p.X + p.Y*p.Y)
		want := float64(nodes[i].Level) * levelSpacing
		if math.Abs(radius-want) > 1e-9 {
			t.Errorf("node %d radius = %f, want %f", i, radius, want)
		}
	}

	// Three nodes on the level-3 ring sit at distinct angles.
	angles := make(map[float64]bool)
	for i := 1; i <= 3; i++ {
		angles[math.Atan2(positions[i].Y, positions[i].X)] = true
	}
	if len(angles) != 3 {
		t.Errorf("expected 3 distinct angles on shared ring, got %d", len(angles))
	}
}

func TestRadialPositions_Deterministic(t *testing.T) {
	nodes := layoutNodes()
	a := RadialPositions(nodes)
	b := RadialPositions(nodes)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestNewOrbitState_SeedReproducible(t *testing.T) {
	nodes := layoutNodes()
	a := NewOrbitState(nodes, 42)
	b := NewOrbitState(nodes, 42)
	for i := range a.Bodies {
		if a.Bodies[i] != b.Bodies[i] {
			t.Fatalf("body %d differs for same seed: %+v vs %+v", i, a.Bodies[i], b.Bodies[i])
		}
	}

	c := NewOrbitState(nodes, 43)
	same := true
	for i := range a.Bodies {
		if a.Bodies[i] != c.Bodies[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical states")
	}
}

func TestOrbitStep_Pure(t *testing.T) {
	state := NewOrbitState(layoutNodes(), 7)
	snapshot := make([]OrbitBody, len(state.Bodies))
	copy(snapshot, state.Bodies)

	Step(state)

	for i := range snapshot {
		if state.Bodies[i] != snapshot[i] {
			t.Fatalf("Step mutated its input at body %d", i)
		}
	}
}

func TestOrbitStep_StaysBounded(t *testing.T) {
	nodes := layoutNodes()
	state := NewOrbitState(nodes, 11)

	for tick := 0; tick < 2000; tick++ {
		state = Step(state)
	}

	for i, b := range state.Bodies {
		distance := math.Sqrt(b.X*b.X + b.Y*b.Y + b.Z*b.Z)
		target := float64(b.Level) * levelSpacing
		// Damping plus the centering pull keeps every body near its
		// ring; allow generous slack for residual oscillation.
		if distance > target+4*orbitBand {
			t.Errorf("body %d drifted to %f, target ring %f", i, distance, target)
		}
	}
}
