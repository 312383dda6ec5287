package spatial

import "testing"

func TestCountNeighborsFindsNearbyPoints(t *testing.T) {
	points := []Point{
		{X: 10, Y: 10, ID: 1},
		{X: 11, Y: 10, ID: 2},
		{X: 50, Y: 50, ID: 3},
	}
	tree := BuildIndexActive(points, 100)

	got := tree.CountNeighbors(10, 10, 5, 1)
	if got != 1 {
		t.Fatalf("CountNeighbors = %d, want 1 (only id=2 within radius)", got)
	}
}

func TestCountNeighborsExcludesSelf(t *testing.T) {
	points := []Point{{X: 10, Y: 10, ID: 1}}
	tree := BuildIndexActive(points, 100)

	if got := tree.CountNeighbors(10, 10, 5, 1); got != 0 {
		t.Fatalf("CountNeighbors = %d, want 0 (self excluded)", got)
	}
}

func TestCountNeighborsWrapsToroidally(t *testing.T) {
	points := []Point{
		{X: 1, Y: 50, ID: 1},
		{X: 99, Y: 50, ID: 2},
	}
	tree := BuildIndexActive(points, 100)

	// id=2 at x=99 is only 2 units from id=1 at x=1 across the wrap.
	got := tree.CountNeighbors(1, 50, 5, 1)
	if got != 1 {
		t.Fatalf("CountNeighbors = %d, want 1 (wrapped neighbor found)", got)
	}
}

func TestCountNeighborsOnEmptyTree(t *testing.T) {
	tree := BuildIndexActive(nil, 100)
	if got := tree.CountNeighbors(0, 0, 10, 0); got != 0 {
		t.Fatalf("CountNeighbors on empty tree = %d, want 0", got)
	}
}

func TestCountNeighborsClampsRadiusToHalfWorld(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, ID: 1},
		{X: 50, Y: 0, ID: 2}, // exactly world_size/2 away on a 100-wide world
	}
	tree := BuildIndexActive(points, 100)

	// A radius far larger than world_size/2 is clamped to 50; id=2 sits
	// exactly at that distance and, though both the direct and a wrapped
	// window see it, must be counted once.
	got := tree.CountNeighbors(0, 0, 1000, 1)
	if got != 1 {
		t.Fatalf("CountNeighbors = %d, want 1 (id=2 counted once at the clamped radius)", got)
	}
}

func TestCountNeighborsWithManyPointsExercisesInternalNodes(t *testing.T) {
	var points []Point
	for i := 0; i < 200; i++ {
		points = append(points, Point{X: float64(i % 50), Y: float64((i * 7) % 50), ID: uint32(i)})
	}
	tree := BuildIndexActive(points, 200)

	got := tree.CountNeighbors(0, 0, 3, 9999)
	if got < 0 {
		t.Fatalf("CountNeighbors returned negative count: %d", got)
	}
}
