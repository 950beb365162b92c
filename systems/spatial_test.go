package systems

import (
	"math"
	"math/rand"
	"testing"
)

func TestWrapDelta(t *testing.T) {
	tests := []struct {
		name   string
		a, b   float64
		extent float64
		want   float64
	}{
		{"direct forward", 40, 80, 100, 40},
		{"around backward", 10, 90, 100, -20},
		{"around forward", 90, 10, 100, 20},
		{"same point", 30, 30, 100, 0},
		{"exact tie prefers direct", 0, 50, 100, 50},
		{"exact tie prefers direct negative", 50, 0, 100, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapDelta(tt.a, tt.b, tt.extent)
			if got != tt.want {
				t.Errorf("WrapDelta(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.extent, got, tt.want)
			}
		})
	}
}

func TestSquaredDistanceWraps(t *testing.T) {
	got := SquaredDistance(1, 1, 99, 99, 100, 100)
	if got != 8 {
		t.Errorf("SquaredDistance((1,1),(99,99)) = %v, want 8", got)
	}
}

func TestSquaredDistanceSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		w := 1 + rng.Float64()*1000
		h := 1 + rng.Float64()*1000
		x1, y1 := rng.Float64()*w, rng.Float64()*h
		x2, y2 := rng.Float64()*w, rng.Float64()*h

		d1 := SquaredDistance(x1, y1, x2, y2, w, h)
		d2 := SquaredDistance(x2, y2, x1, y1, w, h)
		if d1 != d2 {
			t.Fatalf("asymmetric distance: (%v,%v)-(%v,%v) in %vx%v: %v vs %v", x1, y1, x2, y2, w, h, d1, d2)
		}
		if d1 > (w*w+h*h)/4+1e-9 {
			t.Fatalf("distance %v exceeds half-extent bound", d1)
		}
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		x, y         float64
		wantX, wantY float64
	}{
		{-1, -1, 639, 639},
		{640, 640, 0, 0},
		{645.5, 320, 5.5, 320},
		{-1280, 2000, 0, 80},
		{10, 20, 10, 20},
	}

	for _, tt := range tests {
		x, y := NormalizePosition(tt.x, tt.y, 640, 640)
		if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
			t.Errorf("NormalizePosition(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wantX, tt.wantY)
		}
		if x < 0 || x >= 640 || y < 0 || y >= 640 {
			t.Errorf("NormalizePosition(%v, %v) = (%v, %v) out of range", tt.x, tt.y, x, y)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	if got := NormalizeHeading(-math.Pi / 2); math.Abs(got-3*math.Pi/2) > 1e-12 {
		t.Errorf("NormalizeHeading(-pi/2) = %v, want 3pi/2", got)
	}
	if got := NormalizeHeading(TwoPi); got != 0 {
		t.Errorf("NormalizeHeading(2pi) = %v, want 0", got)
	}
}

func TestClampMove(t *testing.T) {
	if got := ClampMove(3, 0.5); got != 0.5 {
		t.Errorf("ClampMove(3, 0.5) = %v, want 0.5", got)
	}
	if got := ClampMove(0.25, 0.5); got != 0.25 {
		t.Errorf("ClampMove(0.25, 0.5) = %v, want 0.25", got)
	}
}

// TestSpatialGridMatchesBruteForce checks the grid against a pairwise scan,
// including radii larger than the world.
func TestSpatialGridMatchesBruteForce(t *testing.T) {
	const w, h = 640.0, 480.0
	rng := rand.New(rand.NewSource(42))

	positions := make([]Point, 300)
	for i := range positions {
		positions[i] = Point{X: rng.Float64() * w, Y: rng.Float64() * h}
	}

	for _, cellSize := range []float64{16, 64, 100, 1000} {
		grid := NewSpatialGrid(w, h, cellSize)
		for i, p := range positions {
			grid.Insert(i, p.X, p.Y)
		}

		for _, radius := range []float64{5, 50, 100, 400, 2000} {
			for q := 0; q < len(positions); q += 17 {
				origin := positions[q]
				got := grid.QueryRadiusInto(nil, origin.X, origin.Y, radius, q, positions)

				var want []int
				for i, p := range positions {
					if i == q {
						continue
					}
					if SquaredDistance(origin.X, origin.Y, p.X, p.Y, w, h) < radius*radius {
						want = append(want, i)
					}
				}

				if len(got) != len(want) {
					t.Fatalf("cell=%v radius=%v query=%d: got %d neighbors, want %d", cellSize, radius, q, len(got), len(want))
				}
				for i := range want {
					if got[i].Ref != want[i] {
						t.Fatalf("cell=%v radius=%v query=%d: neighbor %d = %d, want %d", cellSize, radius, q, i, got[i].Ref, want[i])
					}
				}
			}
		}
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(100, 100, 10)
	positions := []Point{{X: 5, Y: 5}, {X: 6, Y: 6}}
	grid.Insert(0, 5, 5)
	grid.Insert(1, 6, 6)

	if got := grid.QueryRadiusInto(nil, 5, 5, 10, 0, positions); len(got) != 1 {
		t.Fatalf("expected 1 neighbor before clear, got %d", len(got))
	}

	grid.Clear()
	if got := grid.QueryRadiusInto(nil, 5, 5, 10, 0, positions); len(got) != 0 {
		t.Errorf("expected no neighbors after clear, got %d", len(got))
	}
}
