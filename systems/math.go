package systems

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// WrapDelta returns the signed shorter path from a to b along an axis of the
// given extent. Exact ties prefer the direct path.
func WrapDelta(a, b, extent float64) float64 {
	direct := b - a
	var around float64
	if b >= a {
		around = direct - extent
	} else {
		around = direct + extent
	}
	if math.Abs(around) < math.Abs(direct) {
		return around
	}
	return direct
}

// ToroidalDelta returns the shortest path delta from (x1,y1) to (x2,y2).
func ToroidalDelta(x1, y1, x2, y2, w, h float64) (dx, dy float64) {
	return WrapDelta(x1, x2, w), WrapDelta(y1, y2, h)
}

// SquaredDistance returns the squared toroidal distance between two points.
func SquaredDistance(x1, y1, x2, y2, w, h float64) float64 {
	dx, dy := ToroidalDelta(x1, y1, x2, y2, w, h)
	return dx*dx + dy*dy
}

// NormalizePosition folds a position into [0,w)x[0,h).
func NormalizePosition(x, y, w, h float64) (float64, float64) {
	return fold(x, w), fold(y, h)
}

// NormalizeHeading wraps a heading to [0, 2*Pi).
func NormalizeHeading(h float64) float64 {
	return fold(h, TwoPi)
}

// fold repeatedly adds or subtracts extent until v is in [0, extent).
// Movement per tick is small, so this normally runs zero or one iterations;
// math.Mod handles anything further out.
func fold(v, extent float64) float64 {
	if v < -extent || v >= 2*extent {
		v = math.Mod(v, extent)
	}
	for v < 0 {
		v += extent
	}
	for v >= extent {
		v -= extent
	}
	return v
}

// ClampMove limits a requested move distance to maxMove.
func ClampMove(move, maxMove float64) float64 {
	if move > maxMove {
		return maxMove
	}
	return move
}
