// internal/motion/vector.go
package motion

import "math"

// Vector2D represents a point or vector in screen space.
type Vector2D struct {
	X, Y float64
}

// Pt builds a vector from integer screen coordinates.
func Pt(x, y int) Vector2D { return Vector2D{X: float64(x), Y: float64(y)} }

// Add returns the vector sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the vector difference of v and other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul returns the vector v scaled by the scalar factor.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// Mag calculates the magnitude (length) of the vector.
func (v Vector2D) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector in the same direction as v, or the zero
// vector when v is (almost) zero.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Mag()
	if mag < 1e-9 {
		return Vector2D{}
	}
	return v.Mul(1.0 / mag)
}

// Perp returns v rotated by 90 degrees.
func (v Vector2D) Perp() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Dist calculates the Euclidean distance between v and other.
func (v Vector2D) Dist(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Round returns the nearest integer pixel.
func (v Vector2D) Round() (int, int) {
	return int(math.Round(v.X)), int(math.Round(v.Y))
}
