// internal/motion/trajectory.go
package motion

import (
	"context"
	"math"
	"time"

	"github.com/xkilldash9x/deskpilot/internal/timing"
)

// samplesPerSecond is the pointer update rate of a glide.
const samplesPerSecond = 100

// bowFactor bends the path sideways by this fraction of its length.
const bowFactor = 0.08

// Mover positions the pointer in absolute screen pixels.
type Mover interface {
	MoveTo(ctx context.Context, x, y int) error
}

// computeEaseInOutCubic provides a smooth acceleration and deceleration profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Path samples a cubic Bezier curve from start to end at numSteps points.
// The curve bows slightly to one side, like a wrist pivoting. The first
// point is start and the last is end.
func Path(start, end Vector2D, numSteps int) []Vector2D {
	mainVec := end.Sub(start)
	dist := mainVec.Mag()
	if dist < 1.0 || numSteps <= 1 {
		return []Vector2D{end}
	}

	mainDir := mainVec.Normalize()
	bow := mainDir.Perp().Mul(dist * bowFactor)

	p0, p3 := start, end
	p1 := start.Add(mainDir.Mul(dist / 3.0)).Add(bow)
	p2 := start.Add(mainDir.Mul(dist * 2.0 / 3.0)).Add(bow)

	path := make([]Vector2D, numSteps)
	for i := 0; i < numSteps; i++ {
		t := float64(i) / float64(numSteps-1)
		omt := 1.0 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t

		path[i] = p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
	}
	path[numSteps-1] = end
	return path
}

// Steps is the number of path samples for a glide of duration d.
func Steps(d time.Duration) int {
	n := int(d.Seconds() * samplesPerSecond)
	if n < 2 {
		n = 2
	}
	return n
}

// Glide moves the pointer from from to to along an eased Bezier path that
// takes roughly duration. A non-positive duration jumps straight to the
// target. It returns ctx.Err() if cancelled midway.
func Glide(ctx context.Context, m Mover, from, to Vector2D, duration time.Duration) error {
	tx, ty := to.Round()
	if duration <= 0 || from.Dist(to) < 1.0 {
		return m.MoveTo(ctx, tx, ty)
	}

	path := Path(from, to, Steps(duration))
	startTime := time.Now()
	lastX, lastY := from.Round()

	for i := range path {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Apply easing to time to simulate acceleration/deceleration.
		t := float64(i) / float64(len(path)-1)
		easedT := computeEaseInOutCubic(t)
		pathIndex := int(easedT * float64(len(path)-1))
		if pathIndex >= len(path) {
			pathIndex = len(path) - 1
		}

		target := startTime.Add(time.Duration(t * float64(duration)))
		if err := timing.SleepUntil(ctx, target); err != nil {
			return err
		}

		x, y := path[pathIndex].Round()
		if x == lastX && y == lastY {
			continue
		}
		if err := m.MoveTo(ctx, x, y); err != nil {
			return err
		}
		lastX, lastY = x, y
	}

	if lastX != tx || lastY != ty {
		return m.MoveTo(ctx, tx, ty)
	}
	return nil
}
