package layout

import "math"

// DefaultRadius is the circle radius used by [Circular].
const DefaultRadius = 200

// CircularOptions configures [Circular].
type CircularOptions struct {
	Radius float64 // default 200
	Center Point
}

// Circular places the i-th of N nodes at angle 2πi/N on a circle.
func Circular[K comparable](v View[K], opts CircularOptions) Positions[K] {
	if opts.Radius == 0 {
		opts.Radius = DefaultRadius
	}
	a := index(v)
	out := make(Positions[K], len(a.index))

	var keys []K
	for i, k := range a.nodes {
		if a.index[k] == i {
			keys = append(keys, k)
		}
	}
	count := float64(len(keys))
	for i, k := range keys {
		angle := 2 * math.Pi * float64(i) / count
		out[k] = Point{
			X: opts.Center.X + opts.Radius*math.Cos(angle),
			Y: opts.Center.Y + opts.Radius*math.Sin(angle),
		}
	}
	return out
}
