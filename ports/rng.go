package ports

// RNGPort supplies uniform draws in [0, 1) for the simulated progress animation.
// Tests pass a fixed sequence; production uses math/rand.
type RNGPort interface {
	Float64() float64
}
