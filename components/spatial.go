package components

// Position represents an entity's world position.
// Both coordinates stay inside [0,width)x[0,height) of the owning world.
type Position struct {
	X, Y float64
}
