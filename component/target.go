package component

import "time"

// WorkUnit is a completable target on the task field
// Owned by the field of the current task, discarded when the task ends
type WorkUnit struct {
	X, Y   float64
	Radius float64

	Completed bool
	// CompletedAt is the offset from task start, set once on activation
	CompletedAt time.Duration

	// Mobile units bounce inside the field bounds
	Mobile bool
	DX, DY float64 // Axis directions, each -1 or +1
	Speed  float64 // Field units per reference frame
}

// Contains reports whether (x, y) lies within the unit radius
func (u *WorkUnit) Contains(x, y float64) bool {
	dx := x - u.X
	dy := y - u.Y
	return dx*dx+dy*dy <= u.Radius*u.Radius
}
