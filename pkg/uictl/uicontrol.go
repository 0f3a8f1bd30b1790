// Package uictl defines small read-only controls the UI uses to observe
// long-running machinery without holding a reference to its concrete type.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial reads a single value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial with a maximum cap value.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// Levels reads a window of recent sample values.
type Levels[N Number] interface {
	Read() []N
}
