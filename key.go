package harrismap

import "golang.org/x/exp/constraints"

// Key is the contract spec §6 names: totally ordered under <, equality
// comparable, copyable, hashable. constraints.Ordered covers integers,
// floats and strings — exactly the types Go's < operator accepts — which
// is a strictly narrower (and correct) version of the teacher's own
// `hashable` constraint in map.go, which also admitted complex numbers
// and unsafe.Pointer even though neither supports <.
type Key interface {
	constraints.Ordered
}
