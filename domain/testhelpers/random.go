package testhelpers

// ScriptedRandom is a RandomSource that replays fixed values.
// Shuffle is the identity so draws are predictable.
type ScriptedRandom struct {
	Ints   []int
	Floats []float64

	intIdx   int
	floatIdx int
}

func (r *ScriptedRandom) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[r.intIdx%len(r.Ints)]
	r.intIdx++
	if v >= n {
		return n - 1
	}
	return v
}

func (r *ScriptedRandom) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0.5
	}
	v := r.Floats[r.floatIdx%len(r.Floats)]
	r.floatIdx++
	return v
}

func (r *ScriptedRandom) Shuffle(n int, swap func(i, j int)) {}
