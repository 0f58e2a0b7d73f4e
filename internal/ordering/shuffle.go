package ordering

import "slices"

// Shuffle returns a Fisher-Yates permutation of items and the generator
// advanced by len(items)-1 draws. The input slice is not modified.
func Shuffle[T any](items []T, gen Generator) ([]T, Generator) {
	out := slices.Clone(items)
	for i := len(out) - 1; i > 0; i-- {
		var j int
		j, gen = gen.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out, gen
}
