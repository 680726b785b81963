// Package corpus generates deterministic test inputs for the compression
// tests and benchmarks.
package corpus

import "math/rand"

var words = []string{
	"the", "light", "of", "rays", "which", "are", "refracted", "by", "a",
	"prism", "and", "colours", "in", "experiment", "same", "proposition",
	"reflexion", "glass", "water", "that", "is", "to", "be", "as", "with",
	"is", "sun", "red", "violet", "green", "yellow", "blue", "where", "when",
	"theorem", "lens", "image", "paper", "hole", "window", "chamber", "dark",
}

// Text returns about n bytes of word salad with English-like repetition,
// generated from seed.
func Text(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, 0, n+16)
	for len(out) < n {
		w := words[rng.Intn(len(words))]
		out = append(out, w...)
		switch rng.Intn(12) {
		case 0:
			out = append(out, ". "...)
		case 1:
			out = append(out, ",\n"...)
		default:
			out = append(out, ' ')
		}
	}
	return out[:n]
}

// Random returns n bytes of incompressible data generated from seed.
func Random(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	rng.Read(out)
	return out
}
