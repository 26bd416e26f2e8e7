/*
Package distance implements incremental Damerau-Levenshtein oracles.

The search engine matches one query against every path of the compiled
tree. Sibling paths share prefixes, so the distance state is maintained as
a stack of bytes: Push extends the current path by one byte, Pop backtracks.
Between a Push and its Pop the oracle can report the distance to the query
and a lower bound for every possible extension, which is what makes subtree
pruning possible.

Two implementations exist behind the Incremental interface. RowDP keeps the
classical dynamic programming matrix and works for any query. BitParallel
packs the edit automaton into 64-bit masks and is picked for queries of up
to 64 bytes, where it does O(maxDist) word operations per pushed byte.
Both compute the restricted (optimal string alignment) Damerau-Levenshtein
distance: insertion, deletion, substitution and transposition of adjacent
bytes, each at cost 1.

Distances are measured in raw bytes, never runes or grapheme clusters.
*/
package distance

// Incremental measures the Damerau-Levenshtein distance between a fixed
// query and a path of bytes maintained as a stack.
type Incremental interface {
	// Push appends one byte to the current path.
	Push(b byte)

	// Pop removes the most recently pushed byte.
	Pop()

	// Distance returns the distance between the query and the current path.
	Distance() int

	// LowerBound never exceeds the distance between the query and any
	// extension of the current path, including the path itself.
	LowerBound() int
}

// Damerau is the reference scalar implementation. It allocates per call and
// exists for validation; the incremental oracles are what queries run on.
func Damerau(a, b []byte) int {
	w := len(a) + 1
	rows := make([]int, w*(len(b)+1))
	for j := 0; j < w; j++ {
		rows[j] = j
	}
	for i := 1; i <= len(b); i++ {
		off := i * w
		prev := off - w
		rows[off] = i
		for j := 1; j < w; j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			v := rows[off+j-1] + 1
			if x := rows[prev+j] + 1; x < v {
				v = x
			}
			if x := rows[prev+j-1] + cost; x < v {
				v = x
			}
			if i >= 2 && j >= 2 && a[j-1] == b[i-2] && a[j-2] == b[i-1] {
				if x := rows[prev-w+j-2] + 1; x < v {
					v = x
				}
			}
			rows[off+j] = v
		}
	}
	return rows[len(rows)-1]
}
