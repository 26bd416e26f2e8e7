package distance

import (
	"fmt"
	"math/rand"
	"testing"
)

// pairs with known Damerau-Levenshtein distances, including the classic
// Levenshtein cases and transpositions
var distanceCases = []struct {
	a, b     string
	expected int
}{
	{"", "", 0},
	{"a", "", 1},
	{"", "a", 1},
	{"kitten", "sitting", 3},
	{"saturday", "sunday", 3},
	{"gifts", "profit", 5},
	{"something", "smoething", 1},
	{"pomatomus", "pomatomus", 0},
	{"kynar", "kaynar", 1},
	{"kynar", "kayna", 2},
	{"book", "back", 2},
	{"book", "books", 1},
	{"car", "acr", 1},
	{"ab", "ba", 1},
	{"abc", "cab", 2},
	{"abcd", "badc", 2},
	{"ca", "abc", 3},
}

func TestDamerauReference(t *testing.T) {
	for _, tc := range distanceCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			if got := Damerau([]byte(tc.a), []byte(tc.b)); got != tc.expected {
				t.Errorf("Damerau(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
			}
			// the distance is symmetric
			if got := Damerau([]byte(tc.b), []byte(tc.a)); got != tc.expected {
				t.Errorf("Damerau(%q, %q) = %d, want %d", tc.b, tc.a, got, tc.expected)
			}
		})
	}
}

// pushAll runs a path through an oracle and returns the final distance.
func pushAll(d Incremental, path string) int {
	for i := 0; i < len(path); i++ {
		d.Push(path[i])
	}
	return d.Distance()
}

func TestRowDPMatchesReference(t *testing.T) {
	for _, tc := range distanceCases {
		d := NewRowDP([]byte(tc.a))
		if got := pushAll(d, tc.b); got != tc.expected {
			t.Errorf("RowDP %q vs %q = %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestBitParallelMatchesReference(t *testing.T) {
	for _, tc := range distanceCases {
		for _, bound := range []int{1, 2, 8, 64} {
			d := NewBitParallel([]byte(tc.a), bound)
			got := pushAll(d, tc.b)
			want := tc.expected
			if want > bound {
				want = bound + 1
			}
			if got != want {
				t.Errorf("BitParallel(bound=%d) %q vs %q = %d, want %d",
					bound, tc.a, tc.b, got, want)
			}
		}
	}
}

// Popping must restore the state exactly, so that pushing a different byte
// afterwards gives the same result as a fresh computation.
func TestPushPopBacktracking(t *testing.T) {
	query := []byte("transport")
	fresh := func() []Incremental {
		return []Incremental{NewRowDP(query), NewBitParallel(query, 3)}
	}

	for _, d := range fresh() {
		pushAll(d, "trans")
		d.Push('p')
		d.Push('x')
		d.Pop()
		d.Pop()
		pushAll(d, "port")

		want := Damerau(query, []byte("transport"))
		if got := d.Distance(); got != want {
			t.Errorf("%T after backtracking: distance = %d, want %d", d, got, want)
		}
	}
}

// randomWord builds a word over a small alphabet so that transpositions
// and repeated bytes show up often.
func randomWord(rng *rand.Rand, n int) []byte {
	const alphabet = "abcdeft"
	w := make([]byte, n)
	for i := range w {
		w[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return w
}

func TestOracleAgreementRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 500; round++ {
		query := randomWord(rng, rng.Intn(12))
		path := randomWord(rng, rng.Intn(14))
		want := Damerau(query, path)

		row := NewRowDP(query)
		if got := pushAll(row, string(path)); got != want {
			t.Fatalf("RowDP %q vs %q = %d, want %d", query, path, got, want)
		}

		bit := NewBitParallel(query, 64)
		if got := pushAll(bit, string(path)); got != want {
			t.Fatalf("BitParallel %q vs %q = %d, want %d", query, path, got, want)
		}
	}
}

// The searcher falls back to RowDP above 64 bytes; queries straddling that
// boundary must agree wherever both oracles apply.
func TestOracleAgreementBoundaryLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for n := 60; n <= 70; n++ {
		query := randomWord(rng, n)
		for trial := 0; trial < 20; trial++ {
			path := randomWord(rng, n+rng.Intn(5)-2)
			want := Damerau(query, path)

			row := NewRowDP(query)
			if got := pushAll(row, string(path)); got != want {
				t.Fatalf("RowDP len=%d: got %d, want %d", n, got, want)
			}
			if n <= MaxQuery {
				bit := NewBitParallel(query, MaxBound)
				got := pushAll(bit, string(path))
				capped := want
				if capped > MaxBound {
					capped = MaxBound + 1
				}
				if got != capped {
					t.Fatalf("BitParallel len=%d: got %d, want %d", n, got, capped)
				}
			}
		}
	}
}

// A 64-byte query uses every bit of the mask.
func TestBitParallelFullMaskWidth(t *testing.T) {
	query := make([]byte, 64)
	for i := range query {
		query[i] = byte('a' + i%4)
	}

	same := NewBitParallel(query, 2)
	if got := pushAll(same, string(query)); got != 0 {
		t.Errorf("distance to itself = %d, want 0", got)
	}

	// swap the last two bytes: one transposition
	swapped := append([]byte(nil), query...)
	swapped[62], swapped[63] = swapped[63], swapped[62]
	d := NewBitParallel(query, 2)
	if got := pushAll(d, string(swapped)); got != Damerau(query, swapped) {
		t.Errorf("distance to swapped tail = %d, want %d", got, Damerau(query, swapped))
	}

	// drop the last byte: one deletion
	d = NewBitParallel(query, 2)
	if got := pushAll(d, string(query[:63])); got != 1 {
		t.Errorf("distance to truncated = %d, want 1", got)
	}
}

func TestEmptyQuery(t *testing.T) {
	for _, path := range []string{"", "a", "abc"} {
		row := NewRowDP(nil)
		if got := pushAll(row, path); got != len(path) {
			t.Errorf("RowDP empty query vs %q = %d, want %d", path, got, len(path))
		}
		bit := NewBitParallel(nil, 8)
		if got := pushAll(bit, path); got != len(path) {
			t.Errorf("BitParallel empty query vs %q = %d, want %d", path, got, len(path))
		}
	}
}

// LowerBound must never exceed the distance of any extension of the
// current path; check it against the distance of the full path at every
// intermediate depth.
func TestLowerBoundSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 200; round++ {
		query := randomWord(rng, 1+rng.Intn(10))
		path := randomWord(rng, 1+rng.Intn(12))
		final := Damerau(query, path)

		row := NewRowDP(query)
		bit := NewBitParallel(query, 64)
		for i := 0; i < len(path); i++ {
			row.Push(path[i])
			bit.Push(path[i])
			if lb := row.LowerBound(); lb > final {
				t.Fatalf("RowDP lower bound %d exceeds final distance %d (query %q, path %q, depth %d)",
					lb, final, query, path, i+1)
			}
			if lb := bit.LowerBound(); lb > final {
				t.Fatalf("BitParallel lower bound %d exceeds final distance %d (query %q, path %q, depth %d)",
					lb, final, query, path, i+1)
			}
			if row.LowerBound() != bit.LowerBound() {
				t.Fatalf("oracle lower bounds disagree: %d vs %d (query %q, path %q, depth %d)",
					row.LowerBound(), bit.LowerBound(), query, path, i+1)
			}
		}
	}
}

func TestResetReusesState(t *testing.T) {
	row := NewRowDP([]byte("hello"))
	if got := pushAll(row, "hello"); got != 0 {
		t.Fatalf("distance = %d, want 0", got)
	}
	row.Reset([]byte("world"))
	if got := pushAll(row, "hello"); got == 0 {
		t.Error("distance 0 after reset to a different query")
	}

	bit := NewBitParallel([]byte("hello"), 4)
	pushAll(bit, "help")
	bit.Reset([]byte("world"), 4)
	if got := pushAll(bit, "world"); got != 0 {
		t.Errorf("distance = %d after reset, want 0", got)
	}
}

func BenchmarkBitParallelPush(b *testing.B) {
	query := []byte("international")
	d := NewBitParallel(query, 2)
	path := []byte("intrenationally")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range path {
			d.Push(c)
		}
		for range path {
			d.Pop()
		}
	}
}

func BenchmarkRowDPPush(b *testing.B) {
	query := []byte("international")
	d := NewRowDP(query)
	path := []byte("intrenationally")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range path {
			d.Push(c)
		}
		for range path {
			d.Pop()
		}
	}
}
