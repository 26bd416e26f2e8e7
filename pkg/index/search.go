package index

import (
	"bytes"
	"context"
	"sort"

	"github.com/bastiangx/spellserve/pkg/distance"
)

// Result is one matched word.
type Result struct {
	Word     string
	Freq     uint32
	Distance int
}

// Searcher runs queries against one Index. It owns the traversal scratch
// (path buffer, result buffer, both distance oracles) and reuses it across
// queries, so a long-lived Searcher performs no steady-state allocation
// beyond result growth. A Searcher must not be shared between goroutines;
// create one per worker, they can all point at the same Index.
type Searcher struct {
	ix     *Index
	path   []byte
	out    []Result
	rowdp  *distance.RowDP
	bitpar *distance.BitParallel
}

// NewSearcher returns a Searcher over ix.
func NewSearcher(ix *Index) *Searcher {
	return &Searcher{
		ix:     ix,
		path:   make([]byte, 0, 64),
		rowdp:  distance.NewRowDP(nil),
		bitpar: distance.NewBitParallel(nil, 0),
	}
}

// Search returns every indexed word within maxDist edits of query, ordered
// by distance, then by descending frequency, then lexicographically. The
// returned slice is reused by the next call on this Searcher.
func (s *Searcher) Search(query []byte, maxDist int) []Result {
	out, _ := s.SearchContext(context.Background(), query, maxDist)
	return out
}

// SearchContext is Search with cooperative cancellation: the context is
// checked between sibling subtrees, and on cancellation the results found
// so far are returned together with ErrInterrupted.
func (s *Searcher) SearchContext(ctx context.Context, query []byte, maxDist int) ([]Result, error) {
	s.out = s.out[:0]
	s.path = s.path[:0]
	if maxDist < 0 {
		return s.out, nil
	}
	if maxDist == 0 {
		s.exact(query)
		return s.out, nil
	}

	// One oracle per query: the NFA when the masks fit, the DP matrix
	// otherwise.
	var oracle distance.Incremental
	if len(query) <= distance.MaxQuery && maxDist <= distance.MaxBound {
		s.bitpar.Reset(query, maxDist)
		oracle = s.bitpar
	} else {
		s.rowdp.Reset(query)
		oracle = s.rowdp
	}

	err := s.walk(ctx, s.ix.root, oracle, maxDist)
	s.sortResults()
	return s.out, err
}

// walk recurses over one node: consume the compressed prefix byte by byte,
// emit the terminal, then try each child. Any point where the oracle's
// lower bound passes maxDist kills the whole subtree.
func (s *Searcher) walk(ctx context.Context, off int, oracle distance.Incremental, maxDist int) error {
	img := s.ix.img
	pushed := 0
	for _, b := range nodePrefix(img, off) {
		oracle.Push(b)
		s.path = append(s.path, b)
		pushed++
		if oracle.LowerBound() > maxDist {
			s.unwind(oracle, pushed)
			return nil
		}
	}

	if freq := nodeFreq(img, off); freq != 0 {
		if d := oracle.Distance(); d <= maxDist {
			s.out = append(s.out, Result{Word: string(s.path), Freq: freq, Distance: d})
		}
	}

	it := children(img, off)
	for key, child, ok := it.next(); ok; key, child, ok = it.next() {
		if ctx.Err() != nil {
			s.unwind(oracle, pushed)
			return ErrInterrupted
		}
		oracle.Push(key)
		s.path = append(s.path, key)
		var err error
		if oracle.LowerBound() <= maxDist {
			err = s.walk(ctx, child, oracle, maxDist)
		}
		oracle.Pop()
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			s.unwind(oracle, pushed)
			return err
		}
	}

	s.unwind(oracle, pushed)
	return nil
}

func (s *Searcher) unwind(oracle distance.Incremental, n int) {
	s.path = s.path[:len(s.path)-n]
	for ; n > 0; n-- {
		oracle.Pop()
	}
}

// exact walks straight down the tree comparing bytes, no distance state.
func (s *Searcher) exact(query []byte) {
	img := s.ix.img
	off := s.ix.root
	qi := 0
	for {
		prefix := nodePrefix(img, off)
		if len(query)-qi < len(prefix) || !bytes.Equal(query[qi:qi+len(prefix)], prefix) {
			return
		}
		qi += len(prefix)
		if qi == len(query) {
			if freq := nodeFreq(img, off); freq != 0 {
				s.out = append(s.out, Result{Word: string(query), Freq: freq, Distance: 0})
			}
			return
		}
		child, ok := childAt(img, off, query[qi])
		if !ok {
			return
		}
		qi++
		off = child
	}
}

func (s *Searcher) sortResults() {
	if len(s.out) < 2 {
		return
	}
	sort.Slice(s.out, func(i, j int) bool {
		a, b := s.out[i], s.out[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Freq != b.Freq {
			return a.Freq > b.Freq
		}
		return a.Word < b.Word
	})
}

// Search is a convenience for one-off queries; it allocates a Searcher per
// call. Reuse a Searcher when querying in a loop.
func (ix *Index) Search(query []byte, maxDist int) []Result {
	out := NewSearcher(ix).Search(query, maxDist)
	results := make([]Result, len(out))
	copy(results, out)
	return results
}
