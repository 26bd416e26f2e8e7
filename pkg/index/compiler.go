package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/charmbracelet/log"
)

// pending is one in-progress node on the compiler's spine. seg holds the
// path bytes the node covers: the byte selecting it in its parent followed
// by the compressed prefix. The root has no selecting byte, so its seg is
// the prefix alone.
type pending struct {
	seg      [maxPrefix + 1]byte
	segLen   int
	end      int // path position just past seg
	freq     uint32
	keys     []byte
	children []int
}

// Compiler builds the image from a lexicographically non-decreasing word
// stream in a single pass. Only the spine from the root to the most recent
// word is held in memory; a node is serialized the moment the input moves
// past its subtree, which is why children always sit at lower offsets than
// their parent and the file never needs backpatching.
//
// Duplicate words are merged by summing their frequencies.
type Compiler struct {
	w      *bufio.Writer
	offset int
	spine  []pending
	prev   []byte
	buf    []byte
	words  int
	err    error
}

// NewCompiler returns a Compiler emitting to w.
func NewCompiler(w io.Writer) *Compiler {
	return &Compiler{w: bufio.NewWriter(w)}
}

func (c *Compiler) fail(err error) error {
	c.err = err
	return err
}

// Add feeds the next word. Words must arrive in non-decreasing byte order
// with a non-zero frequency.
func (c *Compiler) Add(word []byte, freq uint32) error {
	if c.err != nil {
		return c.err
	}
	if len(word) == 0 {
		return c.fail(fmt.Errorf("%w: empty word", ErrBadOrder))
	}
	if freq == 0 {
		return c.fail(fmt.Errorf("%w: word %q has frequency 0", ErrBadFrequency, word))
	}

	if c.spine == nil {
		if err := c.pad(); err != nil {
			return c.fail(err)
		}
		// The root carries the first word's leading bytes as its own
		// prefix; a one-word dictionary compiles to a single leaf.
		k := len(word)
		if k > maxPrefix {
			k = maxPrefix
		}
		c.push(word[:k], k)
		c.descend(word[k:], k)
	} else {
		l := 0
		for l < len(word) && l < len(c.prev) && word[l] == c.prev[l] {
			l++
		}
		if l == len(word) && l == len(c.prev) {
			// Same word again: merge.
			top := &c.spine[len(c.spine)-1]
			if top.freq > math.MaxUint32-freq {
				return c.fail(fmt.Errorf("%w: merged frequency of %q overflows", ErrBadFrequency, word))
			}
			top.freq += freq
			c.words++
			return nil
		}
		if l == len(word) || (l < len(c.prev) && word[l] < c.prev[l]) {
			return c.fail(fmt.Errorf("%w: %q after %q", ErrBadOrder, word, c.prev))
		}
		if err := c.retreat(l); err != nil {
			return c.fail(err)
		}
		c.descend(word[l:], l)
	}

	c.spine[len(c.spine)-1].freq = freq
	c.prev = append(c.prev[:0], word...)
	c.words++
	return nil
}

// retreat finalizes every pending node lying strictly below path position
// l. A node whose coverage straddles l is split: the part below the
// divergence is emitted, the part above stays pending with the emitted
// node as its sole child so far.
func (c *Compiler) retreat(l int) error {
	for {
		i := len(c.spine) - 1
		t := &c.spine[i]
		if t.end <= l {
			return nil
		}
		start := t.end - t.segLen
		if i > 0 && start >= l {
			off, err := c.emit(t, false)
			if err != nil {
				return err
			}
			p := &c.spine[i-1]
			p.keys = append(p.keys, t.seg[0])
			p.children = append(p.children, off)
			c.spine = c.spine[:i]
			continue
		}

		cut := l - start
		var lower pending
		lower.segLen = copy(lower.seg[:], t.seg[cut:t.segLen])
		lower.freq = t.freq
		lower.keys = t.keys
		lower.children = t.children
		off, err := c.emit(&lower, false)
		if err != nil {
			return err
		}
		branch := lower.seg[0]
		t.segLen = cut
		t.end = l
		t.freq = 0
		t.keys = append(t.keys[:0], branch)
		t.children = append(t.children[:0], off)
		return nil
	}
}

// descend grows the spine to cover the remainder of the current word,
// chaining nodes of one selecting byte plus up to seven prefix bytes.
func (c *Compiler) descend(rem []byte, pos int) {
	for len(rem) > 0 {
		take := len(rem)
		if take > maxPrefix+1 {
			take = maxPrefix + 1
		}
		pos += take
		c.push(rem[:take], pos)
		rem = rem[take:]
	}
}

func (c *Compiler) push(seg []byte, end int) {
	n := len(c.spine)
	if n == cap(c.spine) {
		c.spine = append(c.spine, pending{})
	} else {
		c.spine = c.spine[:n+1]
	}
	p := &c.spine[n]
	p.segLen = copy(p.seg[:], seg)
	p.end = end
	p.freq = 0
	p.keys = p.keys[:0]
	p.children = p.children[:0]
}

// pad writes an unreferenced leaf at offset 0 so that no reachable node
// ever sits there and node256 can use 0 as its absent-child sentinel.
func (c *Compiler) pad() error {
	c.buf = appendNode(c.buf[:0], 0, nil, nil, nil)
	if _, err := c.w.Write(c.buf); err != nil {
		return fmt.Errorf("index: write: %w", err)
	}
	c.offset += len(c.buf)
	return nil
}

func (c *Compiler) emit(p *pending, root bool) (int, error) {
	prefix := p.seg[:p.segLen]
	if !root && p.segLen > 0 {
		prefix = p.seg[1:p.segLen]
	}
	c.buf = appendNode(c.buf[:0], p.freq, prefix, p.keys, p.children)
	off := c.offset
	if _, err := c.w.Write(c.buf); err != nil {
		return 0, fmt.Errorf("index: write: %w", err)
	}
	c.offset += len(c.buf)
	return off, nil
}

// Finish flushes the spine, emits the root and the footer. The Compiler
// must not be reused afterwards.
func (c *Compiler) Finish() error {
	if c.err != nil {
		return c.err
	}
	if c.spine == nil {
		// No input at all: the image is a single empty leaf.
		if err := c.pad(); err != nil {
			return c.fail(err)
		}
		c.push(nil, 0)
	}

	for len(c.spine) > 1 {
		i := len(c.spine) - 1
		t := &c.spine[i]
		off, err := c.emit(t, false)
		if err != nil {
			return c.fail(err)
		}
		p := &c.spine[i-1]
		p.keys = append(p.keys, t.seg[0])
		p.children = append(p.children, off)
		c.spine = c.spine[:i]
	}

	root, err := c.emit(&c.spine[0], true)
	if err != nil {
		return c.fail(err)
	}

	var footer [footerSize]byte
	binary.LittleEndian.PutUint32(footer[0:], imageMagic)
	footer[4] = imageVersion
	binary.LittleEndian.PutUint64(footer[5:], uint64(root))
	if _, err := c.w.Write(footer[:]); err != nil {
		return c.fail(fmt.Errorf("index: write footer: %w", err))
	}
	if err := c.w.Flush(); err != nil {
		return c.fail(fmt.Errorf("index: flush: %w", err))
	}

	log.Debugf("compiled %d words into %d bytes, root at %d", c.words, c.offset+footerSize, root)
	return nil
}

// Compile reads a sorted word-frequency stream and writes the compiled
// image to w.
func Compile(r io.Reader, w io.Writer) error {
	c := NewCompiler(w)
	d := dictionary.NewReader(r)
	for {
		entry, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := c.Add([]byte(entry.Word), entry.Freq); err != nil {
			return err
		}
	}
	return c.Finish()
}

// CompileFile compiles src into dst through a temporary file, so a failed
// compile never leaves a partial image behind.
func CompileFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("index: open %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", tmp, err)
	}

	if err := Compile(bufio.NewReader(in), out); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: rename %s: %w", tmp, err)
	}
	log.Debugf("wrote image %s", dst)
	return nil
}
