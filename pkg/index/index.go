package index

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Index is a read-only handle on a compiled image. The image bytes are the
// whole data structure; one Index may serve any number of concurrent
// queries as long as each uses its own Searcher.
type Index struct {
	img  []byte
	root int
}

// Open reads the image at path into memory and validates it.
func Open(path string) (*Index, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", path, err)
	}
	ix, err := OpenBytes(img)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	log.Debugf("opened image %s: %d bytes, root at %d", path, len(img), ix.root)
	return ix, nil
}

// OpenBytes validates img and wraps it. The caller must not modify img
// afterwards.
func OpenBytes(img []byte) (*Index, error) {
	// Smallest valid image: pad leaf, root leaf, footer.
	if len(img) < 2*headerSize+footerSize {
		return nil, fmt.Errorf("%w: truncated (%d bytes)", ErrBadImage, len(img))
	}
	footer := img[len(img)-footerSize:]
	if binary.LittleEndian.Uint32(footer) != imageMagic {
		return nil, fmt.Errorf("%w: wrong magic", ErrBadImage)
	}
	if v := footer[4]; v != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadImage, v)
	}
	root := binary.LittleEndian.Uint64(footer[5:])
	limit := len(img) - footerSize
	if root >= uint64(limit) {
		return nil, fmt.Errorf("%w: root offset %d out of range", ErrBadImage, root)
	}
	ix := &Index{img: img, root: int(root)}
	kind := nodeKind(img, ix.root)
	if kind > kindNode256 {
		return nil, fmt.Errorf("%w: unknown root node kind %d", ErrBadImage, kind)
	}
	if ix.root+headerSize+bodySize(kind) > limit {
		return nil, fmt.Errorf("%w: root node truncated", ErrBadImage)
	}
	return ix, nil
}

// Size returns the image size in bytes.
func (ix *Index) Size() int {
	return len(ix.img)
}

// Walk visits every indexed word in lexicographic order. The word slice is
// only valid during the callback. Walk returns false when fn stopped the
// enumeration early.
func (ix *Index) Walk(fn func(word []byte, freq uint32) bool) bool {
	path := make([]byte, 0, 64)
	return ix.walkNode(ix.root, path, fn)
}

func (ix *Index) walkNode(off int, path []byte, fn func(word []byte, freq uint32) bool) bool {
	path = append(path, nodePrefix(ix.img, off)...)
	if freq := nodeFreq(ix.img, off); freq != 0 {
		if !fn(path, freq) {
			return false
		}
	}
	return eachChild(ix.img, off, func(key byte, child int) bool {
		return ix.walkNode(child, append(path, key), fn)
	})
}

// Words counts the indexed words.
func (ix *Index) Words() int {
	n := 0
	ix.Walk(func([]byte, uint32) bool {
		n++
		return true
	})
	return n
}
