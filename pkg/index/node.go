/*
Package index implements the compiled approximate-match dictionary: an
adaptive radix tree serialized to a byte image that is searched in place.

The image is produced once by the Compiler and never modified. Nodes adapt
their child layout to their fan-out (the classic ART kinds: leaf, 4, 16, 48
and 256 slots) and carry up to seven path-compressed bytes inline. Child
references are absolute file offsets, so the image needs no pointer fix-up
after loading; the codec in this file reads nodes straight out of the byte
slice and no node is ever materialized as a struct at query time.
*/
package index

import "encoding/binary"

// On-disk node kinds. The discriminator is the first header byte.
const (
	kindLeaf = iota
	kindNode4
	kindNode16
	kindNode48
	kindNode256
)

const (
	// Shared node header: kind u8, freq u32, prefixLen u8, prefix [7]u8.
	headerSize = 13
	// Footer: magic u32, version u8, root offset u64.
	footerSize = 13

	// imageMagic is "ARTX" read as a little-endian u32.
	imageMagic   = 0x58545241
	imageVersion = 1

	// maxPrefix is the longest inline compressed prefix a node can carry.
	maxPrefix = 7

	// none48 marks an absent byte in the node48 index table.
	none48 = 0xFF
)

// Body sizes per kind. node4 and node16 store their key and child arrays
// at full capacity with only the first count entries valid.
const (
	body4   = 1 + 4 + 4*8
	body16  = 1 + 16 + 16*8
	body48  = 256 + 1 + 48*8
	body256 = 256 * 8
)

func bodySize(kind byte) int {
	switch kind {
	case kindNode4:
		return body4
	case kindNode16:
		return body16
	case kindNode48:
		return body48
	case kindNode256:
		return body256
	}
	return 0
}

func nodeKind(img []byte, off int) byte {
	return img[off]
}

func nodeFreq(img []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(img[off+1:])
}

// nodePrefix returns the compressed prefix as a subslice of the image.
func nodePrefix(img []byte, off int) []byte {
	n := int(img[off+5])
	return img[off+6 : off+6+n]
}

// childAt returns the offset of the child selected by key, or false when
// the node has no such child. Lookup is O(1) for node48/node256, a short
// scan otherwise.
func childAt(img []byte, off int, key byte) (int, bool) {
	body := off + headerSize
	switch img[off] {
	case kindNode4:
		count := int(img[body])
		for i := 0; i < count; i++ {
			if img[body+1+i] == key {
				return childSlot(img, body+1+4, i), true
			}
		}
	case kindNode16:
		count := int(img[body])
		keys := img[body+1 : body+1+count]
		lo, hi := 0, count
		for lo < hi {
			mid := (lo + hi) / 2
			if keys[mid] < key {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < count && keys[lo] == key {
			return childSlot(img, body+1+16, lo), true
		}
	case kindNode48:
		slot := img[body+int(key)]
		if slot != none48 {
			return childSlot(img, body+257, int(slot)), true
		}
	case kindNode256:
		child := childSlot(img, body, int(key))
		if child != 0 {
			return child, true
		}
	}
	return 0, false
}

func childSlot(img []byte, base, i int) int {
	return int(binary.LittleEndian.Uint64(img[base+8*i:]))
}

// childIter walks a node's children in ascending key order. It is a plain
// value so the search loop can iterate without allocating.
type childIter struct {
	img   []byte
	kind  byte
	body  int
	i     int
	count int
}

func children(img []byte, off int) childIter {
	it := childIter{img: img, kind: img[off], body: off + headerSize}
	switch it.kind {
	case kindNode4, kindNode16:
		it.count = int(img[it.body])
	case kindNode48, kindNode256:
		it.count = 256
	}
	return it
}

// next returns the following (key, child offset) pair, or ok=false when the
// node is exhausted.
func (it *childIter) next() (key byte, child int, ok bool) {
	switch it.kind {
	case kindNode4:
		if it.i >= it.count {
			return 0, 0, false
		}
		key, child = it.img[it.body+1+it.i], childSlot(it.img, it.body+1+4, it.i)
		it.i++
		return key, child, true
	case kindNode16:
		if it.i >= it.count {
			return 0, 0, false
		}
		key, child = it.img[it.body+1+it.i], childSlot(it.img, it.body+1+16, it.i)
		it.i++
		return key, child, true
	case kindNode48:
		for it.i < it.count {
			b := it.i
			it.i++
			if slot := it.img[it.body+b]; slot != none48 {
				return byte(b), childSlot(it.img, it.body+257, int(slot)), true
			}
		}
	case kindNode256:
		for it.i < it.count {
			b := it.i
			it.i++
			if child = childSlot(it.img, it.body, b); child != 0 {
				return byte(b), child, true
			}
		}
	}
	return 0, 0, false
}

// eachChild visits the children of the node at off in ascending key order.
// It stops and returns false as soon as fn does.
func eachChild(img []byte, off int, fn func(key byte, child int) bool) bool {
	it := children(img, off)
	for key, child, ok := it.next(); ok; key, child, ok = it.next() {
		if !fn(key, child) {
			return false
		}
	}
	return true
}

// appendNode serializes one node and returns the extended buffer. keys must
// be ascending; children[i] is the file offset of the child under keys[i].
// The kind is the smallest one that fits the fan-out.
func appendNode(dst []byte, freq uint32, prefix []byte, keys []byte, children []int) []byte {
	var kind byte
	switch n := len(keys); {
	case n == 0:
		kind = kindLeaf
	case n <= 4:
		kind = kindNode4
	case n <= 16:
		kind = kindNode16
	case n <= 48:
		kind = kindNode48
	default:
		kind = kindNode256
	}

	dst = append(dst, kind)
	dst = binary.LittleEndian.AppendUint32(dst, freq)
	dst = append(dst, byte(len(prefix)))
	// Unused prefix tail bytes are written as zero so identical inputs
	// always produce identical images.
	var pad [maxPrefix]byte
	copy(pad[:], prefix)
	dst = append(dst, pad[:]...)

	switch kind {
	case kindLeaf:
	case kindNode4, kindNode16:
		capacity := 4
		if kind == kindNode16 {
			capacity = 16
		}
		dst = append(dst, byte(len(keys)))
		dst = append(dst, keys...)
		for i := len(keys); i < capacity; i++ {
			dst = append(dst, 0)
		}
		for _, c := range children {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(c))
		}
		for i := len(children); i < capacity; i++ {
			dst = binary.LittleEndian.AppendUint64(dst, 0)
		}
	case kindNode48:
		var table [256]byte
		for i := range table {
			table[i] = none48
		}
		for i, k := range keys {
			table[k] = byte(i)
		}
		dst = append(dst, table[:]...)
		dst = append(dst, byte(len(keys)))
		for _, c := range children {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(c))
		}
		for i := len(children); i < 48; i++ {
			dst = binary.LittleEndian.AppendUint64(dst, 0)
		}
	case kindNode256:
		var slots [256]uint64
		for i, k := range keys {
			slots[k] = uint64(children[i])
		}
		for _, s := range slots {
			dst = binary.LittleEndian.AppendUint64(dst, s)
		}
	}
	return dst
}
