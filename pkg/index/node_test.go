package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildNode serializes a single node with fanOut children keyed by
// consecutive even bytes, so that odd bytes are guaranteed misses.
func buildNode(t *testing.T, freq uint32, prefix []byte, fanOut int) ([]byte, []byte, []int) {
	t.Helper()
	require.LessOrEqual(t, fanOut, 128)

	keys := make([]byte, fanOut)
	children := make([]int, fanOut)
	for i := 0; i < fanOut; i++ {
		keys[i] = byte(2 * i)
		children[i] = 1000 + i
	}
	return appendNode(nil, freq, prefix, keys, children), keys, children
}

func TestNodeKindPromotion(t *testing.T) {
	cases := []struct {
		fanOut int
		kind   byte
	}{
		{0, kindLeaf},
		{1, kindNode4},
		{4, kindNode4},
		{5, kindNode16},
		{16, kindNode16},
		{17, kindNode48},
		{48, kindNode48},
		{49, kindNode256},
		{128, kindNode256},
	}
	for _, tc := range cases {
		img, _, _ := buildNode(t, 0, nil, tc.fanOut)
		assert.Equal(t, tc.kind, nodeKind(img, 0), "fan-out %d", tc.fanOut)
		assert.Len(t, img, headerSize+bodySize(tc.kind), "fan-out %d", tc.fanOut)
	}
}

func TestNodeHeaderRoundTrip(t *testing.T) {
	img, _, _ := buildNode(t, 0xDEADBEEF, []byte("abcdefg"), 2)

	assert.Equal(t, uint32(0xDEADBEEF), nodeFreq(img, 0))
	assert.Equal(t, []byte("abcdefg"), nodePrefix(img, 0))
}

func TestChildLookupAllKinds(t *testing.T) {
	for _, fanOut := range []int{1, 3, 4, 9, 16, 30, 48, 77, 128} {
		img, keys, children := buildNode(t, 0, nil, fanOut)

		for i, k := range keys {
			got, ok := childAt(img, 0, k)
			require.True(t, ok, "fan-out %d key %d", fanOut, k)
			assert.Equal(t, children[i], got)
		}
		// odd bytes were never inserted
		for _, miss := range []byte{1, 3, 129, 255} {
			_, ok := childAt(img, 0, miss)
			assert.False(t, ok, "fan-out %d key %d should miss", fanOut, miss)
		}
	}
}

func TestChildIterationAscending(t *testing.T) {
	for _, fanOut := range []int{0, 4, 16, 48, 128} {
		img, keys, children := buildNode(t, 0, nil, fanOut)

		var gotKeys []byte
		var gotChildren []int
		eachChild(img, 0, func(key byte, child int) bool {
			gotKeys = append(gotKeys, key)
			gotChildren = append(gotChildren, child)
			return true
		})
		assert.Equal(t, keys, append([]byte{}, gotKeys...), "fan-out %d", fanOut)
		if fanOut > 0 {
			assert.Equal(t, children, gotChildren)
		}
		for i := 1; i < len(gotKeys); i++ {
			assert.Less(t, gotKeys[i-1], gotKeys[i], "keys must be strictly ascending")
		}
	}
}

func TestNode48IndexCoherence(t *testing.T) {
	img, keys, _ := buildNode(t, 0, nil, 40)
	require.Equal(t, byte(kindNode48), nodeKind(img, 0))

	body := headerSize
	count := int(img[body+256])
	assert.Equal(t, len(keys), count)

	present := map[byte]bool{}
	for _, k := range keys {
		present[k] = true
	}
	for b := 0; b < 256; b++ {
		slot := img[body+b]
		if present[byte(b)] {
			assert.Less(t, int(slot), count, "byte %d", b)
		} else {
			assert.Equal(t, byte(none48), slot, "byte %d", b)
		}
	}
}

func TestIterationStopsEarly(t *testing.T) {
	img, _, _ := buildNode(t, 0, nil, 10)
	seen := 0
	done := eachChild(img, 0, func(byte, int) bool {
		seen++
		return seen < 3
	})
	assert.False(t, done)
	assert.Equal(t, 3, seen)
}
