package dictionary

import (
	"io"
	"strings"
	"testing"
)

func TestReader(t *testing.T) {
	input := "cat\t3\ncar\t5\n\n  \ncart 1\n"
	r := NewReader(strings.NewReader(input))

	want := []Entry{
		{Word: "cat", Freq: 3},
		{Word: "car", Freq: 5},
		{Word: "cart", Freq: 1},
	}
	for _, w := range want {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != w {
			t.Errorf("got %+v, want %+v", got, w)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderMalformed(t *testing.T) {
	cases := []string{
		"justaword\n",
		"word one two\n",
		"word notanumber\n",
		"word 99999999999\n", // overflows uint32
		"word -1\n",
	}
	for _, input := range cases {
		r := NewReader(strings.NewReader(input))
		if _, err := r.Next(); err == nil || err == io.EOF {
			t.Errorf("input %q: expected a parse error, got %v", input, err)
		}
	}
}
