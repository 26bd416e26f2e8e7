/*
Package main implements the offline dictionary compiler.

spellc turns a sorted word-frequency list into the compiled search image
that spellserve queries. The input is plain text, one "word<TAB>frequency"
entry per line, already sorted in byte order; the output is a single binary
file consumed as-is by the query engine.

# Usage

Compile a dictionary:

	spellc words.txt words.bin

Enable debug logging:

	spellc -d words.txt words.bin

The compiler streams: memory use is bounded by the longest word, not the
dictionary size, and the output file appears only when the whole input
compiled cleanly. Out-of-order or malformed input aborts with an error
naming the offending word or line.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bastiangx/spellserve/pkg/index"
	"github.com/charmbracelet/log"
)

func main() {
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-d] <words.txt> <output.bin>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	src, dst := flag.Arg(0), flag.Arg(1)
	log.Debugf("compiling %s -> %s", src, dst)

	if err := index.CompileFile(src, dst); err != nil {
		log.Fatalf("Compile failed: %v", err)
	}

	if info, err := os.Stat(dst); err == nil {
		log.Debugf("image written: %s (%d bytes)", dst, info.Size())
	}
}
