// Package cli handles cmd line input and result printing for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/spellserve/internal/utils"
	"github.com/bastiangx/spellserve/pkg/index"
	"github.com/charmbracelet/log"
)

// InputHandler processes query lines from stdin. Each line is either
// "approx <d> <word>" (the canonical form), "<d> <word>", or a bare word
// searched at the default distance.
type InputHandler struct {
	searcher        *index.Searcher
	defaultDistance int
	maxDistance     int
	resultLimit     int
	requestCount    int
	noFilter        bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(ix *index.Index, defaultDistance, maxDistance, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		searcher:        index.NewSearcher(ix),
		defaultDistance: defaultDistance,
		maxDistance:     maxDistance,
		resultLimit:     limit,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop.
// It continuously reads a line from stdin and passes the trimmed input to
// handleInput() for processing. Loop terminates on stdin EOF or error.
func (h *InputHandler) Start() error {
	log.Print("spellserve CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("query format: approx <distance> <word>   (Ctrl+C to exit)")

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// parseQuery splits a line into the distance and the word.
func (h *InputHandler) parseQuery(line string) (int, string, error) {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "approx" {
		fields = fields[1:]
	}
	switch len(fields) {
	case 1:
		return h.defaultDistance, fields[0], nil
	case 2:
		d, err := strconv.Atoi(fields[0])
		if err != nil || d < 0 {
			return 0, "", fmt.Errorf("bad distance %q", fields[0])
		}
		return d, fields[1], nil
	}
	return 0, "", fmt.Errorf("want \"approx <distance> <word>\", got %q", line)
}

// handleInput processes a single query line: validate, search, print.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	dist, word, err := h.parseQuery(line)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	if dist > h.maxDistance {
		log.Warnf("Distance %d capped to %d", dist, h.maxDistance)
		dist = h.maxDistance
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidQuery(word) {
			log.Infof("No results for query: '%s'", word)
			return
		}
	} else {
		log.Debug("Input filtering disabled")
	}

	start := time.Now()
	results := h.searcher.Search([]byte(word), dist)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s' d=%d", elapsed, word, dist)

	if len(results) == 0 {
		log.Warnf("No words within distance %d of '%s'", dist, word)
		return
	}

	shown := results
	if h.resultLimit > 0 && len(shown) > h.resultLimit {
		shown = shown[:h.resultLimit]
	}

	log.Printf("Found %d words within distance %d of '%s':", len(results), dist, word)
	for i, r := range shown {
		fmtFreq := utils.FormatWithCommas(r.Freq)
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", r.Word)
		log.Printf("%2d. %-40s (freq: %10s, dist: %d)", i+1, clWord, fmtFreq, r.Distance)
	}
}
