package server

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/spellserve/pkg/config"
	"github.com/bastiangx/spellserve/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// request is the decoded envelope; the Action field decides whether this
// is a lookup or an index management message.
type request struct {
	ID       string `msgpack:"id"`
	Query    string `msgpack:"q"`
	Distance *int   `msgpack:"d"`
	Limit    int    `msgpack:"l"`
	Action   string `msgpack:"action"`
}

// Server handles the IPC for approximate word lookup
type Server struct {
	ix           *index.Index
	searcher     *index.Searcher
	cfg          *config.Config
	dec          *msgpack.Decoder
	enc          *msgpack.Encoder
	requestCount int
}

// NewServer creates a new lookup server using stdin/stdout for IPC
func NewServer(ix *index.Index, cfg *config.Config) *Server {
	return &Server{
		ix:       ix,
		searcher: index.NewSearcher(ix),
		cfg:      cfg,
		dec:      msgpack.NewDecoder(os.Stdin),
		enc:      msgpack.NewEncoder(os.Stdout),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting server.")

	s.sendResponse(map[string]string{"status": "ready"})

	for {
		var req request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request
func (s *Server) handleRequest(req request) {
	s.requestCount++
	if req.Action != "" {
		s.handleIndex(req)
		return
	}
	s.handleQuery(req)
}

// handleQuery validates a lookup request, runs it, and sends the response.
func (s *Server) handleQuery(req request) {
	if req.Query == "" {
		s.sendError(req.ID, "Missing 'q' parameter", 400)
		log.Debug("Query is empty in request")
		return
	}
	if len(req.Query) > s.cfg.Server.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d bytes", s.cfg.Server.MaxQuery), 400)
		log.Debug("Query is too long in request")
		return
	}

	dist := s.cfg.Search.DefaultDistance
	if req.Distance != nil {
		dist = *req.Distance
	}
	if dist < 0 {
		s.sendError(req.ID, "Distance must be non-negative", 400)
		return
	}
	if dist > s.cfg.Server.MaxDistance {
		dist = s.cfg.Server.MaxDistance
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Search.DefaultLimit
	}
	if s.cfg.Server.MaxLimit > 0 && (limit <= 0 || limit > s.cfg.Server.MaxLimit) {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	results := s.searcher.Search([]byte(req.Query), dist)
	elapsed := time.Since(start)

	total := len(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	entries := make([]ResultEntry, len(results))
	for i, r := range results {
		entries[i] = ResultEntry{Word: r.Word, Freq: r.Freq, Distance: r.Distance}
	}

	log.Debugf("query '%s' d=%d: %d results in %v", req.Query, dist, total, elapsed)

	s.sendResponse(QueryResponse{
		ID:        req.ID,
		Results:   entries,
		Count:     len(entries),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleIndex answers index management requests
func (s *Server) handleIndex(req request) {
	switch req.Action {
	case "get_info":
		s.sendResponse(IndexResponse{
			ID:         req.ID,
			Status:     "ok",
			Words:      s.ix.Words(),
			ImageBytes: s.ix.Size(),
		})
	case "health":
		s.sendResponse(IndexResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendResponse(IndexResponse{
			ID:     req.ID,
			Status: "error",
			Error:  fmt.Sprintf("unknown action: %s", req.Action),
		})
	}
}

// sendResponse encodes the given response and writes it to the client.
func (s *Server) sendResponse(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(QueryError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
