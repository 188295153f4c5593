// Package server is a small read-only HTTP API over an in-memory
// cakes.Facade, adapted from the teacher's internal/server: a plain
// net/http.ServeMux, handler methods on a Server type, and a Serve
// entry point that reports a friendly error when the port is taken.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/TobiSchelling/cakes/pkg/cakes"
	"github.com/TobiSchelling/cakes/pkg/search/knn"
	"github.com/TobiSchelling/cakes/pkg/search/rnn"
)

// Server serves stats and search queries over a single vector facade.
type Server struct {
	facade *cakes.Facade[[]float64, float64]
	mux    *http.ServeMux
}

// New builds a Server over facade.
func New(facade *cakes.Facade[[]float64, float64]) *Server {
	s := &Server{facade: facade, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/stats", s.handleStats)
	s.mux.HandleFunc("/rnn", s.handleRnn)
	s.mux.HandleFunc("/knn", s.handleKnn)
}

type statsResponse struct {
	Cardinality int     `json:"cardinality"`
	Depth       int     `json:"depth"`
	Radius      float64 `json:"radius"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, statsResponse{
		Cardinality: s.facade.Data().Cardinality(),
		Depth:       s.facade.Depth(),
		Radius:      s.facade.Radius(),
	})
}

type hitResponse struct {
	Index    int     `json:"index"`
	Distance float64 `json:"distance"`
}

type rnnRequest struct {
	Queries [][]float64 `json:"queries"`
	Radius  float64     `json:"radius"`
}

func (s *Server) handleRnn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rnnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Queries) == 0 {
		http.Error(w, "queries must be non-empty", http.StatusBadRequest)
		return
	}

	if len(req.Queries) == 1 {
		hits, err := s.facade.RnnSearch(req.Queries[0], req.Radius, rnn.Clustered)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, toRnnResponse(hits))
		return
	}

	results, errs := s.facade.BatchRnnSearch(req.Queries, req.Radius, rnn.Clustered)
	out := make([][]hitResponse, len(results))
	for i, hits := range results {
		if errs[i] != nil {
			http.Error(w, errs[i].Error(), http.StatusBadRequest)
			return
		}
		out[i] = toRnnResponse(hits)
	}
	writeJSON(w, out)
}

type knnRequest struct {
	Queries [][]float64 `json:"queries"`
	K       int         `json:"k"`
}

func (s *Server) handleKnn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req knnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Queries) == 0 {
		http.Error(w, "queries must be non-empty", http.StatusBadRequest)
		return
	}

	if len(req.Queries) == 1 {
		hits, err := s.facade.KnnSearch(req.Queries[0], req.K, knn.RepeatedRnn)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, toKnnResponse(hits))
		return
	}

	results, errs := s.facade.BatchKnnSearch(req.Queries, req.K, knn.RepeatedRnn)
	out := make([][]hitResponse, len(results))
	for i, hits := range results {
		if errs[i] != nil {
			http.Error(w, errs[i].Error(), http.StatusBadRequest)
			return
		}
		out[i] = toKnnResponse(hits)
	}
	writeJSON(w, out)
}

func toRnnResponse(hits []rnn.Hit[float64]) []hitResponse {
	out := make([]hitResponse, len(hits))
	for i, h := range hits {
		out[i] = hitResponse{Index: h.Index, Distance: h.Distance}
	}
	return out
}

func toKnnResponse(hits []knn.Hit[float64]) []hitResponse {
	out := make([]hitResponse, len(hits))
	for i, h := range hits {
		out[i] = hitResponse{Index: h.Index, Distance: h.Distance}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(facade *cakes.Facade[[]float64, float64], port int) error {
	srv := New(facade)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return fmt.Errorf("port %d already in use%s", port, identifyPortHolder(port))
		}
		return err
	}

	log.Printf("Server listening on http://%s", addr)
	return http.Serve(ln, srv.Handler())
}

func isAddrInUse(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var sysErr *os.SyscallError
		if errors.As(opErr.Err, &sysErr) {
			return errors.Is(sysErr.Err, syscall.EADDRINUSE)
		}
	}
	return false
}

// identifyPortHolder uses lsof to find which process holds the port.
func identifyPortHolder(port int) string {
	out, err := exec.Command("lsof", "-ti", fmt.Sprintf("tcp:%d", port)).Output()
	if err != nil || len(out) == 0 {
		return ""
	}

	pid := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	cmd, err := exec.Command("ps", "-p", pid, "-o", "command=").Output()
	if err != nil || len(cmd) == 0 {
		return fmt.Sprintf(" (pid %s)", pid)
	}

	return fmt.Sprintf(" (pid %s: %s)", pid, strings.TrimSpace(string(cmd)))
}
