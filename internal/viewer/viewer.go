package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/report"
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Options configures the serving defaults applied to every request.
type Options struct {
	Weights engine.Weights
	Engine  engine.Options
	TopN    int
}

// server holds the currently loaded document and the engine built from
// it. POST /graph swaps both atomically.
type server struct {
	mu   sync.RWMutex
	opts Options
	doc  *strategy.Document
	eng  *engine.Engine
}

func (s *server) setDocument(doc *strategy.Document) {
	eng := engine.New(doc, s.opts.Engine)
	s.mu.Lock()
	s.doc = doc
	s.eng = eng
	s.mu.Unlock()
}

func (s *server) handlePostGraph(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := strategy.Parse(data)
	if err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if violations := strategy.Validate(doc); len(violations) > 0 {
		lines := make([]string, len(violations))
		for i, v := range violations {
			lines[i] = v.String()
		}
		http.Error(w, "invalid document:\n"+strings.Join(lines, "\n"), http.StatusUnprocessableEntity)
		return
	}

	s.setDocument(doc)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]int{
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	})
}

func (s *server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	if doc == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	eng := s.eng
	s.mu.RUnlock()

	if eng == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eng.AllMetrics(s.opts.Weights))
}

func (s *server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	eng := s.eng
	s.mu.RUnlock()

	if eng == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	rep := report.Build(eng, s.opts.Weights, s.opts.TopN)
	data, err := rep.JSON()
	if err != nil {
		http.Error(w, "render report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Handler builds the HTTP handler serving the graph API. doc may be nil;
// a document can be posted later.
func Handler(doc *strategy.Document, opts Options) http.Handler {
	srv := &server{opts: opts}
	if doc != nil {
		srv.setDocument(doc)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/graph", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			srv.handlePostGraph(w, r)
		case http.MethodGet:
			srv.handleGetGraph(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleGetMetrics(w, r)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleGetReport(w, r)
	})

	return mux
}

// Start launches the viewer HTTP server on the given port in the background.
// Returns the base URL (e.g. "http://localhost:7171") or an error.
func Start(port int, doc *strategy.Document, opts Options) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	go http.Serve(ln, Handler(doc, opts))

	addr := fmt.Sprintf("http://localhost:%d", port)
	return addr, nil
}

// PostDocument sends a strategy document to a running viewer server.
func PostDocument(addr string, doc *strategy.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	resp, err := http.Post(addr+"/graph", "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("POST /graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST /graph returned %d", resp.StatusCode)
	}

	return nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
