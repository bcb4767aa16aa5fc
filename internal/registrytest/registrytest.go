// Package registrytest serves a fake license-list-data mirror for tests.
package registrytest

import (
	"embed"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Tag is the ref the bundled fixtures are published under.
const Tag = "v3.24"

//go:embed testdata
var fixtures embed.FS

// Server is a fake mirror laid out like raw.githubusercontent.com:
// /<ref>/json/<file>.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	files    map[string][]byte // "<ref>/<file>" overrides
}

// NewServer starts a mirror serving the bundled fixtures. It is closed when
// the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{files: map[string][]byte{}}
	r := chi.NewRouter()
	r.Get("/{ref}/json/{file}", s.serveFile)
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Set overrides the payload served for file at ref.
func (s *Server) Set(ref, file string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[ref+"/"+file] = body
}

// Requests returns the request paths seen so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	file := chi.URLParam(r, "file")

	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	body, ok := s.files[ref+"/"+file]
	s.mu.Unlock()

	if !ok {
		var err error
		body, err = fs.ReadFile(fixtures, path.Join("testdata", ref, file))
		if err != nil {
			http.Error(w, "404: Not Found", http.StatusNotFound)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}
