// Package stub serves a local stand-in for the analysis service. It is used
// for offline work on the board and by the HTTP tests.
package stub

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/tenzor/internal/analysis"
)

const pngPrefix = "data:image/png;base64,"

// Responder produces the entries returned for a request.
type Responder interface {
	Respond(req analysis.Request) ([]analysis.Entry, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(analysis.Request) ([]analysis.Entry, error)

func (f ResponderFunc) Respond(req analysis.Request) ([]analysis.Entry, error) { return f(req) }

// Fixed always answers with the same entries.
type Fixed []analysis.Entry

func (f Fixed) Respond(analysis.Request) ([]analysis.Entry, error) {
	out := make([]analysis.Entry, len(f))
	copy(out, f)
	return out, nil
}

// LoadFile reads a reply document of the form {"data": [...]}.
func LoadFile(path string) (Fixed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	entries, err := analysis.DecodeResponse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Fixed(entries), nil
}

// Recorder keeps every request it sees before delegating to Next.
type Recorder struct {
	Next Responder

	mu       sync.Mutex
	requests []analysis.Request
}

func (r *Recorder) Respond(req analysis.Request) ([]analysis.Entry, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if r.Next == nil {
		return nil, nil
	}
	return r.Next.Respond(req)
}

// Requests returns the recorded requests in arrival order.
func (r *Recorder) Requests() []analysis.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]analysis.Request(nil), r.requests...)
}

// Option configures the router.
type Option func(*server)

// WithLogging logs each request.
func WithLogging() Option { return func(s *server) { s.logging = true } }

type server struct {
	responder Responder
	logging   bool
}

// NewRouter returns a handler implementing POST /calculate/analyze.
func NewRouter(resp Responder, opts ...Option) http.Handler {
	s := &server{responder: resp}
	for _, o := range opts {
		o(s)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.logging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post(analysis.Path, s.analyze)
	return r
}

type requestBody struct {
	Image *string            `json:"image"`
	Vars  *map[string]string `json:"dict_of_vars"`
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	if id := r.Header.Get(analysis.RequestIDHeader); id != "" {
		w.Header().Set(analysis.RequestIDHeader, id)
	}
	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		log.Printf("stub: invalid body: %v", err)
		return
	}
	if body.Image == nil || body.Vars == nil {
		http.Error(w, "image and dict_of_vars are required", http.StatusBadRequest)
		return
	}
	if err := checkImage(*body.Image); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries, err := s.responder.Respond(analysis.Request{Image: *body.Image, Vars: *body.Vars})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Printf("stub: responder: %v", err)
		return
	}
	if entries == nil {
		entries = []analysis.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": entries, "status": "success"}); err != nil {
		log.Printf("stub: encode: %v", err)
	}
}

func checkImage(uri string) error {
	if !strings.HasPrefix(uri, pngPrefix) {
		return fmt.Errorf("image must be a PNG data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, pngPrefix))
	if err != nil {
		return fmt.Errorf("image is not valid base64")
	}
	if _, err := png.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("image is not a PNG")
	}
	return nil
}
