package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Reply is one scripted response.
type Reply struct {
	Status int
	Body   string
}

// Hit records a request observed by the PayloadServer.
type Hit struct {
	Path string
	At   time.Time
}

// PayloadServer serves scripted replies per path. Each path consumes its
// script in order and repeats the last reply once the script runs out.
// Unknown paths answer 404.
type PayloadServer struct {
	*httptest.Server

	mu      sync.Mutex
	scripts map[string][]Reply
	hits    []Hit
}

// NewPayloadServer starts a server closed automatically at test cleanup.
func NewPayloadServer(t *testing.T) *PayloadServer {
	t.Helper()

	ps := &PayloadServer{scripts: make(map[string][]Reply)}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.serve))
	t.Cleanup(ps.Close)
	return ps
}

// Script sets the replies for path.
func (ps *PayloadServer) Script(path string, replies ...Reply) *PayloadServer {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.scripts[path] = append([]Reply(nil), replies...)
	return ps
}

// JSON scripts a single 200 reply for path.
func (ps *PayloadServer) JSON(path, body string) *PayloadServer {
	return ps.Script(path, Reply{Status: http.StatusOK, Body: body})
}

// Endpoint joins path onto the server base URL.
func (ps *PayloadServer) Endpoint(path string) string {
	return ps.Server.URL + path
}

// Hits returns the requests received for path, in arrival order.
func (ps *PayloadServer) Hits(path string) []Hit {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	var out []Hit
	for _, hit := range ps.hits {
		if hit.Path == path {
			out = append(out, hit)
		}
	}
	return out
}

func (ps *PayloadServer) serve(w http.ResponseWriter, r *http.Request) {
	ps.mu.Lock()
	ps.hits = append(ps.hits, Hit{Path: r.URL.Path, At: time.Now()})
	script, ok := ps.scripts[r.URL.Path]
	var reply Reply
	if ok && len(script) > 0 {
		reply = script[0]
		if len(script) > 1 {
			ps.scripts[r.URL.Path] = script[1:]
		}
	}
	ps.mu.Unlock()

	if !ok || len(script) == 0 {
		http.NotFound(w, r)
		return
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply.Body))
}
