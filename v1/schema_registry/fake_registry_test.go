package schema_registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeRegistry is an in-memory registry speaking the subset of the REST API
// the client uses. Any schema differing from a subject's latest is treated
// as incompatible.
type fakeRegistry struct {
	mu       sync.Mutex
	nextID   int
	subjects map[string][]fakeVersion
	byID     map[int]string

	registerCalls atomic.Int32
	requests      atomic.Int32
	failures      atomic.Int32 // pending 503 answers
	user, pass    string
}

type fakeVersion struct {
	id     int
	schema string
	kind   string
}

func newFakeRegistry(t *testing.T) (*fakeRegistry, *httptest.Server) {
	f := &fakeRegistry{nextID: 1, subjects: map[string][]fakeVersion{}, byID: map[int]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /subjects/{subject}/versions", f.register)
	mux.HandleFunc("GET /subjects/{subject}/versions/latest", f.latest)
	mux.HandleFunc("GET /schemas/ids/{id}", f.schemaByID)
	mux.HandleFunc("POST /compatibility/subjects/{subject}/versions/latest", f.compatibility)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.user != "" {
			if u, p, ok := r.BasicAuth(); !ok || u != f.user || p != f.pass {
				writeError(w, http.StatusUnauthorized, 40101, "unauthorized")
				return
			}
		}
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			writeError(w, http.StatusServiceUnavailable, 50003, "try again")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRegistry) seed(subject, schema string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subjects[subject] = append(f.subjects[subject], fakeVersion{id: id, schema: schema})
	f.byID[id] = schema
	return id
}

func (f *fakeRegistry) register(w http.ResponseWriter, r *http.Request) {
	f.registerCalls.Add(1)
	var body struct {
		Schema     string `json:"schema"`
		SchemaType string `json:"schemaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Schema == "" {
		writeError(w, http.StatusUnprocessableEntity, 42201, "invalid schema")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	subject := r.PathValue("subject")
	versions := f.subjects[subject]
	if n := len(versions); n > 0 {
		if versions[n-1].schema == body.Schema {
			writeJSON(w, map[string]int{"id": versions[n-1].id})
			return
		}
		writeError(w, http.StatusConflict, 409, "incompatible schema")
		return
	}
	id := f.nextID
	f.nextID++
	f.subjects[subject] = append(versions, fakeVersion{id: id, schema: body.Schema, kind: body.SchemaType})
	f.byID[id] = body.Schema
	writeJSON(w, map[string]int{"id": id})
}

func (f *fakeRegistry) latest(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subject := r.PathValue("subject")
	versions := f.subjects[subject]
	if len(versions) == 0 {
		writeError(w, http.StatusNotFound, 40401, "Subject '"+subject+"' not found.")
		return
	}
	v := versions[len(versions)-1]
	writeJSON(w, map[string]interface{}{
		"subject":    subject,
		"id":         v.id,
		"version":    len(versions),
		"schema":     v.schema,
		"schemaType": v.kind,
	})
}

func (f *fakeRegistry) schemaByID(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.Atoi(r.PathValue("id"))
	schema, ok := f.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, 40403, "Schema not found")
		return
	}
	writeJSON(w, map[string]string{"schema": schema})
}

func (f *fakeRegistry) compatibility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Schema string `json:"schema"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.subjects[r.PathValue("subject")]
	if len(versions) == 0 {
		writeError(w, http.StatusNotFound, 40401, "subject not found")
		return
	}
	writeJSON(w, map[string]bool{"is_compatible": versions[len(versions)-1].schema == body.Schema})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error_code": code, "message": msg})
}
