package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// Runner fires scenarios at one handler.
type Runner struct {
	Handler http.Handler
	tokens  map[string]string
}

func NewRunner(h http.Handler) *Runner {
	return &Runner{Handler: h, tokens: map[string]string{}}
}

// Token registers the bearer token sent for scenarios with "as": name.
func (r *Runner) Token(name, token string) *Runner {
	r.tokens[name] = token
	return r
}

// RunFile runs every scenario in path, in order, as subtests.
func (r *Runner) RunFile(t *testing.T, path string) {
	t.Helper()

	list, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	for _, s := range list {
		t.Run(s.Name, func(t *testing.T) {
			r.run(t, s)
		})
	}
}

// RunDir runs every *.json file in dir, one subtest per file.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		t.Run(name, func(t *testing.T) {
			r.RunFile(t, path)
		})
	}
}

func (r *Runner) run(t *testing.T, s *Scenario) {
	t.Helper()

	raw, err := s.requestBytes()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var body io.Reader
	if raw != nil {
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.As != "" {
		token, ok := r.tokens[s.As]
		if !ok {
			t.Fatalf("[%s] no token registered for %q", s.Name, s.As)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	r.Handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.String())

	expected, err := s.responseBytes()
	if err != nil {
		t.Errorf("[%s] read expected response: %v", s.Name, err)
		return
	}
	AssertJSONBody(t, s, expected, rec.Body.Bytes())
}
