// Package testkit drives HTTP tests from JSON scenario files and provides
// the shared fixtures: a migrated in-memory database and signed tokens.
//
// A scenario file holds one scenario or an array run in order, so later
// steps can rely on rows earlier steps created:
//
//	[
//	  {"name": "create", "as": "alice", "requestMethod": "POST",
//	   "requestUrl": "/api/orders", "requestBody": {"items": [...]},
//	   "expectedCode": 201, "responseBody": {"id": 1, "total": 12}},
//	  {"name": "list", "as": "alice", "requestUrl": "/api/orders/me",
//	   "expectedCode": 200}
//	]
//
// responseBody is matched as a subset: keys the scenario omits are not
// compared, and arrays must have the same length.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	RequestFileName string            `json:"requestFileName"`
	Headers         map[string]string `json:"headers"`
	// As names a principal registered with Runner.Token; its bearer token
	// is sent in the Authorization header.
	As string `json:"as"`

	ExpectedCode     int             `json:"expectedCode"`
	ResponseBody     json.RawMessage `json:"responseBody"`
	ResponseFileName string          `json:"responseFileName"`

	dir string
}

// LoadScenarios reads path, which holds a scenario object or an array.
func LoadScenarios(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var list []*Scenario
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &list)
	} else {
		var one Scenario
		err = json.Unmarshal(data, &one)
		list = []*Scenario{&one}
	}
	if err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i, s := range list {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %d in %q: %w", i, abs, err)
		}
		s.dir = filepath.Dir(abs)
	}
	return list, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		return fmt.Errorf("requestBody and requestFileName are mutually exclusive")
	}
	return nil
}

// requestBytes returns the inline body or the contents of RequestFileName.
func (s *Scenario) requestBytes() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if s.RequestFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.RequestFileName))
}

func (s *Scenario) responseBytes() ([]byte, error) {
	if len(s.ResponseBody) > 0 {
		return s.ResponseBody, nil
	}
	if s.ResponseFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.ResponseFileName))
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
