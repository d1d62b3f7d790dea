package testkit

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := r.Header.Get("Authorization")
	if token == "" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":401,"message":"no token"}`))
		return
	}
	raw, _ := io.ReadAll(r.Body)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token":  token,
		"method": r.Method,
		"body":   json.RawMessage(raw),
		"extra":  "ignored by subset matching",
	})
}

func TestRunnerRunsScenarioFile(t *testing.T) {
	NewRunner(http.HandlerFunc(echoHandler)).
		Token("alice", "t-alice").
		RunFile(t, "testdata/echo.json")
}

func TestLoadScenariosValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","requestUrl":"/"}`), 0o644))
	_, err := LoadScenarios(path)
	assert.ErrorContains(t, err, "expectedCode is required")

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","requestUrl":"/","expectedCode":200}`), 0o644))
	list, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "GET", list[0].RequestMethod)
}

func TestDiffJSON(t *testing.T) {
	decode := func(s string) any {
		var v any
		require.NoError(t, json.Unmarshal([]byte(s), &v))
		return v
	}

	assert.Empty(t, DiffJSON("", decode(`{"id":1}`), decode(`{"id":1,"name":"Coffee"}`)))
	assert.Empty(t, DiffJSON("", decode(`[{}, {"a":true}]`), decode(`[{"x":1}, {"a":true}]`)))

	diffs := DiffJSON("", decode(`{"total":12,"items":[1]}`), decode(`{"total":11,"items":[1,2]}`))
	assert.Len(t, diffs, 2)

	diffs = DiffJSON("", decode(`{"user":{"role":"admin"}}`), decode(`{"user":{}}`))
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "user.role: missing in actual")
}
