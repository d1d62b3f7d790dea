package sse_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/churchcafe/pkg/sse"
)

func TestSendWritesEventFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := sse.New(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.NotNil(t, stream)

	require.NoError(t, stream.Send("order:created", map[string]any{"id": 1, "status": "pending"}))
	require.NoError(t, stream.Comment("ping"))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: order:created\ndata: {\"id\":1,\"status\":\"pending\"}\n\n: ping\n\n", rec.Body.String())
}

func TestSendRawSplitsLines(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := sse.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, stream.SendRaw("note", []byte("a\nb")))

	assert.Equal(t, "event: note\ndata: a\ndata: b\n\n", rec.Body.String())
}
