package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu      sync.Mutex
	batches [][]any
	fail    bool
}

func (w *memWriter) InsertMany(_ context.Context, docs []any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("mongo down")
	}
	w.batches = append(w.batches, append([]any(nil), docs...))
	return nil
}

func (w *memWriter) records() []Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Record
	for _, b := range w.batches {
		for _, d := range b {
			out = append(out, d.(Record))
		}
	}
	return out
}

func TestCloseFlushesQueuedRecords(t *testing.T) {
	w := &memWriter{}
	s := newSink(w, time.Hour)

	assert.True(t, s.Record(Record{Event: "order:created", OrderID: 1, UserID: 7, Total: "12"}))
	assert.True(t, s.Record(Record{Event: "order:statusUpdated", OrderID: 1, UserID: 7, Status: "ready"}))
	s.Close()

	got := w.records()
	require.Len(t, got, 2)
	assert.Equal(t, "order:created", got[0].Event)
	assert.False(t, got[0].Time.IsZero())
	assert.Equal(t, "ready", got[1].Status)

	assert.False(t, s.Record(Record{Event: "order:created"}))
	s.Close()
}

func TestBatchesAreCapped(t *testing.T) {
	w := &memWriter{}
	s := newSink(w, time.Hour)
	for i := 0; i < batchSize+5; i++ {
		s.Record(Record{Event: "order:created", OrderID: uint(i + 1)})
	}
	s.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, b := range w.batches {
		assert.LessOrEqual(t, len(b), batchSize)
		total += len(b)
	}
	assert.Equal(t, batchSize+5, total)
}

func TestTickerFlushes(t *testing.T) {
	w := &memWriter{}
	s := newSink(w, 10*time.Millisecond)
	defer s.Close()

	s.Record(Record{Event: "order:created", OrderID: 3})
	assert.Eventually(t, func() bool { return len(w.records()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestWriteErrorsAreSwallowed(t *testing.T) {
	w := &memWriter{fail: true}
	s := newSink(w, time.Hour)
	s.Record(Record{Event: "order:created", OrderID: 1})
	assert.NotPanics(t, s.Close)
}
