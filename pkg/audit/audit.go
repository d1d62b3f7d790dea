// Package audit stores order events in MongoDB for later inspection.
//
// Records are queued on a buffered channel and written by one background
// goroutine with InsertMany, in batches of up to 50 or every two seconds.
// A full queue drops the record; recording never blocks the caller.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/churchcafe/pkg/logger"
)

const (
	queueSize = 1024
	batchSize = 50
	drainTick = 2 * time.Second
)

// Record is the document written per event.
type Record struct {
	Time      time.Time `bson:"time"`
	Event     string    `bson:"event"`
	OrderID   uint      `bson:"order_id"`
	UserID    uint      `bson:"user_id"`
	Status    string    `bson:"status,omitempty"`
	Total     string    `bson:"total,omitempty"`
	RequestID string    `bson:"request_id,omitempty"`
}

// Writer persists a batch of documents.
type Writer interface {
	InsertMany(ctx context.Context, docs []any) error
}

type collectionWriter struct{ col *mongo.Collection }

func (w collectionWriter) InsertMany(ctx context.Context, docs []any) error {
	_, err := w.col.InsertMany(ctx, docs)
	return err
}

type Sink struct {
	w      Writer
	queue  chan Record
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	closer func(context.Context) error
	tick   time.Duration
}

// NewSink starts a sink over w.
func NewSink(w Writer) *Sink {
	return newSink(w, drainTick)
}

func newSink(w Writer, tick time.Duration) *Sink {
	s := &Sink{
		w:     w,
		queue: make(chan Record, queueSize),
		done:  make(chan struct{}),
		tick:  tick,
	}
	s.wg.Add(1)
	go s.drainLoop()
	return s
}

// Connect opens uri and returns a sink writing to db.order_events.
func Connect(ctx context.Context, uri, db string) (*Sink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: ping: %w", err)
	}

	col := client.Database(db).Collection("order_events")
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "time", Value: 1}}},
	})

	s := NewSink(collectionWriter{col: col})
	s.closer = client.Disconnect
	return s, nil
}

// Record queues r. It reports false when the record was dropped.
func (s *Sink) Record(r Record) bool {
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.queue <- r:
		return true
	default:
		logger.Warn("audit: queue full, record dropped", "event", r.Event, "order_id", r.OrderID)
		return false
	}
}

func (s *Sink) drainLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	batch := make([]any, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.w.InsertMany(ctx, batch); err != nil {
			logger.Error("audit: insert failed", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case r := <-s.queue:
			batch = append(batch, r)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case r := <-s.queue:
					batch = append(batch, r)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close flushes queued records and disconnects. Safe to call twice.
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.closer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.closer(ctx)
		}
	})
}
