package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// LogDocument is the shape written to the logs collection.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// Inserter is the part of *mongo.Collection the sink needs.
type Inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// sink owns the queue shared by every handler derived via WithAttrs/WithGroup.
type sink struct {
	col   Inserter
	queue chan LogDocument
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// MongoHandler is an slog.Handler that ships records to MongoDB in batches.
// Handle never blocks: when the queue is full the record is dropped.
type MongoHandler struct {
	sink   *sink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewMongoHandler starts the drain loop writing into col, usually the
// "logs" collection of the application database.
// The caller must call Close to flush.
func NewMongoHandler(col Inserter, level slog.Leveler) *MongoHandler {
	s := &sink{
		col:   col,
		queue: make(chan LogDocument, mongoQueueSize),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.drainLoop()
	return &MongoHandler{sink: s, level: level}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.level == nil || l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}

	for _, a := range h.attrs {
		h.add(&doc, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		h.add(&doc, a, h.prefix)
		return true
	})

	select {
	case h.sink.queue <- doc:
	default:
	}
	return nil
}

func (h *MongoHandler) add(doc *LogDocument, a slog.Attr, prefix string) {
	if a.Key == "request_id" {
		doc.RequestID = a.Value.String()
		return
	}
	doc.Attrs[prefix+a.Key] = a.Value.Resolve().Any()
}

// WithAttrs bakes the current group prefix into the stored keys.
func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key != "request_id" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// Close flushes queued records. Safe to call multiple times.
func (h *MongoHandler) Close() {
	h.sink.once.Do(func() { close(h.sink.done) })
	h.sink.wg.Wait()
}

func (s *sink) drainLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
			}
			flush()
			return
		}
	}
}

// MultiHandler fans out to multiple slog.Handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler that sends each record to all hs.
func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
