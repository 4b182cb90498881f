package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/store"
)

type write struct {
	op         string
	collection string
	id         string
	fields     store.Fields
}

// recordingGateway 记录每一次写入
type recordingGateway struct {
	*store.Memory
	mu     sync.Mutex
	writes []write
	fail   error
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{Memory: store.NewMemory()}
}

func (g *recordingGateway) Set(ctx context.Context, collection, id string, fields store.Fields, merge bool) error {
	if err := g.record("set", collection, id, fields); err != nil {
		return err
	}
	return g.Memory.Set(ctx, collection, id, fields, merge)
}

func (g *recordingGateway) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := g.record("update", collection, id, fields); err != nil {
		return err
	}
	return g.Memory.Update(ctx, collection, id, fields)
}

func (g *recordingGateway) record(op, collection, id string, fields store.Fields) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.writes = append(g.writes, write{op: op, collection: collection, id: id, fields: fields.Clone()})
	return nil
}

func (g *recordingGateway) Writes() []write {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]write(nil), g.writes...)
}

var errBoom = errors.New("boom")

// stepClock 每次调用前进一秒
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func int64p(v int64) *int64 { return &v }

func boolp(v bool) *bool { return &v }
