package client

import (
	"context"
	"sync"
	"time"
)

// fakeTransport 由测试手动驱动回调
type fakeTransport struct {
	address string
	events  TransportEvents

	mu     sync.Mutex
	opened bool
	closed bool
	sent   []string
}

func (f *fakeTransport) Open(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
}

func (f *fakeTransport) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrNotConnected
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) open()             { f.events.OnOpen() }
func (f *fakeTransport) fail(err error)    { f.events.OnError(err) }
func (f *fakeTransport) remoteClose()      { f.events.OnClose(1006, "abnormal closure") }
func (f *fakeTransport) frame(text string) { f.events.OnFrame(RawFrame{ReceivedAt: time.Now(), Data: []byte(text)}) }

type fakeFactory struct {
	mu         sync.Mutex
	transports []*fakeTransport
}

func (ff *fakeFactory) New(address string, events TransportEvents) Transport {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	t := &fakeTransport{address: address, events: events}
	ff.transports = append(ff.transports, t)
	return t
}

func (ff *fakeFactory) count() int {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return len(ff.transports)
}

func (ff *fakeFactory) last() *fakeTransport {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.transports[len(ff.transports)-1]
}

func (ff *fakeFactory) at(i int) *fakeTransport {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.transports[i]
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) listen(status Status, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *statusRecorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}
