package client

import (
	"context"
	"sync"
)

// transportBase 两种实现共用的回调与关闭状态
type transportBase struct {
	address string
	events  TransportEvents

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// start 关闭后返回 false
func (b *transportBase) start(ctx context.Context) (context.Context, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false
	}
	ctx, b.cancel = context.WithCancel(ctx)
	return ctx, true
}

// shutdown 标记关闭，返回是否为第一次
func (b *transportBase) shutdown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.closed = true
	if b.cancel != nil {
		b.cancel()
	}
	return true
}

func (b *transportBase) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *transportBase) emitOpen() {
	if !b.isClosed() && b.events.OnOpen != nil {
		b.events.OnOpen()
	}
}

func (b *transportBase) emitFrame(frame RawFrame) {
	if !b.isClosed() && b.events.OnFrame != nil {
		b.events.OnFrame(frame)
	}
}

func (b *transportBase) emitError(err error) {
	if !b.isClosed() && b.events.OnError != nil {
		b.events.OnError(err)
	}
}

func (b *transportBase) emitClose(code int, reason string) {
	if !b.isClosed() && b.events.OnClose != nil {
		b.events.OnClose(code, reason)
	}
}
