package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// nhooyrTransport 基于 nhooyr.io/websocket 的连接
type nhooyrTransport struct {
	transportBase

	connMu sync.Mutex
	conn   *websocket.Conn
	ctx    context.Context
}

func NewNhooyrTransport(address string, events TransportEvents) Transport {
	return &nhooyrTransport{transportBase: transportBase{address: address, events: events}}
}

func (t *nhooyrTransport) Open(ctx context.Context) {
	ctx, ok := t.start(ctx)
	if !ok {
		return
	}
	go t.run(ctx)
}

func (t *nhooyrTransport) run(ctx context.Context) {
	conn, _, err := websocket.Dial(ctx, t.address, &websocket.DialOptions{
		HTTPHeader: defaultHeader(),
	})
	if err != nil {
		t.emitError(fmt.Errorf("dial fail: %w", err))
		return
	}
	conn.SetReadLimit(maxFrameSize)

	t.connMu.Lock()
	t.conn = conn
	t.ctx = ctx
	t.connMu.Unlock()
	if t.isClosed() {
		conn.Close(websocket.StatusNormalClosure, "client close")
		return
	}

	t.emitOpen()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) {
				t.emitClose(int(closeErr.Code), closeErr.Reason)
			} else {
				t.emitError(fmt.Errorf("read fail: %w", err))
			}
			return
		}
		t.emitFrame(RawFrame{
			ReceivedAt: time.Now(),
			Data:       data,
			Binary:     typ == websocket.MessageBinary,
		})
	}
}

func (t *nhooyrTransport) Send(text string) error {
	t.connMu.Lock()
	conn, ctx := t.conn, t.ctx
	t.connMu.Unlock()
	if conn == nil || t.isClosed() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(text))
}

func (t *nhooyrTransport) Close() error {
	if !t.shutdown() {
		return nil
	}

	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client close")
}
