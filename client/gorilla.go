package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// gorillaTransport 基于 gorilla/websocket 的连接
type gorillaTransport struct {
	transportBase

	writeMu sync.Mutex
	connMu  sync.Mutex
	conn    *websocket.Conn
}

// NewGorillaTransport 默认实现
func NewGorillaTransport(address string, events TransportEvents) Transport {
	return &gorillaTransport{transportBase: transportBase{address: address, events: events}}
}

func (t *gorillaTransport) Open(ctx context.Context) {
	ctx, ok := t.start(ctx)
	if !ok {
		return
	}
	go t.run(ctx)
}

func (t *gorillaTransport) run(ctx context.Context) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.address, defaultHeader())
	if err != nil {
		t.emitError(fmt.Errorf("dial fail: %w", err))
		return
	}
	conn.SetReadLimit(maxFrameSize)

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()
	if t.isClosed() {
		conn.Close()
		return
	}

	t.emitOpen()
	t.readMessages(conn)
}

// readMessages 唯一的读循环，保证帧按到达顺序回调
func (t *gorillaTransport) readMessages(conn *websocket.Conn) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				t.emitClose(closeErr.Code, closeErr.Text)
			} else {
				t.emitError(fmt.Errorf("read fail: %w", err))
			}
			return
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			t.emitFrame(RawFrame{
				ReceivedAt: time.Now(),
				Data:       data,
				Binary:     messageType == websocket.BinaryMessage,
			})
		}
	}
}

func (t *gorillaTransport) Send(text string) error {
	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil || t.isClosed() {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *gorillaTransport) Close() error {
	if !t.shutdown() {
		return nil
	}

	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		return nil
	}

	t.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client close")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	t.writeMu.Unlock()
	return conn.Close()
}
