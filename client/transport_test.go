package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/config"
)

// echoServer 推送三帧，回显收到的文本，收到 "bye" 后正常关闭
func echoServer(t *testing.T) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, text := range []string{"um", "dois", "tres"} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(data) == "bye" {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?roomId=7"
}

type transportProbe struct {
	mu     sync.Mutex
	opened chan struct{}
	frames []string
	closed chan int
	errs   chan error
}

func newTransportProbe() *transportProbe {
	return &transportProbe{
		opened: make(chan struct{}, 1),
		closed: make(chan int, 1),
		errs:   make(chan error, 1),
	}
}

func (p *transportProbe) events() TransportEvents {
	return TransportEvents{
		OnOpen: func() { p.opened <- struct{}{} },
		OnFrame: func(frame RawFrame) {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.frames = append(p.frames, frame.Text())
		},
		OnError: func(err error) { p.errs <- err },
		OnClose: func(code int, _ string) { p.closed <- code },
	}
}

func (p *transportProbe) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.frames...)
}

func TestTransports(t *testing.T) {
	for _, name := range []string{config.TransportGorilla, config.TransportNhooyr} {
		t.Run(name, func(t *testing.T) {
			factory, err := TransportFactoryFor(name)
			require.NoError(t, err)

			probe := newTransportProbe()
			tr := factory(echoServer(t), probe.events())
			tr.Open(context.Background())

			select {
			case <-probe.opened:
			case err := <-probe.errs:
				t.Fatalf("open failed: %v", err)
			case <-time.After(5 * time.Second):
				t.Fatal("timeout waiting for open")
			}

			require.NoError(t, tr.Send("eco"))
			require.Eventually(t, func() bool { return len(probe.received()) == 4 }, 5*time.Second, 10*time.Millisecond)
			assert.Equal(t, []string{"um", "dois", "tres", "eco"}, probe.received())

			require.NoError(t, tr.Send("bye"))
			select {
			case code := <-probe.closed:
				assert.Equal(t, int(websocket.CloseGoingAway), code)
			case err := <-probe.errs:
				t.Fatalf("expected close, got error %v", err)
			case <-time.After(5 * time.Second):
				t.Fatal("timeout waiting for close")
			}
			_ = tr.Close()
		})
	}
}

func TestTransportDialFailureRaisesError(t *testing.T) {
	for _, name := range []string{config.TransportGorilla, config.TransportNhooyr} {
		t.Run(name, func(t *testing.T) {
			factory, err := TransportFactoryFor(name)
			require.NoError(t, err)

			probe := newTransportProbe()
			tr := factory("ws://127.0.0.1:1/ws", probe.events())
			tr.Open(context.Background())

			select {
			case err := <-probe.errs:
				assert.Error(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("timeout waiting for dial error")
			}
			assert.ErrorIs(t, tr.Send("x"), ErrNotConnected)
			assert.NoError(t, tr.Close())
		})
	}
}

func TestTransportClosedBeforeOpenNeverCallsBack(t *testing.T) {
	probe := newTransportProbe()
	tr := NewGorillaTransport(echoServer(t), probe.events())
	require.NoError(t, tr.Close())
	tr.Open(context.Background())

	select {
	case <-probe.opened:
		t.Fatal("closed transport must not open")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTransportFactoryForUnknown(t *testing.T) {
	_, err := TransportFactoryFor("carrier-pigeon")
	assert.Error(t, err)
}
