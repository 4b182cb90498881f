package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/metric"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/protocol"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/utils"
)

var (
	// ErrInvalidAddress 地址为空或协议不是 ws/wss
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("invalid state")
)

// DefaultReconnectDelay 固定重连间隔，不做退避
const DefaultReconnectDelay = 5 * time.Second

// Sink 接收分类后的事件，实现不得阻塞在 I/O 上
type Sink interface {
	Dispatch(env model.Envelope)
}

// Supervisor 管理单条连接的生命周期：连接、断线重连、手动断开
type Supervisor struct {
	factory  TransportFactory
	sink     Sink
	delay    time.Duration
	onStatus StatusListener
	metrics  *metric.Metrics

	mu          sync.Mutex
	status      Status
	manualClose bool
	address     string
	roomID      string
	session     string
	transport   Transport
	// gen 每换一条连接加一，旧连接的回调据此忽略
	gen      uint64
	timer    *time.Timer
	timerSeq uint64

	frameMu sync.Mutex
}

// Option Supervisor 选项
type Option func(*Supervisor)

// WithReconnectDelay 设置重连间隔
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithStatusListener 订阅状态变化
func WithStatusListener(l StatusListener) Option {
	return func(s *Supervisor) { s.onStatus = l }
}

// WithMetrics 记录帧与重连指标
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

func NewSupervisor(factory TransportFactory, sink Sink, opts ...Option) *Supervisor {
	s := &Supervisor{
		factory: factory,
		sink:    sink,
		delay:   DefaultReconnectDelay,
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseAddress 校验地址并取出 roomId 参数
func ParseAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	lower := strings.ToLower(address)
	if !strings.HasPrefix(lower, "ws://") && !strings.HasPrefix(lower, "wss://") {
		return "", fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidAddress, address)
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, address)
	}
	return u.Query().Get("roomId"), nil
}

// Connect 只能在 Idle 或 ManuallyClosed 状态下调用
func (s *Supervisor) Connect(address string) error {
	roomID, err := ParseAddress(address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.status != StatusIdle && s.status != StatusManuallyClosed {
		status := s.status
		s.mu.Unlock()
		return fmt.Errorf("%w: connect while %s", ErrInvalidState, status)
	}
	s.address = strings.TrimSpace(address)
	s.roomID = roomID
	s.manualClose = false
	s.stopTimerLocked()
	t, notify := s.openLocked("连接中")
	s.mu.Unlock()

	notify()
	t.Open(context.Background())
	return nil
}

// Disconnect 总是成功，可重复调用
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	s.manualClose = true
	s.stopTimerLocked()
	s.gen++
	t := s.transport
	s.transport = nil
	notify := s.setStatusLocked(StatusManuallyClosed, "手动断开")
	s.mu.Unlock()

	if t != nil {
		if err := t.Close(); err != nil {
			s.logger().WithError(err).Debug("关闭连接出错")
		}
	}
	notify()
}

// SendRaw 向当前连接发送文本帧
func (s *Supervisor) SendRaw(text string) error {
	s.mu.Lock()
	t := s.transport
	connected := s.status == StatusConnected
	s.mu.Unlock()

	if !connected || t == nil {
		return ErrNotConnected
	}
	return t.Send(text)
}

// Status 当前状态
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// RoomID 地址中的 roomId
func (s *Supervisor) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// openLocked 创建新连接并进入 Connecting，调用方在解锁后执行 Open
func (s *Supervisor) openLocked(detail string) (Transport, func()) {
	s.gen++
	gen := s.gen
	s.session = uuid.NewString()
	s.transport = s.factory(s.address, TransportEvents{
		OnOpen:  func() { s.handleOpen(gen) },
		OnFrame: func(frame RawFrame) { s.handleFrame(gen, frame) },
		OnError: func(err error) { s.handleFailure(gen, err.Error()) },
		OnClose: func(code int, reason string) {
			s.handleFailure(gen, fmt.Sprintf("closed by remote: %d %s", code, reason))
		},
	})
	return s.transport, s.setStatusLocked(StatusConnecting, detail+" "+s.address)
}

func (s *Supervisor) handleOpen(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.status != StatusConnecting {
		s.mu.Unlock()
		return
	}
	notify := s.setStatusLocked(StatusConnected, "已连接 "+s.address)
	s.mu.Unlock()

	s.logger().Info("连接成功")
	notify()
}

// handleFailure 处理关闭或错误，同一连接只处理第一次
func (s *Supervisor) handleFailure(gen uint64, reason string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.gen++
	t := s.transport
	s.transport = nil

	var notify func()
	if s.manualClose {
		notify = s.setStatusLocked(StatusManuallyClosed, reason)
	} else {
		s.stopTimerLocked()
		seq := s.timerSeq
		s.timer = time.AfterFunc(s.delay, func() { s.reconnect(seq) })
		notify = s.setStatusLocked(StatusReconnecting,
			fmt.Sprintf("%s，%s 后重连", reason, s.delay))
		if s.metrics != nil {
			s.metrics.ReconnectAttempts.WithLabelValues(s.metricLabelLocked()).Inc()
		}
	}
	s.mu.Unlock()

	s.logger().Warnf("连接断开: %s", reason)
	if t != nil {
		_ = t.Close()
	}
	notify()
}

// reconnect 定时器回调，先检查手动断开标记再动作
func (s *Supervisor) reconnect(seq uint64) {
	s.mu.Lock()
	if s.manualClose || seq != s.timerSeq || s.status != StatusReconnecting {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	t, notify := s.openLocked("重连中")
	s.mu.Unlock()

	notify()
	t.Open(context.Background())
}

// handleFrame 解码、分类后交给 Sink，同步执行保证顺序
func (s *Supervisor) handleFrame(gen uint64, frame RawFrame) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	roomID := s.roomID
	label := s.metricLabelLocked()
	s.mu.Unlock()

	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger().Errorf("处理消息异常: %v", r)
		}
	}()

	if s.metrics != nil {
		s.metrics.FramesReceived.WithLabelValues(label).Inc()
	}
	payload, ok := protocol.DecodeFrame(frame.Text())
	if !ok {
		if s.metrics != nil {
			s.metrics.FramesDropped.WithLabelValues(label).Inc()
		}
		return
	}
	ev := protocol.Classify(payload)
	if s.metrics != nil {
		s.metrics.EventsClassified.WithLabelValues(label, string(ev.Kind())).Inc()
	}

	receivedAt := frame.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	if s.sink != nil {
		s.sink.Dispatch(model.Envelope{RoomID: roomID, ReceivedAt: receivedAt, Event: ev})
	}
}

// stopTimerLocked 取消待执行的重连，重复调用安全
func (s *Supervisor) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerSeq++
}

// setStatusLocked 修改状态，返回在解锁后执行的通知函数
func (s *Supervisor) setStatusLocked(status Status, detail string) func() {
	s.status = status
	if s.metrics != nil {
		s.metrics.ConnectionStatus.WithLabelValues(s.metricLabelLocked()).Set(float64(status))
	}
	listener := s.onStatus
	return func() {
		if listener != nil {
			listener(status, detail)
		}
	}
}

func (s *Supervisor) metricLabelLocked() string {
	if s.roomID != "" {
		return s.roomID
	}
	return s.address
}

func (s *Supervisor) logger() *logrus.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.Logger.WithFields(logrus.Fields{
		"room":    s.metricLabelLocked(),
		"session": s.session,
	})
}
