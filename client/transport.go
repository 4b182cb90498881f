package client

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/config"
)

// ErrNotConnected 连接未建立或已断开
var ErrNotConnected = errors.New("connection not established")

const (
	writeTimeout = 10 * time.Second
	maxFrameSize = 1 << 20
)

// RawFrame 收到的一帧原始数据
type RawFrame struct {
	ReceivedAt time.Time
	Data       []byte
	Binary     bool
}

// Text 二进制帧先尝试解压，失败则按 UTF-8 读取
func (f RawFrame) Text() string {
	if !f.Binary {
		return string(f.Data)
	}
	if out, err := decompress(f.Data); err == nil {
		return string(out)
	}
	return string(f.Data)
}

// TransportEvents 连接生命周期回调，同一连接的帧只从一个 goroutine 发出
type TransportEvents struct {
	OnOpen  func()
	OnFrame func(frame RawFrame)
	OnError func(err error)
	OnClose func(code int, reason string)
}

// Transport 一条物理连接
type Transport interface {
	// Open 异步建立连接，结果通过回调通知
	Open(ctx context.Context)
	Send(text string) error
	// Close 关闭后不再触发任何回调
	Close() error
}

// TransportFactory 为每次连接尝试创建新的 Transport
type TransportFactory func(address string, events TransportEvents) Transport

// TransportFactoryFor 按配置名选择实现
func TransportFactoryFor(name string) (TransportFactory, error) {
	switch name {
	case config.TransportGorilla, "":
		return NewGorillaTransport, nil
	case config.TransportNhooyr:
		return NewNhooyrTransport, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", name)
	}
}

func defaultHeader() http.Header {
	header := make(http.Header)
	header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	return header
}

// decompress 支持 gzip 与 zlib
func decompress(data []byte) ([]byte, error) {
	var (
		reader io.ReadCloser
		err    error
	)
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		reader, err = gzip.NewReader(bytes.NewReader(data))
	case len(data) >= 2 && data[0]&0x0f == 8 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		reader, err = zlib.NewReader(bytes.NewReader(data))
	default:
		return nil, errors.New("not compressed")
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(io.LimitReader(reader, maxFrameSize))
}
