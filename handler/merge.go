package handler

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/metric"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/store"
)

// ErrMissingID 没有稳定 id 的观察无法合并
var ErrMissingID = errors.New("missing stable id")

// 写入方式，用作指标标签
const (
	modeCreate = "create"
	modeUpdate = "update"
	modeTouch  = "touch"
)

// MergeResult 一次合并实际写入的内容
type MergeResult struct {
	Created bool
	// Fields 写入的字段名（已排序），为空表示没有写入
	Fields []string
	// Promoted 礼物从占位数据转为真实数据
	Promoted bool
}

// Wrote 是否发生了写入
func (r MergeResult) Wrote() bool {
	return len(r.Fields) > 0
}

type mergerConfig struct {
	now     func() time.Time
	metrics *metric.Metrics
}

// Option 合并器选项
type Option func(*mergerConfig)

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(c *mergerConfig) { c.now = now }
}

// WithMetrics 记录写入次数
func WithMetrics(m *metric.Metrics) Option {
	return func(c *mergerConfig) { c.metrics = m }
}

func newMergerConfig(opts []Option) mergerConfig {
	cfg := mergerConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c mergerConfig) countWrite(collection, mode string) {
	if c.metrics != nil {
		c.metrics.MergeWrites.WithLabelValues(collection, mode).Inc()
	}
}

// laterMillis 保证时间戳不回退
func laterMillis(now time.Time, stored store.Fields, key string) int64 {
	ms := model.Millis(now)
	if prev, ok := model.AsNumber(stored[key]); ok && int64(prev) > ms {
		return int64(prev)
	}
	return ms
}

func fieldNames(fields store.Fields) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// keyedMutex 同一 id 的读后写串行执行
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock 加锁并返回解锁函数
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
