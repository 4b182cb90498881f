package handler

import "sync"

// keyedQueue 同一 key 的任务按提交顺序串行执行，不同 key 之间并发
type keyedQueue struct {
	mu     sync.Mutex
	queues map[string][]func()
}

func newKeyedQueue() *keyedQueue {
	return &keyedQueue{queues: make(map[string][]func())}
}

// Submit 立即返回，任务在后台执行
func (q *keyedQueue) Submit(key string, task func()) {
	q.mu.Lock()
	pending, running := q.queues[key]
	q.queues[key] = append(pending, task)
	q.mu.Unlock()

	if !running {
		go q.drain(key)
	}
}

func (q *keyedQueue) drain(key string) {
	for {
		q.mu.Lock()
		pending := q.queues[key]
		if len(pending) == 0 {
			delete(q.queues, key)
			q.mu.Unlock()
			return
		}
		task := pending[0]
		q.queues[key] = pending[1:]
		q.mu.Unlock()

		task()
	}
}
