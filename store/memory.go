package store

import (
	"context"
	"sync"
)

// Memory 进程内存储，用于测试和本地调试
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]Fields
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]Fields)}
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Fields, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, fields Fields, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(collection)
	doc, ok := coll[id]
	if !ok || !merge {
		coll[id] = fields.Clone()
		return nil
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *Memory) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.docs[collection]
	for _, id := range ids {
		delete(coll, id)
	}
	return nil
}

// Len 集合中的记录数
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func (m *Memory) collection(name string) map[string]Fields {
	coll, ok := m.docs[name]
	if !ok {
		coll = make(map[string]Fields)
		m.docs[name] = coll
	}
	return coll
}
