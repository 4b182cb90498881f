// Package store 定义文档存储网关，合并器只依赖这里的接口。
package store

import (
	"context"
	"errors"
)

// ErrNotFound Update 的目标记录不存在
var ErrNotFound = errors.New("record not found")

// Fields 一条记录的字段集合
type Fields map[string]any

// Clone 浅拷贝，字段值都是标量
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Gateway 按 集合/id 读写文档
type Gateway interface {
	Get(ctx context.Context, collection, id string) (Fields, bool, error)
	// Set 写入记录，merge 为 true 时与已有字段合并，否则整体替换
	Set(ctx context.Context, collection, id string, fields Fields, merge bool) error
	// Update 部分更新，记录不存在时返回 ErrNotFound
	Update(ctx context.Context, collection, id string, fields Fields) error
	// BatchDelete 仅供外部管理工具使用
	BatchDelete(ctx context.Context, collection string, ids []string) error
}
