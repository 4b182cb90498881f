package protocol

import (
	"strings"

	"github.com/tidwall/gjson"
)

// PayloadKind 解码结果类型
type PayloadKind int

const (
	PayloadStructured PayloadKind = iota + 1
	PayloadPlainText
)

// Payload 解码后的帧：结构化对象或纯文本
type Payload struct {
	Kind PayloadKind
	// Object 仅结构化时有效，保留原始键顺序
	Object gjson.Result
	// Text 纯文本时为去空白后的内容
	Text string
	// Raw 原始帧文本，用于诊断
	Raw string
}

// IsStructured 是否为结构化对象
func (p Payload) IsStructured() bool {
	return p.Kind == PayloadStructured
}

// DecodeFrame 解码一帧文本，空帧返回 false，其余情况永不失败
func DecodeFrame(text string) (Payload, bool) {
	// 先取第一个 { 到最后一个 } 之间的内容，兼容带前后缀的帧
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		if obj, ok := parseObject(text[start : end+1]); ok {
			return Payload{Kind: PayloadStructured, Object: obj, Raw: text}, true
		}
		if obj, ok := parseObject(text); ok {
			return Payload{Kind: PayloadStructured, Object: obj, Raw: text}, true
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Payload{}, false
	}
	return Payload{Kind: PayloadPlainText, Text: trimmed, Raw: text}, true
}

func parseObject(s string) (gjson.Result, bool) {
	if !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	return obj, true
}
