package store

import (
	"encoding/json"
	"time"
)

// Fields 是记录字段的通用键值表示
// 取值访问器对 JSON 往返造成的类型宽化保持宽容：
// 整数可能以 float64 出现，时间以 RFC3339 字符串出现
type Fields map[string]any

// String 读取字符串字段
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

// Int 读取整数字段
func (f Fields) Int(key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Bool 读取布尔字段
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key].(bool)
	return v, ok
}

// Time 读取时间字段
func (f Fields) Time(key string) (time.Time, bool) {
	switch v := f[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// Reference 读取指向其他记录的引用字段（按记录 ID 存储）
func (f Fields) Reference(key string) (string, bool) {
	v, ok := f[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clone 返回字段的浅拷贝，避免调用方共享底层 map
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
