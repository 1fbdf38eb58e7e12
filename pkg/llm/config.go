package llm

import (
	"strconv"
	"time"
)

// 供应商配置来自 YAML/环境变量经 viper 解码后的 map，数值可能是 int、
// float64 或字符串，以下辅助函数统一做宽松转换。

// ConfigString 读取字符串配置项。
func ConfigString(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

// ConfigInt 读取整数配置项。
func ConfigInt(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// ConfigBool 读取布尔配置项，接受 "true"/"false" 字符串。
func ConfigBool(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// ConfigDuration 读取时长配置项，接受 time.Duration、"30s" 形式的字符串或秒数。
func ConfigDuration(m map[string]any, key string, def time.Duration) time.Duration {
	switch v := m[key].(type) {
	case time.Duration:
		if v > 0 {
			return v
		}
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case float64:
		if v > 0 {
			return time.Duration(v * float64(time.Second))
		}
	}
	return def
}
