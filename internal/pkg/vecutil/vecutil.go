// Package vecutil 提供向量运算与编码工具函数。
package vecutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch 表示两个向量维度不一致。
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Dot 计算两个等长向量的点积。
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Magnitude 计算向量的 L2 范数。
func Magnitude(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]；任一向量为零向量时返回 0。
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	ma, mb := Magnitude(a), Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0, nil
	}
	return Dot(a, b) / (ma * mb), nil
}

// EuclideanDistance 计算两个向量的欧氏距离。
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return math.Sqrt(s), nil
}

// L2Normalize 返回归一化后的向量副本；零向量原样返回。
func L2Normalize(v []float32) []float32 {
	m := Magnitude(v)
	if m == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / m)
	}
	return out
}

// Scored 表示候选项下标及其得分。
type Scored struct {
	Index int
	Score float64
}

// TopK 按得分降序排序并截取前 k 项；k <= 0 时返回全部。
// 得分相同的候选项保持原有顺序。
func TopK(items []Scored, k int) []Scored {
	sort.SliceStable(items, func(a, b int) bool { return items[a].Score > items[b].Score })
	if k > 0 && k < len(items) {
		items = items[:k]
	}
	return items
}

// Encode 将向量编码为小端 float32 字节序列。
func Encode(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(x))
	}
	return out
}

// Decode 解码 Encode 生成的字节序列。
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding: %d bytes", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out, nil
}
