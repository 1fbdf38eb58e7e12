// Package chunker 将文本按词数切分为重叠的文本块。
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// 默认分块参数。
const (
	DefaultChunkSize = 256
	DefaultOverlap   = 50
)

// ErrInvalidArgument 表示分块参数无效（chunk_size <= 0、overlap < 0 或 overlap >= chunk_size）。
var ErrInvalidArgument = errors.New("invalid chunk options")

// Options 分块参数。
type Options struct {
	// Size 每个块的词数上限，必须大于 0。
	Size int
	// Overlap 相邻块共享的词数，满足 0 <= Overlap < Size。
	Overlap int
	// Separator 显式分词分隔符；为空时按任意空白切分并用单个空格拼接。
	Separator string
}

// DefaultOptions 返回默认分块参数（256 词，重叠 50 词）。
func DefaultOptions() Options {
	return Options{Size: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Validate 校验分块参数。
func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: chunk_size must be greater than 0, got %d", ErrInvalidArgument, o.Size)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidArgument, o.Overlap)
	}
	if o.Overlap >= o.Size {
		return fmt.Errorf("%w: overlap (%d) must be less than chunk_size (%d)", ErrInvalidArgument, o.Overlap, o.Size)
	}
	return nil
}

// Stride 返回相邻块起点之间的词数。
func (o Options) Stride() int {
	return o.Size - o.Overlap
}

// Words 按分隔符切分文本，丢弃空词。
func (o Options) Words(text string) []string {
	if o.Separator == "" {
		return strings.Fields(text)
	}
	parts := strings.Split(text, o.Separator)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

func (o Options) joiner() string {
	if o.Separator == "" {
		return " "
	}
	return o.Separator
}

// Chunk 将文本切分为重叠的块。
//
// 窗口起点为 0, stride, 2*stride, ...（stride = Size - Overlap），直到起点
// 超出词数；每个窗口取 [i, i+Size) 范围内的词并以分隔符拼接，最后一块可以
// 短于 Size。非空输入恰好产生 ceil(词数/stride) 个块，空输入返回空切片。
func Chunk(text string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	words := opts.Words(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	stride := opts.Stride()
	sep := opts.joiner()
	chunks := make([]string, 0, Count(len(words), opts))
	for i := 0; i < len(words); i += stride {
		end := i + opts.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], sep))
	}
	return chunks, nil
}

// Count 返回 wordCount 个词在给定参数下产生的块数，参数无效时返回 0。
func Count(wordCount int, opts Options) int {
	if wordCount <= 0 || opts.Validate() != nil {
		return 0
	}
	stride := opts.Stride()
	return (wordCount + stride - 1) / stride
}
