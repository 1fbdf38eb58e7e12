// Package hash 提供本地特征哈希 Embedding 供应商。
// 不依赖任何外部模型服务，相同文本总是得到相同向量，适合开发与测试。
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/kart-io/sentinel-embed/pkg/llm"
)

// ProviderName 是本地哈希供应商的名称标识符。
const ProviderName = "hash"

// DefaultDimension 默认向量维度。
const DefaultDimension = 384

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewProvider)
}

// Config 哈希供应商配置。
type Config struct {
	// Dimension 向量维度。
	Dimension int `json:"dimension" mapstructure:"dimension"`
	// Bigrams 是否同时哈希相邻词对。
	Bigrams bool `json:"bigrams" mapstructure:"bigrams"`
}

// Provider 本地哈希供应商实现。
type Provider struct {
	config Config
}

// NewProvider 从配置 map 创建哈希供应商。
func NewProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	cfg := Config{
		Dimension: llm.ConfigInt(configMap, "dimension", DefaultDimension),
		Bigrams:   llm.ConfigBool(configMap, "bigrams", true),
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("hash: dimension must be positive, got %d", cfg.Dimension)
	}
	return New(cfg), nil
}

// New 使用结构化配置创建哈希供应商。
func New(cfg Config) *Provider {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	return &Provider{config: cfg}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// Dimension 返回向量维度。
func (p *Provider) Dimension() int {
	return p.config.Dimension
}

// Embed 为多个文本生成向量嵌入。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.vector(text)
	}
	return out, nil
}

// EmbedSingle 为单个文本生成向量嵌入。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return llm.EmbedOne(ctx, p, text)
}

// vector 把每个特征哈希到一个桶，并用哈希的另一位决定符号，最后做 L2 归一化。
func (p *Provider) vector(text string) []float32 {
	vec := make([]float32, p.config.Dimension)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		// 空文本也落到一个固定桶，保证向量非零
		p.add(vec, text)
	}
	for i, w := range words {
		p.add(vec, w)
		if p.config.Bigrams && i > 0 {
			p.add(vec, words[i-1]+" "+w)
		}
	}

	sum := sumSquares(vec)
	if sum == 0 {
		// 特征互相抵消时退回到整段文本的哈希
		p.add(vec, text)
		sum = sumSquares(vec)
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

func sumSquares(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return sum
}

func (p *Provider) add(vec []float32, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(len(vec)))
	if sum>>63 == 1 {
		vec[idx]--
		return
	}
	vec[idx]++
}

var _ llm.Dimensioned = (*Provider)(nil)
