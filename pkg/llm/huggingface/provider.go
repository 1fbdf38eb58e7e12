// Package huggingface 提供 HuggingFace Inference API 的 Embedding 供应商实现。
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/sentinel-embed/pkg/llm"
	"github.com/kart-io/sentinel-embed/pkg/utils/httpclient"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

// ProviderName 是 HuggingFace 供应商的名称标识符
const ProviderName = "huggingface"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewProvider)
}

// Config HuggingFace 供应商配置。
type Config struct {
	// BaseURL API 基础地址。
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey HuggingFace API Token。
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// EmbedModel 用于生成嵌入的模型 ID。
	EmbedModel string `json:"embed_model" mapstructure:"embed_model"`

	// Dimension 模型输出维度，0 表示未知。
	Dimension int `json:"dimension" mapstructure:"dimension"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// WaitForModel 如果模型正在加载，是否等待。
	WaitForModel bool `json:"wait_for_model" mapstructure:"wait_for_model"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api-inference.huggingface.co",
		EmbedModel:   "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:      120 * time.Second,
		WaitForModel: true,
	}
}

// Provider HuggingFace 供应商实现。
type Provider struct {
	config *Config
	client *httpclient.Client
}

// NewProvider 从配置 map 创建 HuggingFace 供应商。
func NewProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = llm.ConfigString(configMap, "base_url", cfg.BaseURL)
	cfg.APIKey = llm.ConfigString(configMap, "api_key", cfg.APIKey)
	cfg.EmbedModel = llm.ConfigString(configMap, "embed_model", cfg.EmbedModel)
	cfg.Dimension = llm.ConfigInt(configMap, "dimension", cfg.Dimension)
	cfg.Timeout = llm.ConfigDuration(configMap, "timeout", cfg.Timeout)
	cfg.WaitForModel = llm.ConfigBool(configMap, "wait_for_model", cfg.WaitForModel)

	if cfg.APIKey == "" {
		return nil, errors.New("huggingface: api_key 是必需的")
	}

	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig 使用结构化配置创建 HuggingFace 供应商。
func NewProviderWithConfig(cfg *Config) *Provider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// Dimension 返回配置的维度。
func (p *Provider) Dimension() int {
	return p.config.Dimension
}

// embeddingRequest HuggingFace Feature Extraction API 请求体。
type embeddingRequest struct {
	Inputs  []string          `json:"inputs"`
	Options *embeddingOptions `json:"options,omitempty"`
}

type embeddingOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
}

// Embed 为多个文本生成向量嵌入。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{Inputs: texts}
	if p.config.WaitForModel {
		reqBody.Options = &embeddingOptions{WaitForModel: true}
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", p.config.BaseURL, p.config.EmbedModel)
	headers := map[string]string{"Authorization": "Bearer " + p.config.APIKey}

	var raw json.RawMessage
	if err := p.client.PostJSON(ctx, url, headers, reqBody, &raw); err != nil {
		return nil, fmt.Errorf("huggingface embed: %w", err)
	}

	embeddings, err := decodeEmbeddings(raw)
	if err != nil {
		return nil, fmt.Errorf("huggingface embed: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("huggingface embed: got %d embeddings for %d inputs", len(embeddings), len(texts))
	}
	return embeddings, nil
}

// EmbedSingle 为单个文本生成向量嵌入。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return llm.EmbedOne(ctx, p, text)
}

// decodeEmbeddings 解析 [][]float32；部分模型返回 token 级 [][][]float32，
// 此时按 token 取平均得到句向量。
func decodeEmbeddings(raw []byte) ([][]float32, error) {
	var embeddings [][]float32
	err := json.Unmarshal(raw, &embeddings)
	if err == nil {
		return embeddings, nil
	}

	var tokens [][][]float32
	if err2 := json.Unmarshal(raw, &tokens); err2 != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return meanPool(tokens), nil
}

func meanPool(tokens [][][]float32) [][]float32 {
	out := make([][]float32, len(tokens))
	for i, seq := range tokens {
		if len(seq) == 0 {
			continue
		}
		vec := make([]float32, len(seq[0]))
		for _, tok := range seq {
			for j := range vec {
				if j < len(tok) {
					vec[j] += tok[j]
				}
			}
		}
		n := float32(len(seq))
		for j := range vec {
			vec[j] /= n
		}
		out[i] = vec
	}
	return out
}
