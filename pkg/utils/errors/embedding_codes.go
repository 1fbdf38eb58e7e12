package errors

import "google.golang.org/grpc/codes"

// Embedding 服务代码: 30
// 错误码格式: AABBCCC
// - AA: 30 (Embedding 服务)
// - BB: 类别代码
// - CCC: 序号

var (
	// 请求参数错误 (类别 01)
	ErrInvalidInput = Register(New(MakeCode(ServiceEmbedding, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid input", "输入无效"))

	// 模型与编码错误 (类别 07)
	ErrModelUnavailable = Register(New(MakeCode(ServiceEmbedding, CategoryInternal, 1), 500, codes.Unavailable, "Model unavailable", "模型不可用"))
	ErrChunkingFailed   = Register(New(MakeCode(ServiceEmbedding, CategoryInternal, 2), 500, codes.Internal, "Chunking failed", "文本分块失败"))
	ErrEncodingFailed   = Register(New(MakeCode(ServiceEmbedding, CategoryInternal, 3), 500, codes.Internal, "Encoding failed", "向量编码失败"))

	// 向量存储错误 (类别 08)
	ErrStoreWriteFailed  = Register(New(MakeCode(ServiceEmbedding, CategoryDatabase, 1), 500, codes.Internal, "Failed to save embeddings", "向量写入失败"))
	ErrStoreSearchFailed = Register(New(MakeCode(ServiceEmbedding, CategoryDatabase, 2), 500, codes.Internal, "Search failed", "向量检索失败"))
	ErrCollectionFailed  = Register(New(MakeCode(ServiceEmbedding, CategoryDatabase, 3), 500, codes.Internal, "Failed to ensure collection", "集合创建失败"))
)
