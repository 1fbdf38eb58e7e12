package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	milvusopts "github.com/kart-io/sentinel-embed/pkg/options/milvus"
	qdrantopts "github.com/kart-io/sentinel-embed/pkg/options/qdrant"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
)

// Config 创建向量存储所需的配置。
type Config struct {
	Store  *storeopts.Options
	Qdrant *qdrantopts.Options
	Milvus *milvusopts.Options
}

// New 按 store.backend 创建向量存储。
// store.enable 为 false 时返回 DisabledStore；后端连接失败时记录警告并降级为 DisabledStore。
// mgr 非空时，后端客户端会注册到 mgr 以参与健康检查与统一关闭。
func New(ctx context.Context, cfg *Config, mgr *storage.Manager) VectorStore {
	if cfg == nil || cfg.Store == nil || !cfg.Store.Enable {
		logger.Infow("Vector store disabled")
		return DisabledStore{}
	}

	vs, client, err := open(ctx, cfg)
	if err != nil {
		logger.Warnw("Vector store unavailable, continuing without persistence",
			"backend", cfg.Store.Backend,
			"error", err.Error(),
		)
		return DisabledStore{}
	}

	if mgr != nil && client != nil {
		if err := mgr.Register(vs.Name(), client); err != nil {
			logger.Warnw("Failed to register vector store client", "backend", vs.Name(), "error", err.Error())
		}
	}

	logger.Infow("Vector store ready", "backend", vs.Name(), "collection", cfg.Store.Collection)
	return vs
}

// backendOpener 打开一个远程后端，返回存储与需要托管的客户端。
type backendOpener func(ctx context.Context, cfg *Config, distance Distance) (VectorStore, storage.Client, error)

// 远程后端由各自文件在 init 中注册。qdrant 与 milvus 的 Go 客户端注册了
// 同名的 common.proto，二者不能链接进同一个二进制，默认构建包含 qdrant，
// 使用 -tags milvus 构建时替换为 milvus。
var remoteBackends = map[string]backendOpener{}

func registerBackend(name string, open backendOpener) {
	if _, dup := remoteBackends[name]; dup {
		panic(fmt.Sprintf("store: backend %q registered twice", name))
	}
	remoteBackends[name] = open
}

// Backends 返回当前二进制可用的后端名称，已排序。
func Backends() []string {
	names := []string{storeopts.BackendSQLite, storeopts.BackendMemory}
	for name := range remoteBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func open(ctx context.Context, cfg *Config) (VectorStore, storage.Client, error) {
	distance, err := ParseDistance(cfg.Store.Distance)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store.Backend {
	case storeopts.BackendSQLite:
		s, err := NewSQLiteStore(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Client(), nil

	case storeopts.BackendMemory:
		return NewMemoryStore(), nil, nil
	}

	if openRemote, ok := remoteBackends[cfg.Store.Backend]; ok {
		return openRemote(ctx, cfg, distance)
	}
	switch cfg.Store.Backend {
	case storeopts.BackendQdrant, storeopts.BackendMilvus:
		return nil, nil, fmt.Errorf("vector store backend %q is not compiled into this binary (available: %v)",
			cfg.Store.Backend, Backends())
	}
	return nil, nil, fmt.Errorf("unknown vector store backend %q", cfg.Store.Backend)
}
