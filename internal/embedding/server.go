// Package embeddingsvc provides the embedding service server implementation.
package embeddingsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/sentinel-embed/internal/embedding/biz"
	"github.com/kart-io/sentinel-embed/internal/embedding/handler"
	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/embedding/router"
	"github.com/kart-io/sentinel-embed/internal/embedding/store"
	redisclient "github.com/kart-io/sentinel-embed/pkg/component/redis"
	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	"github.com/kart-io/sentinel-embed/pkg/infra/app"
	"github.com/kart-io/sentinel-embed/pkg/infra/config"
	"github.com/kart-io/sentinel-embed/pkg/infra/middleware"
	"github.com/kart-io/sentinel-embed/pkg/infra/pool"
	"github.com/kart-io/sentinel-embed/pkg/infra/server"
	httpserver "github.com/kart-io/sentinel-embed/pkg/infra/server/http"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/sentinel-embed/pkg/llm/hash"
	_ "github.com/kart-io/sentinel-embed/pkg/llm/huggingface"
	_ "github.com/kart-io/sentinel-embed/pkg/llm/ollama"
	_ "github.com/kart-io/sentinel-embed/pkg/llm/openai"
	embeddingopts "github.com/kart-io/sentinel-embed/pkg/options/embedding"
	logopts "github.com/kart-io/sentinel-embed/pkg/options/logger"
	middlewareopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	milvusopts "github.com/kart-io/sentinel-embed/pkg/options/milvus"
	pipelineopts "github.com/kart-io/sentinel-embed/pkg/options/pipeline"
	qdrantopts "github.com/kart-io/sentinel-embed/pkg/options/qdrant"
	redisopts "github.com/kart-io/sentinel-embed/pkg/options/redis"
	httpopts "github.com/kart-io/sentinel-embed/pkg/options/server/http"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
)

// Name is the name of the application.
const Name = "embedding"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions       *httpopts.Options
	LogOptions        *logopts.Options
	MiddlewareOptions *middlewareopts.Options
	EmbeddingOptions  *embeddingopts.Options
	PipelineOptions   *pipelineopts.Options
	StoreOptions      *storeopts.Options
	QdrantOptions     *qdrantopts.Options
	MilvusOptions     *milvusopts.Options
	RedisOptions      *redisopts.Options
	ShutdownTimeout   time.Duration

	// Viper holds the loaded configuration. When it has read a config file
	// the token and log level are reloaded on change.
	Viper *viper.Viper
}

// Server represents the embedding server.
type Server struct {
	srv     *server.Manager
	storage *storage.Manager
	workers *pool.Pool
	watcher *config.Watcher
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	if err := cfg.LogOptions.Init(Name, app.GetVersion()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting embedding service...")

	// 2. 初始化协程池与存储管理器
	workers, err := pool.NewPool("embedding", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	storageMgr := storage.NewManager(workers)

	// 3. 初始化 Redis（仅在启用 embedding 缓存时）
	var cacheOpts []biz.ModelCacheOption
	if cfg.EmbeddingOptions.Cache != nil && cfg.EmbeddingOptions.Cache.Enable {
		rdb, err := redisclient.New(ctx, cfg.RedisOptions)
		if err != nil {
			logger.Warnw("failed to connect to redis, embedding cache will be disabled", "error", err.Error())
		} else {
			_ = storageMgr.Register(rdb.Name(), rdb)
			cacheOpts = append(cacheOpts, biz.WithRedis(rdb.Client(), cfg.EmbeddingOptions.Cache))
			logger.Infow("Redis embedding cache initialized",
				"addr", cfg.RedisOptions.Addr(),
				"ttl", cfg.EmbeddingOptions.Cache.TTL,
			)
		}
	}

	// 4. 初始化向量存储
	vs := store.New(ctx, &store.Config{
		Store:  cfg.StoreOptions,
		Qdrant: cfg.QdrantOptions,
		Milvus: cfg.MilvusOptions,
	}, storageMgr)
	for name, st := range storageMgr.HealthCheckAll(ctx) {
		logger.Infow("Storage health", "client", name, "healthy", st.Healthy, "latency", st.Latency)
	}

	// 5. 初始化模型缓存
	if from := cfg.EmbeddingOptions.FallbackFrom; from != "" {
		logger.Warnw("Default model has no api_key, falling back to the local model",
			"configured", from,
			"default_model", cfg.EmbeddingOptions.DefaultModel,
			"hint", "set "+embeddingopts.HuggingFaceKeyEnv,
		)
	}
	models := biz.NewModelCache(cfg.EmbeddingOptions, cacheOpts...)
	if cfg.EmbeddingOptions.Preload {
		if err := models.Preload(ctx, workers); err != nil {
			logger.Warnw("Some models failed to preload, they will be retried on first use", "error", err.Error())
		}
	}

	// 6. 初始化 Biz 层
	distance, err := store.ParseDistance(cfg.StoreOptions.Distance)
	if err != nil {
		return nil, err
	}
	svc := biz.NewService(models, vs, biz.Config{
		Collection: cfg.StoreOptions.Collection,
		VectorSize: cfg.StoreOptions.VectorSize,
		Distance:   distance,
		Defaults:   cfg.PipelineOptions,
		Metrics:    metrics.New(),
	})
	storeName, storeEnabled := svc.StoreStatus()
	logger.Infow("Embedding service initialized",
		"default_model", models.DefaultID(),
		"store", storeName,
		"store.enabled", storeEnabled,
	)

	// 7. 初始化 HTTP 服务器与路由
	httpSrv := httpserver.NewServer(cfg.HTTPOptions, cfg.MiddlewareOptions)
	auth := middleware.NewTokenAuth(cfg.MiddlewareOptions.Auth)
	if !auth.Enabled() {
		logger.Warn("API token is empty, authentication is disabled")
	}
	router.Register(httpSrv.Engine(), handler.New(svc), auth)

	health := middleware.NewHealthManager(app.GetVersion())
	health.Register("storage", func(ctx context.Context) map[string]error {
		results := make(map[string]error)
		for name, st := range storageMgr.HealthCheckAll(ctx) {
			results[name] = st.Error
		}
		return results
	})
	middleware.RegisterProbes(httpSrv.Engine(), cfg.MiddlewareOptions.Health, health)

	// 8. 配置热更新
	var watcher *config.Watcher
	if cfg.Viper != nil && cfg.Viper.ConfigFileUsed() != "" {
		watcher = config.NewWatcher(cfg.Viper)
		watchReloadable(watcher, auth)
		watcher.Start()
	}

	logger.Info("Embedding service is ready")
	return &Server{
		srv:     server.NewManager(cfg.ShutdownTimeout, httpSrv),
		storage: storageMgr,
		workers: workers,
		watcher: watcher,
	}, nil
}

// watchReloadable subscribes the settings that can change without a restart.
func watchReloadable(w *config.Watcher, auth *middleware.TokenAuth) {
	w.SubscribeKey("auth-token", "middleware.auth.token", func(v interface{}) error {
		token, _ := v.(string)
		auth.SetToken(token)
		logger.Infow("API token reloaded", "enabled", auth.Enabled())
		return nil
	})
	w.SubscribeKey("log-level", "log.level", func(v interface{}) error {
		level, _ := v.(string)
		if level == "" {
			return nil
		}
		if err := logopts.SetLevel(level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logger.Infow("Log level changed", "level", level)
		return nil
	})
}

// Run starts the server and blocks until ctx is done or a signal arrives.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.storage.CloseAll(); err != nil {
			logger.Warnw("Failed to close storage clients", "error", err.Error())
		}
		s.workers.Release()
		_ = logger.Flush()
	}()
	return s.srv.Run(ctx)
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  HTTP: %s\n", cfg.HTTPOptions.Addr)
	fmt.Printf("  Default model: %s\n", cfg.EmbeddingOptions.DefaultModel)
	if cfg.StoreOptions.Enable {
		fmt.Printf("  Store: %s (collection=%s)\n", cfg.StoreOptions.Backend, cfg.StoreOptions.Collection)
	} else {
		fmt.Println("  Store: disabled")
	}
}
