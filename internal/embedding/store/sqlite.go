package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/sentinel-embed/internal/model"
	"github.com/kart-io/sentinel-embed/internal/pkg/vecutil"
	"github.com/kart-io/sentinel-embed/pkg/component/sqlite"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

// SQLiteStore 基于嵌入式 sqlite 的向量存储，检索时在进程内暴力计算。
type SQLiteStore struct {
	client *sqlite.Client
	db     *gorm.DB
}

var _ VectorStore = (*SQLiteStore)(nil)

// NewSQLiteStore 打开数据库并迁移表结构。
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	client, err := sqlite.New(ctx, path, &model.Collection{}, &model.VectorPoint{})
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{client: client, db: client.DB()}, nil
}

// Name 返回后端名称。
func (s *SQLiteStore) Name() string { return "sqlite" }

// Enabled 总是返回 true。
func (s *SQLiteStore) Enabled() bool { return true }

// Client 返回底层连接，用于健康检查。
func (s *SQLiteStore) Client() *sqlite.Client { return s.client }

// EnsureCollection 幂等创建集合。
func (s *SQLiteStore) EnsureCollection(ctx context.Context, name string, dim int, metric Distance) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Collection{Name: name, Dimension: dim, Distance: string(metric)}).Error
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) collection(ctx context.Context, name string) (*model.Collection, error) {
	var c model.Collection
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	return &c, nil
}

// Upsert 在一个事务内按 ID 插入或覆盖点。
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	if len(points) == 0 {
		return nil
	}
	c, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	rows := make([]*model.VectorPoint, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != c.Dimension {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(p.Vector), c.Dimension)
		}
		text, rest := splitPayload(p.Payload)
		payload, err := json.Marshal(rest)
		if err != nil {
			return fmt.Errorf("failed to encode payload of %s: %w", p.ID, err)
		}
		rows = append(rows, &model.VectorPoint{
			Collection: collection,
			ID:         p.ID,
			Vector:     vecutil.Encode(p.Vector),
			Text:       text,
			Payload:    string(payload),
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "text", "payload", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Search 读取集合全部点并暴力计算分数。集合不存在时返回空结果。
func (s *SQLiteStore) Search(ctx context.Context, collection string, q *SearchQuery) ([]*SearchResult, error) {
	c, err := s.collection(ctx, collection)
	if errors.Is(err, ErrCollectionNotFound) {
		return []*SearchResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(q.Vector) != c.Dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(q.Vector), c.Dimension)
	}
	metric, err := ParseDistance(c.Distance)
	if err != nil {
		return nil, err
	}

	var rows []model.VectorPoint
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read points of %s: %w", collection, err)
	}

	results := make([]*SearchResult, 0, len(rows))
	for _, row := range rows {
		payload := map[string]any{}
		if row.Payload != "" {
			if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload of %s: %w", row.ID, err)
			}
		}
		payload[PayloadText] = row.Text
		if !MatchFilter(payload, q.Filter) {
			continue
		}
		vec, err := vecutil.Decode(row.Vector)
		if err != nil {
			return nil, fmt.Errorf("point %s: %w", row.ID, err)
		}
		if len(vec) != c.Dimension {
			continue
		}
		delete(payload, PayloadText)
		results = append(results, &SearchResult{
			ID:      row.ID,
			Score:   score(metric, q.Vector, vec),
			Text:    row.Text,
			Payload: payload,
		})
	}
	return rank(results, q, metric), nil
}

// Close 关闭数据库。
func (s *SQLiteStore) Close() error {
	return s.client.Close()
}
