// Package milvus wraps the Milvus v2 client with the collection layout used for embeddings.
package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	milvusopts "github.com/kart-io/sentinel-embed/pkg/options/milvus"
)

// Field names of an embedding collection.
const (
	FieldID       = "id"
	FieldVector   = "vector"
	FieldText     = "text"
	FieldMetadata = "metadata"

	idMaxLen   = 64
	textMaxLen = 65535
)

// Client wraps the Milvus SDK client and implements storage.Client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

var _ storage.Client = (*Client)(nil)

// New creates a new Milvus client.
func New(ctx context.Context, opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{client: c, opts: opts}, nil
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return "milvus"
}

// Ping lists collections to verify the connection.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.ListCollections(ctx, milvusclient.NewListCollectionOption())
	return err
}

// Close closes the Milvus client connection.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	defer cancel()
	return c.client.Close(ctx)
}

// Health returns a checker bound to the configured timeout.
func (c *Client) Health() storage.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
		defer cancel()
		return c.Ping(ctx)
	}
}

// RawClient returns the underlying Milvus client.
func (c *Client) RawClient() *milvusclient.Client {
	return c.client
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.opts.Timeout
}

// MetricType maps a distance name to a Milvus metric.
func MetricType(distance string) entity.MetricType {
	switch strings.ToUpper(distance) {
	case "EUCLID", "EUCLIDEAN", "L2":
		return entity.L2
	case "DOT", "IP":
		return entity.IP
	default:
		return entity.COSINE
	}
}

func (c *Client) vectorIndex(metric entity.MetricType) index.Index {
	switch strings.ToUpper(c.opts.IndexType) {
	case milvusopts.IndexIVFFlat:
		return index.NewIvfFlatIndex(metric, 128)
	case milvusopts.IndexHNSW:
		return index.NewHNSWIndex(metric, 16, 200)
	default:
		return index.NewAutoIndex(metric)
	}
}

// EnsureCollection creates and loads an embedding collection if it does not exist.
// An existing collection is left untouched, including its dimension.
func (c *Client) EnsureCollection(ctx context.Context, name string, dim int, metric entity.MetricType) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(name).
		WithDescription("text embeddings").
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).
			WithMaxLength(idMaxLen)).
		WithField(entity.NewField().
			WithName(FieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim))).
		WithField(entity.NewField().
			WithName(FieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(textMaxLen)).
		WithField(entity.NewField().
			WithName(FieldMetadata).
			WithDataType(entity.FieldTypeJSON))

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, FieldVector, c.vectorIndex(metric)))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := idxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	return c.load(ctx, name)
}

func (c *Client) load(ctx context.Context, name string) error {
	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}
	return nil
}

// Row is one entity of an embedding collection. Metadata is a JSON document.
type Row struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata []byte
}

// Upsert inserts or overwrites rows by id and flushes them so searches see them.
func (c *Client) Upsert(ctx context.Context, collection string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	vectors := make([][]float32, len(rows))
	texts := make([]string, len(rows))
	metas := make([][]byte, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		vectors[i] = r.Vector
		texts[i] = r.Text
		metas[i] = r.Metadata
	}

	opt := milvusclient.NewColumnBasedInsertOption(collection,
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnFloatVector(FieldVector, len(vectors[0]), vectors),
		column.NewColumnVarChar(FieldText, texts),
		column.NewColumnJSONBytes(FieldMetadata, metas),
	)
	if _, err := c.client.Upsert(ctx, opt); err != nil {
		return fmt.Errorf("failed to upsert data: %w", err)
	}

	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collection))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}
	return nil
}

// Hit is one search result.
type Hit struct {
	ID       string
	Score    float32
	Text     string
	Metadata []byte
}

// Search runs a vector search. expr is a Milvus boolean expression, empty for none.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int, expr string) ([]Hit, error) {
	if err := c.load(ctx, collection); err != nil {
		return nil, err
	}

	opt := milvusclient.NewSearchOption(collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldText, FieldMetadata)
	if strings.EqualFold(c.opts.IndexType, milvusopts.IndexIVFFlat) {
		opt = opt.WithSearchParam("nprobe", fmt.Sprint(c.opts.NProbe))
	}
	if expr != "" {
		opt = opt.WithFilter(expr)
	}

	results, err := c.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []Hit{}, nil
	}

	rs := results[0]
	hits := make([]Hit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		hit := Hit{Score: rs.Scores[i]}
		if rs.IDs != nil {
			if v, err := rs.IDs.Get(i); err == nil {
				hit.ID, _ = v.(string)
			}
		}
		for _, col := range rs.Fields {
			v, err := col.Get(i)
			if err != nil {
				continue
			}
			switch col.Name() {
			case FieldText:
				hit.Text, _ = v.(string)
			case FieldMetadata:
				hit.Metadata, _ = v.([]byte)
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DropCollection drops a collection.
func (c *Client) DropCollection(ctx context.Context, collection string) error {
	if err := c.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(collection)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
