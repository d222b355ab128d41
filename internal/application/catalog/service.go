package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
)

// DefaultSnapshotKey is the snapshot key of the processed product list
const DefaultSnapshotKey = "processed_products.json"

// Recorder observes catalog rebuilds
type Recorder interface {
	CatalogRebuilt(built, skipped int)
}

// Service holds the current catalog and swaps in rebuilt ones.
// Readers always see a complete catalog.
type Service struct {
	current     atomic.Pointer[Catalog]
	snapshots   shared.SnapshotStore
	snapshotKey string
	recorder    Recorder
	logger      *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSnapshotStore sets where catalog snapshots are kept
func WithSnapshotStore(store shared.SnapshotStore, key string) ServiceOption {
	return func(s *Service) {
		s.snapshots = store
		if key != "" {
			s.snapshotKey = key
		}
	}
}

// WithRecorder sets the rebuild observer
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a Service holding an empty catalog
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		snapshotKey: DefaultSnapshotKey,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(Empty())
	return s
}

// Current returns the catalog readers should use; never nil
func (s *Service) Current() *Catalog {
	return s.current.Load()
}

// Rebuild builds a catalog from rows and publishes it.
// On failure the previous catalog stays in place.
func (s *Service) Rebuild(ctx context.Context, rows []product.RawRow) (*BuildResult, error) {
	c, result, err := Build(rows)
	if err != nil {
		s.logger.Warn("catalog rebuild failed, keeping previous catalog",
			zap.Int("total_rows", result.TotalRows),
			zap.Int("skipped_rows", result.SkippedRows),
			zap.Error(err),
		)
		return result, err
	}

	s.current.Store(c)
	if s.recorder != nil {
		s.recorder.CatalogRebuilt(result.BuiltRows, result.SkippedRows)
	}

	fields := []zap.Field{
		zap.Int("total_rows", result.TotalRows),
		zap.Int("built_rows", result.BuiltRows),
		zap.Int("skipped_rows", result.SkippedRows),
		zap.Int("companies", len(c.companies)),
	}
	if result.SkippedRows > 0 {
		for _, e := range result.Errors {
			s.logger.Debug("row skipped", zap.Int("row", e.Row), zap.String("code", e.Code), zap.String("message", e.Message))
		}
		s.logger.Warn("catalog rebuilt with skipped rows", fields...)
	} else {
		s.logger.Info("catalog rebuilt", fields...)
	}
	return result, nil
}

// Replace publishes an already built catalog
func (s *Service) Replace(c *Catalog) {
	if c == nil {
		return
	}
	s.current.Store(c)
	if s.recorder != nil {
		s.recorder.CatalogRebuilt(c.Len(), 0)
	}
}

// SaveSnapshot writes the current products as a JSON array
func (s *Service) SaveSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return fmt.Errorf("%w: no snapshot store configured", shared.ErrPersistence)
	}
	data, err := EncodeProducts(s.Current().products)
	if err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, s.snapshotKey, data); err != nil {
		return fmt.Errorf("save catalog snapshot: %w", err)
	}
	s.logger.Info("catalog snapshot saved", zap.String("key", s.snapshotKey), zap.Int("products", s.Current().Len()))
	return nil
}

// LoadSnapshot replaces the catalog with a saved snapshot and returns its size.
// A missing or unreadable snapshot leaves the current catalog untouched.
func (s *Service) LoadSnapshot(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, fmt.Errorf("%w: no snapshot store configured", shared.ErrPersistence)
	}
	data, err := s.snapshots.Load(ctx, s.snapshotKey)
	if err != nil {
		return 0, fmt.Errorf("load catalog snapshot: %w", err)
	}
	products, err := DecodeProducts(data)
	if err != nil {
		return 0, err
	}
	c, err := FromProducts(products)
	if err != nil {
		return 0, err
	}
	s.Replace(c)
	s.logger.Info("catalog snapshot loaded", zap.String("key", s.snapshotKey), zap.Int("products", c.Len()))
	return c.Len(), nil
}

// EncodeProducts renders products as a JSON array without HTML escaping
func EncodeProducts(products []*product.NormalizedProduct) ([]byte, error) {
	if products == nil {
		products = []*product.NormalizedProduct{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("%w: encode products: %v", shared.ErrPersistence, err)
	}
	return buf.Bytes(), nil
}

// DecodeProducts parses a JSON array of products
func DecodeProducts(data []byte) ([]*product.NormalizedProduct, error) {
	var products []*product.NormalizedProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", shared.ErrPersistence, err)
	}
	return products, nil
}
