package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/scoring"
	"github.com/pension/backend/internal/domain/shared"
)

// DefaultHistoryKey is the snapshot key of the recommendation history
const DefaultHistoryKey = "recommendation_history.json"

// CatalogSource provides the catalog to score against
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Recorder observes served recommendations
type Recorder interface {
	RecommendationsServed(evaluated int, matchScores []float64)
}

// Engine scores catalog products against stored user profiles
type Engine struct {
	catalog    CatalogSource
	store      *Store
	history    shared.SnapshotStore
	historyKey string
	recorder   Recorder
	clock      func() time.Time
	logger     *zap.Logger

	weightsMu sync.RWMutex
	weights   scoring.Weights
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the recommendation observer
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithStore uses an existing Store
func WithStore(s *Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithHistoryStore sets where history snapshots are kept
func WithHistoryStore(store shared.SnapshotStore, key string) Option {
	return func(e *Engine) {
		e.history = store
		if key != "" {
			e.historyKey = key
		}
	}
}

// WithWeights sets the initial weights; invalid weights are rejected by NewEngine
func WithWeights(w scoring.Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// NewEngine creates an Engine over the given catalog
func NewEngine(source CatalogSource, opts ...Option) (*Engine, error) {
	e := &Engine{
		catalog:    source,
		store:      NewStore(),
		historyKey: DefaultHistoryKey,
		clock:      time.Now,
		logger:     zap.NewNop(),
		weights:    scoring.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Store returns the profile and history store
func (e *Engine) Store() *Store {
	return e.store
}

// AddUserProfile validates and registers a profile, replacing any previous one.
// A rejected profile leaves the store unchanged.
func (e *Engine) AddUserProfile(ctx context.Context, userID string, in profile.Input) (*ProfileResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, shared.NewValidationError("user id is required")
	}

	p, warnings, err := profile.Validate(in)
	if err != nil {
		return nil, err
	}

	unlock := e.store.lockUser(userID)
	e.store.PutProfile(userID, p)
	unlock()

	for _, w := range warnings {
		e.logger.Warn("profile value coerced", zap.String("user_id", userID), zap.String("warning", w))
	}
	e.logger.Info("user profile registered",
		zap.String("user_id", userID),
		zap.Int("age", p.Age),
		zap.Float64("annual_income", p.AnnualIncome),
		zap.String("risk_tolerance", string(p.RiskTolerance)),
	)

	if warnings == nil {
		warnings = []string{}
	}
	return &ProfileResult{UserID: userID, Profile: p, Warnings: warnings}, nil
}

// Profile returns the stored profile of a user
func (e *Engine) Profile(userID string) (*profile.UserProfile, error) {
	p, ok := e.store.Profile(userID)
	if !ok {
		return nil, userNotFound(userID)
	}
	return p, nil
}

// GetRecommendations ranks the catalog, or the products matching criteria,
// for a user and records the top entries in the user's history.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, topN int, criteria *catalog.Criteria) (*Result, error) {
	if topN <= 0 {
		return nil, shared.NewValidationError("top_n must be positive, got %d", topN)
	}

	unlock := e.store.lockUser(userID)
	defer unlock()

	u, ok := e.store.Profile(userID)
	if !ok {
		return nil, userNotFound(userID)
	}

	cat := e.catalog.Current()
	if cat == nil || cat.Len() == 0 {
		return nil, shared.ErrCatalogEmpty
	}

	var candidates []*product.NormalizedProduct
	if criteria == nil || criteria.IsEmpty() {
		candidates = cat.Products()
	} else {
		candidates = cat.Filter(*criteria)
	}
	if len(candidates) == 0 {
		return nil, shared.NewNotFoundError(shared.CodeNoMatchingProducts, "no products match the given criteria")
	}

	weights := e.Weights()
	scored := make([]Recommendation, 0, len(candidates))
	for _, p := range candidates {
		scored = append(scored, e.score(u, p, weights))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].total > scored[j].total })

	top := scored
	if len(top) > topN {
		top = top[:topN]
	}
	top = append([]Recommendation(nil), top...)

	now := e.clock()
	e.store.AppendHistory(userID, RecommendationRecord{
		ID:                     uuid.NewString(),
		Timestamp:              now.UTC().Round(0),
		UserProfile:            *u,
		Recommendations:        top,
		TotalProductsEvaluated: len(scored),
	})

	if e.recorder != nil {
		matchScores := make([]float64, len(top))
		for i, r := range top {
			matchScores[i] = r.MatchScore
		}
		e.recorder.RecommendationsServed(len(scored), matchScores)
	}
	e.logger.Info("recommendations generated",
		zap.String("user_id", userID),
		zap.Int("evaluated", len(scored)),
		zap.Int("returned", len(top)),
	)

	return &Result{
		UserID:                 userID,
		UserAge:                u.Age,
		UserIncome:             u.AnnualIncome,
		UserRiskTolerance:      u.RiskTolerance,
		UserSocialSecurityType: u.SocialSecurityType,
		TotalProductsEvaluated: len(scored),
		RecommendationCount:    len(top),
		Recommendations:        top,
		RecommendationTime:     now.Format(TimeLayout),
	}, nil
}

func (e *Engine) score(u *profile.UserProfile, p *product.NormalizedProduct, w scoring.Weights) Recommendation {
	s := scoring.Score(u, p)
	total := w.Total(s)
	return Recommendation{
		ProductID:             p.ProductID,
		ProductName:           p.ProductName,
		InsuranceCompany:      p.InsuranceCompany,
		MatchScore:            scoring.Round(total*100, 1),
		AgeRange:              p.AgeRangeStr,
		InsuranceType:         p.InsuranceType,
		PaymentType:           p.PaymentType,
		MinPremium:            p.MinPremiumStr,
		RiskLevel:             p.RiskLevel,
		Coverage:              p.CoverageStr,
		RecommendationReasons: Reasons(u, p, s),
		DetailedScores:        s.Rounded(),
		ProductDetails:        p,
		total:                 total,
	}
}

// GetPersonalizedAdvice returns rule-based guidance for a registered user
func (e *Engine) GetPersonalizedAdvice(ctx context.Context, userID string) (*Advice, error) {
	u, ok := e.store.Profile(userID)
	if !ok {
		return nil, userNotFound(userID)
	}
	a := BuildAdvice(u)
	a.UserID = userID
	a.AdviceTime = e.clock().Format(TimeLayout)
	return &a, nil
}

// GenerateComparisonTable lines up the given products attribute by attribute.
// Unknown ids are skipped and listed in MissingIDs.
func (e *Engine) GenerateComparisonTable(productIDs []string) (*ComparisonTable, error) {
	cat := e.catalog.Current()
	table := &ComparisonTable{ProductIDs: []string{}, MissingIDs: []string{}}

	var found []*product.NormalizedProduct
	for _, id := range productIDs {
		p, ok := cat.Get(id)
		if !ok {
			table.MissingIDs = append(table.MissingIDs, id)
			continue
		}
		found = append(found, p)
		table.ProductIDs = append(table.ProductIDs, id)
	}
	if len(found) == 0 {
		return nil, shared.NewNotFoundError(shared.CodeProductNotFound, "none of the products %v were found", productIDs)
	}
	table.Rows = buildComparison(found)
	return table, nil
}

// GetHistory returns a user's records, oldest first; unknown users have none
func (e *Engine) GetHistory(userID string) []RecommendationRecord {
	return e.store.History(userID)
}

// ClearHistory drops a user's records
func (e *Engine) ClearHistory(userID string) error {
	unlock := e.store.lockUser(userID)
	defer unlock()
	if !e.store.HasUser(userID) {
		return userNotFound(userID)
	}
	e.store.ClearHistory(userID)
	e.logger.Info("recommendation history cleared", zap.String("user_id", userID))
	return nil
}

// Weights returns the current scoring weights
func (e *Engine) Weights() scoring.Weights {
	e.weightsMu.RLock()
	defer e.weightsMu.RUnlock()
	return e.weights
}

// SetWeights replaces the scoring weights; invalid weights leave the old ones in place
func (e *Engine) SetWeights(w scoring.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	e.weightsMu.Lock()
	e.weights = w
	e.weightsMu.Unlock()
	e.logger.Info("scoring weights updated", zap.Any("weights", w))
	return nil
}

// SaveHistory writes the whole history map to the history store
func (e *Engine) SaveHistory(ctx context.Context) error {
	if e.history == nil {
		return fmt.Errorf("%w: no history store configured", shared.ErrPersistence)
	}
	snapshot := e.store.HistorySnapshot()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("%w: encode history: %v", shared.ErrPersistence, err)
	}
	if err := e.history.Save(ctx, e.historyKey, buf.Bytes()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	e.logger.Info("recommendation history saved", zap.String("key", e.historyKey), zap.Int("users", len(snapshot)))
	return nil
}

// LoadHistory replaces the in-memory history with the saved one.
// A missing or corrupt snapshot returns an error and changes nothing.
func (e *Engine) LoadHistory(ctx context.Context) error {
	if e.history == nil {
		return fmt.Errorf("%w: no history store configured", shared.ErrPersistence)
	}
	data, err := e.history.Load(ctx, e.historyKey)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	var loaded map[string][]RecommendationRecord
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("%w: decode history: %v", shared.ErrPersistence, err)
	}
	e.store.ReplaceHistory(loaded)
	e.logger.Info("recommendation history loaded", zap.String("key", e.historyKey), zap.Int("users", len(loaded)))
	return nil
}

func userNotFound(userID string) error {
	return shared.NewNotFoundError(shared.CodeUserNotFound, "user %s not found", userID)
}
