package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/application/recommend"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/scoring"
	"github.com/pension/backend/internal/domain/shared"
	"github.com/pension/backend/internal/interfaces/http/dto"
)

// Advisor is the recommendation surface the HTTP layer drives
type Advisor interface {
	AddUserProfile(ctx context.Context, userID string, in profile.Input) (*recommend.ProfileResult, error)
	Profile(userID string) (*profile.UserProfile, error)
	GetRecommendations(ctx context.Context, userID string, topN int, criteria *catalog.Criteria) (*recommend.Result, error)
	GetPersonalizedAdvice(ctx context.Context, userID string) (*recommend.Advice, error)
	GenerateComparisonTable(productIDs []string) (*recommend.ComparisonTable, error)
	GetHistory(userID string) []recommend.RecommendationRecord
	ClearHistory(userID string) error
	Weights() scoring.Weights
	SetWeights(w scoring.Weights) error
}

// TopNLimits bounds the number of recommendations a request may ask for
type TopNLimits struct {
	Default int
	Max     int
}

// DefaultTopNLimits matches the recommend section defaults
func DefaultTopNLimits() TopNLimits {
	return TopNLimits{Default: 5, Max: 50}
}

// resolve applies the default to an unset value and caps it at Max
func (l TopNLimits) resolve(n int) int {
	if n <= 0 {
		n = l.Default
	}
	if l.Max > 0 && n > l.Max {
		n = l.Max
	}
	return n
}

// generatedUserIDPrefix marks ids assigned to anonymous /analyze callers
const generatedUserIDPrefix = "user_"

// AdvisorHandler serves profile, recommendation, comparison and advice endpoints
type AdvisorHandler struct {
	BaseHandler
	advisor Advisor
	topN    TopNLimits
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(advisor Advisor, limits TopNLimits) *AdvisorHandler {
	if limits.Default <= 0 {
		limits.Default = DefaultTopNLimits().Default
	}
	return &AdvisorHandler{advisor: advisor, topN: limits}
}

// userID reads and trims the :id path parameter
func (h *AdvisorHandler) userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		h.BadRequest(c, "user id is required")
		return "", false
	}
	return id, true
}

// Analyze registers a profile and returns recommendations for it in one call.
// POST /api/v1/analyze
func (h *AdvisorHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = generatedUserIDPrefix + uuid.NewString()
	}

	registered, err := h.advisor.AddUserProfile(ctx, userID, req.Input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.advisor.GetRecommendations(ctx, userID, h.topN.resolve(req.TopN), req.CriteriaOrNil())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithWarnings(c, dto.AnalyzeResponse{
		UserID:   userID,
		Profile:  registered.Profile,
		Warnings: registered.Warnings,
		Result:   result,
	}, registered.Warnings)
}

// PutProfile registers or replaces a user's profile.
// PUT /api/v1/users/:id/profile
func (h *AdvisorHandler) PutProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var in profile.Input
	if !h.BindJSON(c, &in) {
		return
	}

	registered, err := h.advisor.AddUserProfile(c.Request.Context(), userID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, registered, registered.Warnings)
}

// GetProfile returns a user's stored profile.
// GET /api/v1/users/:id/profile
func (h *AdvisorHandler) GetProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	p, err := h.advisor.Profile(userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// GetRecommendations ranks products for a registered user.
// GET /api/v1/users/:id/recommendations?top_n=&risk_level=...
func (h *AdvisorHandler) GetRecommendations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var query dto.RecommendationQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.advisor.GetRecommendations(c.Request.Context(), userID, h.topN.resolve(query.TopN), query.CriteriaOrNil())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetHistory returns a user's past recommendations, oldest first.
// GET /api/v1/users/:id/history
func (h *AdvisorHandler) GetHistory(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	records := h.advisor.GetHistory(userID)
	if records == nil {
		records = []recommend.RecommendationRecord{}
	}
	h.Success(c, records)
}

// ClearHistory drops a user's past recommendations.
// DELETE /api/v1/users/:id/history
func (h *AdvisorHandler) ClearHistory(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.advisor.ClearHistory(userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Compare lines up two or more products attribute by attribute.
// POST /api/v1/compare
func (h *AdvisorHandler) Compare(c *gin.Context) {
	var req dto.CompareRequest
	if !h.BindJSON(c, &req) {
		return
	}
	table, err := h.advisor.GenerateComparisonTable(req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var warnings []string
	for _, id := range table.MissingIDs {
		warnings = append(warnings, "product "+id+" not found")
	}
	h.SuccessWithWarnings(c, table, warnings)
}

// Advice returns rule-based planning guidance for a registered user.
// POST /api/v1/advice
func (h *AdvisorHandler) Advice(c *gin.Context) {
	var req dto.AdviceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.HandleError(c, errUserIDRequired)
		return
	}
	advice, err := h.advisor.GetPersonalizedAdvice(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, advice)
}

// GetWeights returns the scoring weights in use.
// GET /api/v1/weights
func (h *AdvisorHandler) GetWeights(c *gin.Context) {
	h.Success(c, h.advisor.Weights())
}

// PutWeights replaces the scoring weights.
// PUT /api/v1/weights
func (h *AdvisorHandler) PutWeights(c *gin.Context) {
	var w scoring.Weights
	if !h.BindJSON(c, &w) {
		return
	}
	if err := h.advisor.SetWeights(w); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.advisor.Weights())
}

var _ Advisor = (*recommend.Engine)(nil)

// errUserIDRequired is returned for advice requests with a blank user id
var errUserIDRequired = shared.NewValidationError("user_id is required")
