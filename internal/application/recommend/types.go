package recommend

import (
	"time"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/scoring"
)

// TimeLayout is the display layout of recommendation and advice times
const TimeLayout = "2006-01-02 15:04:05"

// Recommendation is one scored product in a result
type Recommendation struct {
	ProductID             string                     `json:"product_id"`
	ProductName           string                     `json:"product_name"`
	InsuranceCompany      string                     `json:"insurance_company"`
	MatchScore            float64                    `json:"match_score"`
	AgeRange              string                     `json:"age_range"`
	InsuranceType         product.InsuranceType      `json:"insurance_type"`
	PaymentType           product.PaymentType        `json:"payment_type"`
	MinPremium            string                     `json:"min_premium"`
	RiskLevel             product.RiskLevel          `json:"risk_level"`
	Coverage              string                     `json:"coverage"`
	RecommendationReasons []string                   `json:"recommendation_reasons"`
	DetailedScores        scoring.Scores             `json:"detailed_scores"`
	ProductDetails        *product.NormalizedProduct `json:"product_details"`

	total float64
}

// Result is the answer to one recommendation request
type Result struct {
	UserID                 string                     `json:"user_id"`
	UserAge                int                        `json:"user_age"`
	UserIncome             float64                    `json:"user_income"`
	UserRiskTolerance      product.RiskLevel          `json:"user_risk_tolerance"`
	UserSocialSecurityType profile.SocialSecurityType `json:"user_social_security_type"`
	TotalProductsEvaluated int                        `json:"total_products_evaluated"`
	RecommendationCount    int                        `json:"recommendation_count"`
	Recommendations        []Recommendation           `json:"recommendations"`
	RecommendationTime     string                     `json:"recommendation_time"`
}

// RecommendationRecord is one history entry; records are only ever appended
type RecommendationRecord struct {
	ID                     string              `json:"id"`
	Timestamp              time.Time           `json:"timestamp"`
	UserProfile            profile.UserProfile `json:"user_profile"`
	Recommendations        []Recommendation    `json:"recommendations"`
	TotalProductsEvaluated int                 `json:"total_products_evaluated"`
}

// ProfileResult is a registered profile and the coercions applied to it
type ProfileResult struct {
	UserID   string               `json:"user_id"`
	Profile  *profile.UserProfile `json:"profile"`
	Warnings []string             `json:"warnings"`
}
