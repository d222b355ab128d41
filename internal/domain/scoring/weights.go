package scoring

import (
	"math"

	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/profile"
	"github.com/pension/backend/internal/domain/shared"
)

// WeightTolerance is how far the weight sum may drift from 1.0
const WeightTolerance = 0.001

// Weights are the per-dimension weights of the total match score
type Weights struct {
	Age            float64 `json:"age_match" mapstructure:"age_match"`
	Income         float64 `json:"income_match" mapstructure:"income_match"`
	Risk           float64 `json:"risk_match" mapstructure:"risk_match"`
	Retirement     float64 `json:"retirement_match" mapstructure:"retirement_match"`
	SocialSecurity float64 `json:"social_security_match" mapstructure:"social_security_match"`
	Investment     float64 `json:"investment_match" mapstructure:"investment_match"`
}

// DefaultWeights returns the stock weighting
func DefaultWeights() Weights {
	return Weights{
		Age:            0.30,
		Income:         0.20,
		Risk:           0.20,
		Retirement:     0.15,
		SocialSecurity: 0.10,
		Investment:     0.05,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Age + w.Income + w.Risk + w.Retirement + w.SocialSecurity + w.Investment
}

// Validate requires non-negative weights summing to 1.0 within WeightTolerance
func (w Weights) Validate() error {
	for _, v := range []float64{w.Age, w.Income, w.Risk, w.Retirement, w.SocialSecurity, w.Investment} {
		if v < 0 || math.IsNaN(v) {
			return shared.NewInvalidWeightsError("weights must not be negative")
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > WeightTolerance {
		return shared.NewInvalidWeightsError("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// Scores holds the six dimension scores of one product for one user
type Scores struct {
	Age            float64 `json:"age_score"`
	Income         float64 `json:"income_score"`
	Risk           float64 `json:"risk_score"`
	Retirement     float64 `json:"retirement_score"`
	SocialSecurity float64 `json:"ss_score"`
	Investment     float64 `json:"investment_score"`
}

// Total returns the weighted sum of the scores
func (w Weights) Total(s Scores) float64 {
	return w.Age*s.Age +
		w.Income*s.Income +
		w.Risk*s.Risk +
		w.Retirement*s.Retirement +
		w.SocialSecurity*s.SocialSecurity +
		w.Investment*s.Investment
}

// Score evaluates every dimension of p for the user
func Score(u *profile.UserProfile, p *product.NormalizedProduct) Scores {
	return Scores{
		Age:            AgeScore(u.Age, p.MinAge, p.MaxAge),
		Income:         IncomeScore(u.AnnualIncome, p.MinPremium, p.PaymentType),
		Risk:           RiskScore(u.RiskTolerance, p.RiskLevel),
		Retirement:     RetirementScore(u.ExpectedRetirementAge, p.CoverageAge, p.CoverageYears),
		SocialSecurity: SocialSecurityScore(u.SocialSecurityType, p.InsuranceType, p.FeatureKeywords),
		Investment:     InvestmentScore(u.InvestmentAmount, p.MinPremium),
	}
}

// Rounded returns the scores rounded to three decimals for display
func (s Scores) Rounded() Scores {
	return Scores{
		Age:            Round(s.Age, 3),
		Income:         Round(s.Income, 3),
		Risk:           Round(s.Risk, 3),
		Retirement:     Round(s.Retirement, 3),
		SocialSecurity: Round(s.SocialSecurity, 3),
		Investment:     Round(s.Investment, 3),
	}
}

// Round rounds v half away from zero to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
