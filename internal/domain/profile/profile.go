package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
)

// SocialSecurityType is the kind of public pension coverage a user has
type SocialSecurityType string

const (
	SocialSecurityEmployee SocialSecurityType = "城镇职工"
	SocialSecurityResident SocialSecurityType = "城乡居民"
	SocialSecurityNone     SocialSecurityType = "无"
	SocialSecurityOther    SocialSecurityType = "其他"
)

// SocialSecurityTypes lists the recognized social security types
var SocialSecurityTypes = []SocialSecurityType{
	SocialSecurityEmployee, SocialSecurityResident, SocialSecurityNone, SocialSecurityOther,
}

// IsValid reports whether t is a recognized type
func (t SocialSecurityType) IsValid() bool {
	for _, v := range SocialSecurityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Documented defaults applied during validation
const (
	MinAge                       = 18
	MaxAge                       = 70
	DefaultExpectedRetirementAge = 60
	DefaultRiskTolerance         = product.RiskMedium
	DefaultSocialSecurityType    = SocialSecurityEmployee
	DefaultLocation              = "全国"
	DefaultInvestmentHorizon     = "长期"
	DefaultLiquidityNeeds        = "中等"
	DefaultHealthStatus          = "良好"
	DefaultFamilyStatus          = "未婚无子女"
	DefaultExistingInsurance     = "无"
	investmentIncomeShare        = 0.5
)

// DefaultInvestmentAmount is the investable amount assumed when none is given, in 万元
func DefaultInvestmentAmount(annualIncome float64) float64 {
	return annualIncome * investmentIncomeShare
}

// Input is an unvalidated profile as submitted by a caller.
// Pointer fields distinguish "absent" from zero values.
type Input struct {
	Age                   *int     `json:"age" validate:"required"`
	AnnualIncome          *float64 `json:"annual_income" validate:"required,gte=0"`
	RiskTolerance         *string  `json:"risk_tolerance" validate:"required"`
	SocialSecurityType    *string  `json:"social_security_type" validate:"required"`
	ExpectedRetirementAge *int     `json:"expected_retirement_age,omitempty" validate:"omitempty,gte=0,lte=100"`
	InvestmentAmount      *float64 `json:"investment_amount,omitempty" validate:"omitempty,gte=0"`
	Location              string   `json:"location,omitempty"`
	InvestmentHorizon     string   `json:"investment_horizon,omitempty"`
	LiquidityNeeds        string   `json:"liquidity_needs,omitempty"`
	HealthStatus          string   `json:"health_status,omitempty"`
	FamilyStatus          string   `json:"family_status,omitempty"`
	ExistingInsurance     string   `json:"existing_insurance,omitempty"`
}

// UserProfile is a validated profile with every default filled in.
// Income and investment amounts are in 万元 (ten thousand yuan).
type UserProfile struct {
	Age                   int                `json:"age"`
	AnnualIncome          float64            `json:"annual_income"`
	RiskTolerance         product.RiskLevel  `json:"risk_tolerance"`
	SocialSecurityType    SocialSecurityType `json:"social_security_type"`
	ExpectedRetirementAge int                `json:"expected_retirement_age"`
	InvestmentAmount      float64            `json:"investment_amount"`
	Location              string             `json:"location"`
	InvestmentHorizon     string             `json:"investment_horizon"`
	LiquidityNeeds        string             `json:"liquidity_needs"`
	HealthStatus          string             `json:"health_status"`
	FamilyStatus          string             `json:"family_status"`
	ExistingInsurance     string             `json:"existing_insurance"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required fields and normalizes everything else.
// Missing required fields and negative amounts are errors; out-of-range ages
// and unknown enum values are coerced to defaults and reported as warnings.
func Validate(in Input) (*UserProfile, []string, error) {
	if err := validate.Struct(in); err != nil {
		return nil, nil, validationError(err)
	}

	var warnings []string
	p := &UserProfile{
		Age:                   *in.Age,
		AnnualIncome:          *in.AnnualIncome,
		RiskTolerance:         product.RiskLevel(strings.TrimSpace(*in.RiskTolerance)),
		SocialSecurityType:    SocialSecurityType(strings.TrimSpace(*in.SocialSecurityType)),
		ExpectedRetirementAge: DefaultExpectedRetirementAge,
		Location:              orDefault(in.Location, DefaultLocation),
		InvestmentHorizon:     orDefault(in.InvestmentHorizon, DefaultInvestmentHorizon),
		LiquidityNeeds:        orDefault(in.LiquidityNeeds, DefaultLiquidityNeeds),
		HealthStatus:          orDefault(in.HealthStatus, DefaultHealthStatus),
		FamilyStatus:          orDefault(in.FamilyStatus, DefaultFamilyStatus),
		ExistingInsurance:     orDefault(in.ExistingInsurance, DefaultExistingInsurance),
	}

	switch {
	case p.Age < MinAge:
		warnings = append(warnings, fmt.Sprintf("age %d is below %d, using %d", p.Age, MinAge, MinAge))
		p.Age = MinAge
	case p.Age > MaxAge:
		warnings = append(warnings, fmt.Sprintf("age %d is above %d, using %d", p.Age, MaxAge, MaxAge))
		p.Age = MaxAge
	}

	if !p.RiskTolerance.IsValid() {
		warnings = append(warnings, fmt.Sprintf("unknown risk tolerance %q, using %s", p.RiskTolerance, DefaultRiskTolerance))
		p.RiskTolerance = DefaultRiskTolerance
	}
	if !p.SocialSecurityType.IsValid() {
		warnings = append(warnings, fmt.Sprintf("unknown social security type %q, using %s", p.SocialSecurityType, DefaultSocialSecurityType))
		p.SocialSecurityType = DefaultSocialSecurityType
	}

	if in.ExpectedRetirementAge != nil {
		p.ExpectedRetirementAge = *in.ExpectedRetirementAge
	}
	if in.InvestmentAmount != nil {
		p.InvestmentAmount = *in.InvestmentAmount
	} else {
		p.InvestmentAmount = DefaultInvestmentAmount(p.AnnualIncome)
	}
	return p, warnings, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.NewValidationError("invalid profile: %v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return shared.NewValidationError("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field: " + fe.Field()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
