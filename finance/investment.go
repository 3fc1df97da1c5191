package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RiskProfile selects the expected return used by SimulateInvestment.
type RiskProfile string

const (
	Conservative RiskProfile = "conservative"
	Moderate     RiskProfile = "moderate"
	Aggressive   RiskProfile = "aggressive"
)

// RiskProfiles lists the accepted profiles in ascending order of risk.
var RiskProfiles = []RiskProfile{Conservative, Moderate, Aggressive}

type riskParams struct {
	annualReturn decimal.Decimal
	volatility   decimal.Decimal
}

var riskTable = map[RiskProfile]riskParams{
	Conservative: {decimal.RequireFromString("0.08"), decimal.RequireFromString("0.02")},
	Moderate:     {decimal.RequireFromString("0.12"), decimal.RequireFromString("0.08")},
	Aggressive:   {decimal.RequireFromString("0.15"), decimal.RequireFromString("0.15")},
}

var riskAliases = map[string]RiskProfile{
	"conservative": Conservative,
	"conservador":  Conservative,
	"moderate":     Moderate,
	"moderado":     Moderate,
	"aggressive":   Aggressive,
	"arrojado":     Aggressive,
}

// ParseRiskProfile accepts the English profile names and their Portuguese
// equivalents, case-insensitively.
func ParseRiskProfile(s string) (RiskProfile, error) {
	if p, ok := riskAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", invalidf("unknown risk profile %q", s)
}

const (
	// internalScale bounds the digits carried between compounding steps.
	internalScale = 16

	maxHorizonYears = 100
)

var (
	shortHorizonYears = decimal.NewFromInt(2)
	longHorizonYears  = decimal.NewFromInt(10)
)

// InvestmentRequest describes a savings plan to project.
type InvestmentRequest struct {
	InitialAmount       decimal.Decimal
	MonthlyContribution decimal.Decimal
	TimeHorizonYears    decimal.Decimal
	RiskProfile         RiskProfile
}

// InvestmentResult is the outcome of SimulateInvestment.
type InvestmentResult struct {
	RiskProfile      RiskProfile
	TimeHorizonYears decimal.Decimal
	Months           int64
	AnnualReturn     decimal.Decimal
	Volatility       decimal.Decimal

	TotalInvested decimal.Decimal
	// FinalAmount is the unrounded value after the last month.
	FinalAmount      decimal.Decimal
	ProjectedValue   decimal.Decimal // whole units
	TotalReturn      decimal.Decimal // whole units
	ReturnPercentage decimal.Decimal // 2 places
	MonthlyReturn    decimal.Decimal // percent, 2 places

	Recommendations []string
}

// SimulateInvestment projects a deterministic month-by-month compounding of
// the initial amount plus a fixed contribution added after each month's
// growth. Fractional horizons are floored to whole months.
func SimulateInvestment(req InvestmentRequest) (*InvestmentResult, error) {
	params, ok := riskTable[req.RiskProfile]
	if !ok {
		return nil, invalidf("unknown risk profile %q", req.RiskProfile)
	}
	if req.InitialAmount.IsNegative() {
		return nil, invalidf("initial amount must not be negative, got %s", req.InitialAmount)
	}
	if req.MonthlyContribution.IsNegative() {
		return nil, invalidf("monthly contribution must not be negative, got %s", req.MonthlyContribution)
	}
	if req.TimeHorizonYears.IsNegative() || req.TimeHorizonYears.GreaterThan(decimal.NewFromInt(maxHorizonYears)) {
		return nil, invalidf("time horizon must be between 0 and %d years, got %s", maxHorizonYears, req.TimeHorizonYears)
	}

	months := req.TimeHorizonYears.Mul(twelve).Floor().IntPart()
	monthlyReturn := params.annualReturn.Div(twelve)
	growth := decimal.NewFromInt(1).Add(monthlyReturn)

	total := req.InitialAmount
	for i := int64(0); i < months; i++ {
		total = total.Mul(growth).Add(req.MonthlyContribution).Round(internalScale)
	}

	invested := req.InitialAmount.Add(req.MonthlyContribution.Mul(decimal.NewFromInt(months)))
	gain := total.Sub(invested)
	returnPct := decimal.Zero
	if !invested.IsZero() {
		returnPct = gain.Div(invested).Mul(hundred).Round(2)
	}

	return &InvestmentResult{
		RiskProfile:      req.RiskProfile,
		TimeHorizonYears: req.TimeHorizonYears,
		Months:           months,
		AnnualReturn:     params.annualReturn,
		Volatility:       params.volatility,
		TotalInvested:    invested,
		FinalAmount:      total,
		ProjectedValue:   total.Round(0),
		TotalReturn:      gain.Round(0),
		ReturnPercentage: returnPct,
		MonthlyReturn:    monthlyReturn.Mul(hundred).Round(2),
		Recommendations:  investmentRecommendations(req.RiskProfile, req.TimeHorizonYears),
	}, nil
}

func investmentRecommendations(profile RiskProfile, years decimal.Decimal) []string {
	recs := []string{}
	if years.LessThan(shortHorizonYears) {
		recs = append(recs, "For short horizons, prefer low-risk instruments such as government bonds and bank deposits.")
	}
	if years.GreaterThan(longHorizonYears) {
		recs = append(recs, "For long horizons, consider increasing your exposure to stocks and equity funds.")
	}
	if profile == Conservative {
		recs = append(recs, "Consider diversifying with inflation-linked bonds and mid-sized bank deposits for better yield.")
	}
	return recs
}
