package finance

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// lnPrecision is the number of digits used for logarithms.
const lnPrecision = 16

// Monthly rates above this trigger the high-interest recommendation.
var highInterestRate = decimal.RequireFromString("0.03")

// Debt is one outstanding balance. InterestRate is a monthly fraction,
// so 0.02 means 2% a month.
type Debt struct {
	Name           string
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal
	MinimumPayment decimal.Decimal
}

// DebtPlanRequest asks how to pay off Debts with AvailableAmount a month.
type DebtPlanRequest struct {
	Debts           []Debt
	AvailableAmount decimal.Decimal
}

// PayoffEstimate is a whole number of months, or unbounded when nothing is
// available to pay each month.
type PayoffEstimate struct {
	Months    int64
	Unpayable bool
}

// Float64 returns the estimate in months, +Inf when unpayable.
func (p PayoffEstimate) Float64() float64 {
	if p.Unpayable {
		return math.Inf(1)
	}
	return float64(p.Months)
}

// PayoffStrategy is an ordering of debt names with its time estimate.
type PayoffStrategy struct {
	Order           []string
	EstimatedMonths PayoffEstimate
}

// DebtPlanResult is the outcome of PlanDebtPayoff.
type DebtPlanResult struct {
	TotalDebt           decimal.Decimal
	TotalMinimumPayment decimal.Decimal
	AvailableAmount     decimal.Decimal
	ExtraPayment        decimal.Decimal
	AverageInterestRate decimal.Decimal

	Avalanche PayoffStrategy
	Snowball  PayoffStrategy

	Recommendations []string
}

// PlanDebtPayoff ranks debts two ways: avalanche (highest rate first) and
// snowball (smallest balance first). Both sorts are stable.
//
// The month estimate is an aggregate approximation over the total balance
// and the unweighted mean rate. It ignores minimum payments and the payoff
// order, so both strategies always report the same number of months.
func PlanDebtPayoff(req DebtPlanRequest) (*DebtPlanResult, error) {
	if len(req.Debts) == 0 {
		return nil, invalidf("at least one debt is required")
	}
	names := make(map[string]bool, len(req.Debts))
	for _, d := range req.Debts {
		if names[d.Name] {
			return nil, invalidf("duplicate debt name %q", d.Name)
		}
		names[d.Name] = true
		if d.Balance.IsNegative() || d.InterestRate.IsNegative() || d.MinimumPayment.IsNegative() {
			return nil, invalidf("debt %q has a negative balance, rate or minimum payment", d.Name)
		}
	}

	avalanche := make([]Debt, len(req.Debts))
	copy(avalanche, req.Debts)
	sort.SliceStable(avalanche, func(i, j int) bool {
		return avalanche[i].InterestRate.GreaterThan(avalanche[j].InterestRate)
	})

	snowball := make([]Debt, len(req.Debts))
	copy(snowball, req.Debts)
	sort.SliceStable(snowball, func(i, j int) bool {
		return snowball[i].Balance.LessThan(snowball[j].Balance)
	})

	avalancheMonths, err := payoffMonths(avalanche, req.AvailableAmount)
	if err != nil {
		return nil, err
	}
	snowballMonths, err := payoffMonths(snowball, req.AvailableAmount)
	if err != nil {
		return nil, err
	}

	totalDebt, avgRate := aggregate(req.Debts)
	totalMinimum := decimal.Zero
	for _, d := range req.Debts {
		totalMinimum = totalMinimum.Add(d.MinimumPayment)
	}
	extra := req.AvailableAmount.Sub(totalMinimum)

	return &DebtPlanResult{
		TotalDebt:           totalDebt,
		TotalMinimumPayment: totalMinimum,
		AvailableAmount:     req.AvailableAmount,
		ExtraPayment:        extra,
		AverageInterestRate: avgRate,
		Avalanche:           PayoffStrategy{Order: debtNames(avalanche), EstimatedMonths: avalancheMonths},
		Snowball:            PayoffStrategy{Order: debtNames(snowball), EstimatedMonths: snowballMonths},
		Recommendations:     debtRecommendations(req.Debts, extra),
	}, nil
}

// payoffMonths solves ln(1 + D*r/P) / ln(1 + r) for the total balance D,
// mean rate r and monthly payment P, rounded up.
func payoffMonths(debts []Debt, available decimal.Decimal) (PayoffEstimate, error) {
	if available.LessThanOrEqual(decimal.Zero) {
		return PayoffEstimate{Unpayable: true}, nil
	}

	totalDebt, avgRate := aggregate(debts)
	if totalDebt.IsZero() {
		return PayoffEstimate{}, nil
	}
	if avgRate.IsZero() {
		return PayoffEstimate{Months: totalDebt.Div(available).Ceil().IntPart()}, nil
	}

	one := decimal.NewFromInt(1)
	num, err := one.Add(totalDebt.Mul(avgRate).Div(available)).Ln(lnPrecision)
	if err != nil {
		return PayoffEstimate{}, err
	}
	den, err := one.Add(avgRate).Ln(lnPrecision)
	if err != nil {
		return PayoffEstimate{}, err
	}
	return PayoffEstimate{Months: num.Div(den).Ceil().IntPart()}, nil
}

func aggregate(debts []Debt) (total, avgRate decimal.Decimal) {
	rates := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.Balance)
		rates = rates.Add(d.InterestRate)
	}
	return total, rates.Div(decimal.NewFromInt(int64(len(debts))))
}

func debtNames(debts []Debt) []string {
	names := make([]string, len(debts))
	for i, d := range debts {
		names[i] = d.Name
	}
	return names
}

func debtRecommendations(debts []Debt, extra decimal.Decimal) []string {
	recs := []string{}
	if extra.LessThanOrEqual(decimal.Zero) {
		recs = append(recs, "Try to increase your income or reduce expenses to speed up paying off your debts.")
	}
	for _, d := range debts {
		if d.InterestRate.GreaterThan(highInterestRate) {
			recs = append(recs, "Prioritize paying off debts with interest above 3% per month.")
			break
		}
	}
	return recs
}
