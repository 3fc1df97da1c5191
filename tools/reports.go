package tools

import (
	"github.com/shopspring/decimal"

	"github.com/filipexcode/AssistenteFinanceiro/finance"
)

// The report types are the JSON shapes the calculators return to the model
// and to API clients. Money is a plain JSON number.

type CategoryShareReport struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type BudgetReport struct {
	TotalIncome           float64               `json:"totalIncome"`
	TotalExpenses         float64               `json:"totalExpenses"`
	Savings               float64               `json:"savings"`
	SavingsRate           float64               `json:"savingsRate"`
	Categories            []string              `json:"categories"`
	ExpensesByCategory    map[string]float64    `json:"expensesByCategory"`
	HighExpenseCategories []CategoryShareReport `json:"highExpenseCategories"`
	Recommendations       []string              `json:"recommendations"`
}

type InvestmentReport struct {
	RiskProfile      string   `json:"riskProfile"`
	TimeHorizon      float64  `json:"timeHorizon"`
	Months           int64    `json:"months"`
	AnnualReturn     float64  `json:"annualReturn"`
	Volatility       float64  `json:"volatility"`
	TotalInvested    float64  `json:"totalInvested"`
	ProjectedValue   float64  `json:"projectedValue"`
	TotalReturn      float64  `json:"totalReturn"`
	ReturnPercentage float64  `json:"returnPercentage"`
	MonthlyReturn    float64  `json:"monthlyReturn"`
	Recommendations  []string `json:"recommendations"`
}

// StrategyReport carries a payoff order. EstimatedMonths is null when the
// debts can never be paid off with the available amount.
type StrategyReport struct {
	Order           []string `json:"order"`
	EstimatedMonths *int64   `json:"estimatedMonths"`
	Payable         bool     `json:"payable"`
}

type DebtReport struct {
	TotalDebt           float64        `json:"totalDebt"`
	TotalMinimumPayment float64        `json:"totalMinimumPayment"`
	AvailableAmount     float64        `json:"availableAmount"`
	ExtraPayment        float64        `json:"extraPayment"`
	AverageInterestRate float64        `json:"averageInterestRate"`
	AvalancheStrategy   StrategyReport `json:"avalancheStrategy"`
	SnowballStrategy    StrategyReport `json:"snowballStrategy"`
	Recommendations     []string       `json:"recommendations"`
}

type GoalReport struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	Timeframe     float64 `json:"timeframe"`
	Priority      string  `json:"priority"`
	MonthlyAmount float64 `json:"monthlyAmount"`
}

type PlanReport struct {
	CurrentAge              int          `json:"currentAge"`
	RetirementAge           int          `json:"retirementAge"`
	YearsToRetirement       int          `json:"yearsToRetirement"`
	EstimatedAnnualExpenses float64      `json:"estimatedAnnualExpenses"`
	RetirementNeeded        float64      `json:"retirementNeeded"`
	CurrentSavings          float64      `json:"currentSavings"`
	PrioritizedGoals        []GoalReport `json:"prioritizedGoals"`
	TotalMonthlyForGoals    float64      `json:"totalMonthlyForGoals"`
	Recommendations         []string     `json:"recommendations"`
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// NewBudgetReport converts a budget analysis to its wire form.
func NewBudgetReport(r *finance.BudgetResult) BudgetReport {
	byCategory := make(map[string]float64, len(r.ExpensesByCategory))
	for category, amount := range r.ExpensesByCategory {
		byCategory[category] = num(amount)
	}
	high := make([]CategoryShareReport, len(r.HighExpenseCategories))
	for i, c := range r.HighExpenseCategories {
		high[i] = CategoryShareReport{Category: c.Category, Amount: num(c.Amount), Percentage: num(c.Percentage)}
	}
	return BudgetReport{
		TotalIncome:           num(r.TotalIncome),
		TotalExpenses:         num(r.TotalExpenses),
		Savings:               num(r.Savings),
		SavingsRate:           num(r.SavingsRate),
		Categories:            r.Categories,
		ExpensesByCategory:    byCategory,
		HighExpenseCategories: high,
		Recommendations:       r.Recommendations,
	}
}

// NewInvestmentReport converts an investment projection to its wire form.
func NewInvestmentReport(r *finance.InvestmentResult) InvestmentReport {
	return InvestmentReport{
		RiskProfile:      string(r.RiskProfile),
		TimeHorizon:      num(r.TimeHorizonYears),
		Months:           r.Months,
		AnnualReturn:     num(r.AnnualReturn),
		Volatility:       num(r.Volatility),
		TotalInvested:    num(r.TotalInvested),
		ProjectedValue:   num(r.ProjectedValue),
		TotalReturn:      num(r.TotalReturn),
		ReturnPercentage: num(r.ReturnPercentage),
		MonthlyReturn:    num(r.MonthlyReturn),
		Recommendations:  r.Recommendations,
	}
}

func newStrategyReport(s finance.PayoffStrategy) StrategyReport {
	report := StrategyReport{Order: s.Order, Payable: !s.EstimatedMonths.Unpayable}
	if report.Payable {
		months := s.EstimatedMonths.Months
		report.EstimatedMonths = &months
	}
	return report
}

// NewDebtReport converts a debt payoff plan to its wire form.
func NewDebtReport(r *finance.DebtPlanResult) DebtReport {
	return DebtReport{
		TotalDebt:           num(r.TotalDebt),
		TotalMinimumPayment: num(r.TotalMinimumPayment),
		AvailableAmount:     num(r.AvailableAmount),
		ExtraPayment:        num(r.ExtraPayment),
		AverageInterestRate: num(r.AverageInterestRate),
		AvalancheStrategy:   newStrategyReport(r.Avalanche),
		SnowballStrategy:    newStrategyReport(r.Snowball),
		Recommendations:     r.Recommendations,
	}
}

// NewPlanReport converts a financial plan to its wire form.
func NewPlanReport(r *finance.PlanResult) PlanReport {
	goals := make([]GoalReport, len(r.PrioritizedGoals))
	for i, g := range r.PrioritizedGoals {
		goals[i] = GoalReport{
			Name:          g.Name,
			TargetAmount:  num(g.TargetAmount),
			Timeframe:     num(g.TimeframeYears),
			Priority:      string(g.Priority),
			MonthlyAmount: num(g.MonthlyAmount),
		}
	}
	return PlanReport{
		CurrentAge:              r.CurrentAge,
		RetirementAge:           r.RetirementAge,
		YearsToRetirement:       r.YearsToRetirement,
		EstimatedAnnualExpenses: num(r.EstimatedAnnualExpenses),
		RetirementNeeded:        num(r.RetirementNeeded),
		CurrentSavings:          num(r.CurrentSavings),
		PrioritizedGoals:        goals,
		TotalMonthlyForGoals:    num(r.TotalMonthlyForGoals),
		Recommendations:         r.Recommendations,
	}
}
