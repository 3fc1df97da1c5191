package finance

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RetirementAge is the reference age used by BuildPlan.
const RetirementAge = 65

var (
	// Share of current income assumed to be spent in retirement.
	expenseRatio = decimal.RequireFromString("0.8")
	// 4% withdrawal rule.
	withdrawalMultiplier = decimal.NewFromInt(25)
	// Goals costing more than this share of income are flagged.
	goalIncomeShare = decimal.RequireFromString("0.3")

	nearRetirementYears = 10
)

// Priority ranks a goal.
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

var priorityRank = map[Priority]int{High: 3, Medium: 2, Low: 1}

var priorityAliases = map[string]Priority{
	"high":   High,
	"alta":   High,
	"medium": Medium,
	"média":  Medium,
	"media":  Medium,
	"low":    Low,
	"baixa":  Low,
}

// ParsePriority accepts the English priority names and their Portuguese
// equivalents, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	if p, ok := priorityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", invalidf("unknown priority %q", s)
}

// Goal is a savings target to reach within TimeframeYears.
type Goal struct {
	Name           string
	TargetAmount   decimal.Decimal
	TimeframeYears decimal.Decimal
	Priority       Priority
}

// PlannedGoal is a goal with the monthly saving it requires.
type PlannedGoal struct {
	Goal
	MonthlyAmount decimal.Decimal
}

// PlanRequest is the input to BuildPlan.
type PlanRequest struct {
	Age            int
	MonthlyIncome  decimal.Decimal
	CurrentSavings decimal.Decimal
	Goals          []Goal
}

// PlanResult is the outcome of BuildPlan.
type PlanResult struct {
	CurrentAge        int
	RetirementAge     int
	YearsToRetirement int // negative past the retirement age

	EstimatedAnnualExpenses decimal.Decimal
	RetirementNeeded        decimal.Decimal
	CurrentSavings          decimal.Decimal

	PrioritizedGoals     []PlannedGoal
	TotalMonthlyForGoals decimal.Decimal

	Recommendations []string
}

// BuildPlan estimates the retirement nest egg and the monthly saving each
// goal needs. Goals come back ordered by priority, then by timeframe.
func BuildPlan(req PlanRequest) (*PlanResult, error) {
	if req.Age <= 0 {
		return nil, invalidf("age must be positive, got %d", req.Age)
	}
	if req.MonthlyIncome.LessThanOrEqual(decimal.Zero) {
		return nil, invalidf("monthly income must be positive, got %s", req.MonthlyIncome)
	}
	if req.CurrentSavings.IsNegative() {
		return nil, invalidf("current savings must not be negative, got %s", req.CurrentSavings)
	}
	for _, g := range req.Goals {
		if _, ok := priorityRank[g.Priority]; !ok {
			return nil, invalidf("goal %q has unknown priority %q", g.Name, g.Priority)
		}
		if g.TimeframeYears.LessThanOrEqual(decimal.Zero) {
			return nil, invalidf("goal %q needs a positive timeframe, got %s", g.Name, g.TimeframeYears)
		}
		if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, invalidf("goal %q needs a positive target amount, got %s", g.Name, g.TargetAmount)
		}
	}

	yearsToRetirement := RetirementAge - req.Age
	annualExpenses := req.MonthlyIncome.Mul(twelve).Mul(expenseRatio)

	goals := make([]Goal, len(req.Goals))
	copy(goals, req.Goals)
	sort.SliceStable(goals, func(i, j int) bool {
		ri, rj := priorityRank[goals[i].Priority], priorityRank[goals[j].Priority]
		if ri != rj {
			return ri > rj
		}
		return goals[i].TimeframeYears.LessThan(goals[j].TimeframeYears)
	})

	planned := make([]PlannedGoal, len(goals))
	total := decimal.Zero
	for i, g := range goals {
		monthly := g.TargetAmount.Div(g.TimeframeYears.Mul(twelve))
		planned[i] = PlannedGoal{Goal: g, MonthlyAmount: monthly}
		total = total.Add(monthly)
	}

	return &PlanResult{
		CurrentAge:              req.Age,
		RetirementAge:           RetirementAge,
		YearsToRetirement:       yearsToRetirement,
		EstimatedAnnualExpenses: annualExpenses,
		RetirementNeeded:        annualExpenses.Mul(withdrawalMultiplier),
		CurrentSavings:          req.CurrentSavings,
		PrioritizedGoals:        planned,
		TotalMonthlyForGoals:    total,
		Recommendations:         planRecommendations(req.MonthlyIncome, total, yearsToRetirement),
	}, nil
}

func planRecommendations(income, totalForGoals decimal.Decimal, yearsToRetirement int) []string {
	recs := []string{}
	if totalForGoals.GreaterThan(income.Mul(goalIncomeShare)) {
		recs = append(recs, "Your goals may be too ambitious. Consider revisiting their timeframes or amounts.")
	}
	if yearsToRetirement < nearRetirementYears {
		recs = append(recs, "Focus on more conservative investments to preserve capital as retirement approaches.")
	}
	return recs
}
