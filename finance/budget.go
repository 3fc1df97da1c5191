package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)

	// A category above this share of income is flagged.
	highExpenseShare = decimal.RequireFromString("0.15")
	minSavingsRate   = decimal.NewFromInt(10)
)

// Expense is a single spending entry. Entries sharing a category are summed.
type Expense struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryShare is a category total together with its share of income.
type CategoryShare struct {
	Category   string
	Amount     decimal.Decimal
	Percentage decimal.Decimal // unrounded, 0-100
}

// BudgetResult is the outcome of AnalyzeBudget.
type BudgetResult struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Savings       decimal.Decimal
	SavingsRate   decimal.Decimal // percent, rounded to 2 places

	// Categories lists category names in order of first appearance.
	Categories         []string
	ExpensesByCategory map[string]decimal.Decimal

	HighExpenseCategories []CategoryShare
	Recommendations       []string
}

// AnalyzeBudget computes savings, savings rate and per-category totals for a
// monthly income, and flags categories that take more than 15% of it.
// Savings may be negative.
func AnalyzeBudget(income decimal.Decimal, expenses []Expense) (*BudgetResult, error) {
	if income.LessThanOrEqual(decimal.Zero) {
		return nil, invalidf("income must be positive, got %s", income)
	}

	totalExpenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	categories := make([]string, 0, len(expenses))
	for i, e := range expenses {
		if e.Amount.IsNegative() {
			return nil, invalidf("expense %d (%s) has negative amount %s", i, e.Category, e.Amount)
		}
		if _, seen := byCategory[e.Category]; !seen {
			categories = append(categories, e.Category)
		}
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	savings := income.Sub(totalExpenses)
	savingsRate := savings.Div(income).Mul(hundred)

	var high []CategoryShare
	for _, category := range categories {
		amount := byCategory[category]
		share := amount.Div(income)
		if share.GreaterThan(highExpenseShare) {
			high = append(high, CategoryShare{
				Category:   category,
				Amount:     amount,
				Percentage: share.Mul(hundred),
			})
		}
	}

	return &BudgetResult{
		TotalIncome:           income,
		TotalExpenses:         totalExpenses,
		Savings:               savings,
		SavingsRate:           savingsRate.Round(2),
		Categories:            categories,
		ExpensesByCategory:    byCategory,
		HighExpenseCategories: high,
		Recommendations:       budgetRecommendations(savingsRate, high),
	}, nil
}

// budgetRecommendations checks the unrounded savings rate.
func budgetRecommendations(savingsRate decimal.Decimal, high []CategoryShare) []string {
	recs := []string{}
	if savingsRate.LessThan(minSavingsRate) {
		recs = append(recs, "Your savings rate is low. Try to save at least 10% of your income.")
	}
	for _, c := range high {
		recs = append(recs, fmt.Sprintf(
			"Category \"%s\" takes %s%% of your income. Consider cutting back on it.",
			c.Category, c.Percentage.StringFixed(1)))
	}
	return recs
}
