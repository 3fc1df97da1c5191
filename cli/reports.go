package cli

import (
	"fmt"
	"strings"

	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

// RenderBudget renders a budget analysis.
func RenderBudget(r *tools.BudgetReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Budget analysis"))
	b.WriteString("\n\n")

	rateStyle := goodStyle
	if r.SavingsRate < 10 {
		rateStyle = badStyle
	}
	b.WriteString(RenderTable(Table{
		Headers: []string{"Summary", "Value"},
		Rows: [][]string{
			{"Income", FormatMoney(r.TotalIncome)},
			{"Expenses", FormatMoney(r.TotalExpenses)},
			{"Savings", FormatMoney(r.Savings)},
			{"Savings rate", rateStyle.Render(FormatPercent(r.SavingsRate))},
		},
	}))

	high := make(map[string]float64, len(r.HighExpenseCategories))
	for _, c := range r.HighExpenseCategories {
		high[c.Category] = c.Percentage
	}
	rows := make([][]string, 0, len(r.Categories))
	for _, category := range r.Categories {
		share := ""
		if pct, ok := high[category]; ok {
			share = warnStyle.Render(FormatPercent(pct) + " high")
		}
		rows = append(rows, []string{category, FormatMoney(r.ExpensesByCategory[category]), share})
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{Title: "Expenses by category", Headers: []string{"Category", "Amount", "Share"}, Rows: rows}))
	}

	b.WriteString(recommendations(r.Recommendations))
	return b.String()
}

// RenderInvestment renders an investment projection.
func RenderInvestment(r *tools.InvestmentReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("Investment projection (%s)", r.RiskProfile)))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(Table{
		Headers: []string{"Projection", "Value"},
		Rows: [][]string{
			{"Horizon", fmt.Sprintf("%s (%d months)", FormatYears(r.TimeHorizon), r.Months)},
			{"Expected annual return", FormatRate(r.AnnualReturn)},
			{"Volatility", FormatRate(r.Volatility)},
			{"---"},
			{"Total invested", FormatMoney(r.TotalInvested)},
			{"Projected value", goodStyle.Render(FormatMoney(r.ProjectedValue))},
			{"Total return", FormatMoney(r.TotalReturn)},
			{"Return", FormatPercent(r.ReturnPercentage)},
			{"Monthly return", FormatPercent(r.MonthlyReturn)},
		},
	}))
	b.WriteString(recommendations(r.Recommendations))
	return b.String()
}

// RenderDebt renders a debt payoff comparison.
func RenderDebt(r *tools.DebtReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Debt payoff"))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(Table{
		Headers: []string{"Summary", "Value"},
		Rows: [][]string{
			{"Total debt", FormatMoney(r.TotalDebt)},
			{"Minimum payments", FormatMoney(r.TotalMinimumPayment)},
			{"Available", FormatMoney(r.AvailableAmount)},
			{"Extra payment", FormatMoney(r.ExtraPayment)},
			{"Average monthly rate", FormatRate(r.AverageInterestRate)},
		},
	}))
	b.WriteString("\n")
	b.WriteString(RenderTable(Table{
		Title:   "Strategies",
		Headers: []string{"Strategy", "Order", "Payoff"},
		Rows: [][]string{
			{"Avalanche", strings.Join(r.AvalancheStrategy.Order, " → "), payoff(r.AvalancheStrategy)},
			{"Snowball", strings.Join(r.SnowballStrategy.Order, " → "), payoff(r.SnowballStrategy)},
		},
	}))
	b.WriteString(RenderNote("Payoff time is an approximation using the average rate."))
	b.WriteString(recommendations(r.Recommendations))
	return b.String()
}

func payoff(s tools.StrategyReport) string {
	if !s.Payable {
		return badStyle.Render(FormatMonths(nil))
	}
	return FormatMonths(s.EstimatedMonths)
}

// RenderPlan renders a financial plan.
func RenderPlan(r *tools.PlanReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Financial plan"))
	b.WriteString("\n\n")

	years := fmt.Sprintf("%d", r.YearsToRetirement)
	if r.YearsToRetirement < 0 {
		years = warnStyle.Render(years)
	}
	b.WriteString(RenderTable(Table{
		Headers: []string{"Retirement", "Value"},
		Rows: [][]string{
			{"Current age", fmt.Sprintf("%d", r.CurrentAge)},
			{"Retirement age", fmt.Sprintf("%d", r.RetirementAge)},
			{"Years to retirement", years},
			{"Annual expenses in retirement", FormatMoney(r.EstimatedAnnualExpenses)},
			{"Retirement savings needed", FormatMoney(r.RetirementNeeded)},
			{"Current savings", FormatMoney(r.CurrentSavings)},
		},
	}))

	if len(r.PrioritizedGoals) > 0 {
		rows := make([][]string, 0, len(r.PrioritizedGoals)+2)
		for _, g := range r.PrioritizedGoals {
			rows = append(rows, []string{g.Name, g.Priority, FormatYears(g.Timeframe), FormatMoney(g.TargetAmount), FormatMoney(g.MonthlyAmount)})
		}
		rows = append(rows, []string{"---"}, []string{"Total", "", "", "", FormatMoney(r.TotalMonthlyForGoals)})
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Goals",
			Headers: []string{"Goal", "Priority", "Timeframe", "Target", "Monthly"},
			Rows:    rows,
		}))
	}

	b.WriteString(recommendations(r.Recommendations))
	return b.String()
}

// RenderRates renders exchange rates.
func RenderRates(r *tools.RatesReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Exchange rates (" + r.Base + ")"))
	b.WriteString("\n\n")

	headers := []string{"Currency", "Rate", "Change"}
	if r.Amount != nil {
		headers = append(headers, "Converted")
	}
	rows := make([][]string, 0, len(r.Quotes))
	for _, q := range r.Quotes {
		change := ""
		if q.Change != nil {
			style := goodStyle
			if *q.Change < 0 {
				style = badStyle
			}
			change = style.Render(fmt.Sprintf("%+.2f%%", *q.Change))
		}
		row := []string{strings.TrimSpace(q.Flag + " " + q.Code + " " + q.Name), fmt.Sprintf("%.4f", q.Rate), change}
		if r.Amount != nil && q.Converted != nil {
			row = append(row, FormatMoney(*q.Converted))
		}
		rows = append(rows, row)
	}
	b.WriteString(RenderTable(Table{Headers: headers, Rows: rows}))

	note := fmt.Sprintf("Source: %s (%s)", r.Source, r.Provider)
	if r.UpdatedAt != nil {
		note += ", updated " + r.UpdatedAt.Local().Format("2006-01-02 15:04")
	}
	b.WriteString(RenderNote(note))
	return b.String()
}

func recommendations(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "\n" + RenderList("Recommendations", items)
}
