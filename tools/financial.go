package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/finance"
)

// Names of the calculator tools.
const (
	BudgetAnalyzerTool      = "budget_analyzer"
	InvestmentSimulatorTool = "investment_simulator"
	DebtManagerTool         = "debt_manager"
	FinancialPlannerTool    = "financial_planner"
)

// ExpenseInput is one spending line of a budget.
type ExpenseInput struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetInput is the input of budget_analyzer.
type BudgetInput struct {
	Income   decimal.Decimal `json:"income"`
	Expenses []ExpenseInput  `json:"expenses"`
}

// InvestmentInput is the input of investment_simulator.
type InvestmentInput struct {
	InitialAmount       decimal.Decimal `json:"initialAmount"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	TimeHorizon         decimal.Decimal `json:"timeHorizon"`
	RiskProfile         string          `json:"riskProfile"`
}

// DebtInput is one debt of a debt_manager request.
type DebtInput struct {
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	MinimumPayment decimal.Decimal `json:"minimumPayment"`
}

// DebtPlanInput is the input of debt_manager.
type DebtPlanInput struct {
	Debts           []DebtInput     `json:"debts"`
	AvailableAmount decimal.Decimal `json:"availableAmount"`
}

// GoalInput is one goal of a financial_planner request.
type GoalInput struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Timeframe    decimal.Decimal `json:"timeframe"`
	Priority     string          `json:"priority"`
}

// PlanInput is the input of financial_planner.
type PlanInput struct {
	Age            int             `json:"age"`
	Income         decimal.Decimal `json:"income"`
	CurrentSavings decimal.Decimal `json:"currentSavings"`
	Goals          []GoalInput     `json:"goals"`
}

// FinancialToolDefinitions returns the definitions of the four calculators.
func FinancialToolDefinitions() []core.ToolDefinition {
	return []core.ToolDefinition{
		{
			ToolName:        BudgetAnalyzerTool,
			ToolDescription: "Analyze a personal monthly budget: totals, savings rate, categories taking more than 15% of income, and saving opportunities. Use it whenever the user mentions income and expenses.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"income": NumberProperty("Monthly income"),
				"expenses": ArrayProperty("Expenses by category", ObjectSchema(map[string]interface{}{
					"category": StringProperty("Expense category (e.g. 'rent', 'food')"),
					"amount":   NumberProperty("Amount spent"),
				}, "category", "amount")),
			}, "income", "expenses"),
		},
		{
			ToolName:        InvestmentSimulatorTool,
			ToolDescription: "Project an investment with monthly compounding for a risk profile. Use it for investment projections and scenarios.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"initialAmount":       NumberProperty("Amount invested up front"),
				"monthlyContribution": NumberProperty("Amount added every month"),
				"timeHorizon":         NumberProperty("Horizon in years"),
				"riskProfile":         StringEnumProperty("Risk profile", riskProfileNames()...),
			}, "initialAmount", "monthlyContribution", "timeHorizon", "riskProfile"),
		},
		{
			ToolName:        DebtManagerTool,
			ToolDescription: "Compare avalanche (highest interest first) and snowball (smallest balance first) payoff orders for a set of debts and estimate the payoff time. Use it when the user has several debts.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"debts": ArrayProperty("Outstanding debts", ObjectSchema(map[string]interface{}{
					"name":           StringProperty("Debt name, unique within the request"),
					"balance":        NumberProperty("Outstanding balance"),
					"interestRate":   NumberProperty("Monthly interest rate as a fraction (0.02 = 2% a month)"),
					"minimumPayment": NumberProperty("Minimum monthly payment"),
				}, "name", "balance", "interestRate", "minimumPayment")),
				"availableAmount": NumberProperty("Amount available each month for debt payments"),
			}, "debts", "availableAmount"),
		},
		{
			ToolName:        FinancialPlannerTool,
			ToolDescription: "Build a financial plan: retirement target at 65 and the monthly saving each goal needs, ordered by priority and deadline. Use it for long-term goals and retirement.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"age":            IntegerProperty("Current age"),
				"income":         NumberProperty("Monthly income"),
				"currentSavings": NumberProperty("Amount saved so far"),
				"goals": ArrayProperty("Financial goals", ObjectSchema(map[string]interface{}{
					"name":         StringProperty("Goal name"),
					"targetAmount": NumberProperty("Amount needed"),
					"timeframe":    NumberProperty("Deadline in years"),
					"priority":     StringEnumProperty("Goal priority", string(finance.High), string(finance.Medium), string(finance.Low)),
				}, "name", "targetAmount", "timeframe", "priority")),
			}, "age", "income", "currentSavings", "goals"),
		},
	}
}

func riskProfileNames() []string {
	names := make([]string, len(finance.RiskProfiles))
	for i, p := range finance.RiskProfiles {
		names[i] = string(p)
	}
	return names
}

var financialHandlers = map[string]HandlerFunc{
	BudgetAnalyzerTool:      analyzeBudget,
	InvestmentSimulatorTool: simulateInvestment,
	DebtManagerTool:         manageDebt,
	FinancialPlannerTool:    planFinances,
}

// FinancialTools builds the calculator tools, running in-process.
func FinancialTools() []core.Tool {
	definitions := FinancialToolDefinitions()
	result := make([]core.Tool, len(definitions))
	for i, def := range definitions {
		result[i] = New(def.ToolName).
			Description(def.ToolDescription).
			Schema(def.InputSchema).
			HandlerFunc(financialHandlers[def.ToolName]).
			Build()
	}
	return result
}

// RemoteFinancialTools returns the calculator tools backed by executor.
func RemoteFinancialTools(executor core.ToolExecutor) []core.Tool {
	definitions := FinancialToolDefinitions()
	result := make([]core.Tool, len(definitions))
	for i, def := range definitions {
		result[i] = core.NewExecutorTool(def, executor)
	}
	return result
}

func analyzeBudget(_ context.Context, input json.RawMessage) (interface{}, error) {
	var params BudgetInput
	if err := Decode(input, &params); err != nil {
		return nil, err
	}
	expenses := make([]finance.Expense, len(params.Expenses))
	for i, e := range params.Expenses {
		expenses[i] = finance.Expense{Category: e.Category, Amount: e.Amount}
	}
	result, err := finance.AnalyzeBudget(params.Income, expenses)
	if err != nil {
		return nil, err
	}
	return NewBudgetReport(result), nil
}

func simulateInvestment(_ context.Context, input json.RawMessage) (interface{}, error) {
	var params InvestmentInput
	if err := Decode(input, &params); err != nil {
		return nil, err
	}
	profile, err := finance.ParseRiskProfile(params.RiskProfile)
	if err != nil {
		return nil, err
	}
	result, err := finance.SimulateInvestment(finance.InvestmentRequest{
		InitialAmount:       params.InitialAmount,
		MonthlyContribution: params.MonthlyContribution,
		TimeHorizonYears:    params.TimeHorizon,
		RiskProfile:         profile,
	})
	if err != nil {
		return nil, err
	}
	return NewInvestmentReport(result), nil
}

func manageDebt(_ context.Context, input json.RawMessage) (interface{}, error) {
	var params DebtPlanInput
	if err := Decode(input, &params); err != nil {
		return nil, err
	}
	debts := make([]finance.Debt, len(params.Debts))
	for i, d := range params.Debts {
		debts[i] = finance.Debt{
			Name:           d.Name,
			Balance:        d.Balance,
			InterestRate:   d.InterestRate,
			MinimumPayment: d.MinimumPayment,
		}
	}
	result, err := finance.PlanDebtPayoff(finance.DebtPlanRequest{Debts: debts, AvailableAmount: params.AvailableAmount})
	if err != nil {
		return nil, err
	}
	return NewDebtReport(result), nil
}

func planFinances(_ context.Context, input json.RawMessage) (interface{}, error) {
	var params PlanInput
	if err := Decode(input, &params); err != nil {
		return nil, err
	}
	goals := make([]finance.Goal, len(params.Goals))
	for i, g := range params.Goals {
		priority, err := finance.ParsePriority(g.Priority)
		if err != nil {
			return nil, fmt.Errorf("goal %q: %w", g.Name, err)
		}
		goals[i] = finance.Goal{
			Name:           g.Name,
			TargetAmount:   g.TargetAmount,
			TimeframeYears: g.Timeframe,
			Priority:       priority,
		}
	}
	result, err := finance.BuildPlan(finance.PlanRequest{
		Age:            params.Age,
		MonthlyIncome:  params.Income,
		CurrentSavings: params.CurrentSavings,
		Goals:          goals,
	})
	if err != nil {
		return nil, err
	}
	return NewPlanReport(result), nil
}
