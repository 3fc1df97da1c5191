package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/filipexcode/AssistenteFinanceiro/cli"
	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

const cliUserID = "cli"

// renderer turns a tool's JSON result into a table.
type renderer func(data []byte) (string, error)

func renderAs[T any](render func(*T) string) renderer {
	return func(data []byte) (string, error) {
		var report T
		if err := json.Unmarshal(data, &report); err != nil {
			return "", fmt.Errorf("decoding result: %w", err)
		}
		return render(&report), nil
	}
}

// runTool executes a tool and prints its result in the chosen format.
func (a *app) runTool(cmd *cobra.Command, exec core.ToolExecutor, name string, input []byte, render renderer) error {
	resp, err := exec.Execute(cmd.Context(), &core.ExecuteRequest{
		UserID:    cliUserID,
		Tool:      name,
		Input:     input,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", name, resp.Error)
	}

	if a.output != cli.OutputTable {
		return cli.WriteData(a.out, a.output, resp.Data)
	}
	out, err := render(resp.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.out, out)
	return err
}

// readInput reads an Hjson (or JSON) request file; "-" is stdin.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return tools.HJSONToJSON(data)
}

// requestBody returns the --input file when given, otherwise the request
// built from flags.
func requestBody(cmd *cobra.Command, inputPath string, build func() (interface{}, error)) ([]byte, error) {
	if inputPath != "" {
		return readInput(inputPath, cmd.InOrStdin())
	}
	req, err := build()
	if err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: not a number", flag, value)
	}
	return d, nil
}

// splitFields splits "a:b:c:d" into n fields. Only the first may contain
// the separator.
func splitFields(flag, value string, n int) ([]string, error) {
	parts := strings.Split(value, ":")
	if len(parts) < n {
		return nil, fmt.Errorf("invalid --%s %q: want %d fields separated by ':'", flag, value, n)
	}
	head := strings.Join(parts[:len(parts)-n+1], ":")
	return append([]string{head}, parts[len(parts)-n+1:]...), nil
}

func parseExpense(value string) (tools.ExpenseInput, error) {
	i := strings.LastIndex(value, "=")
	if i <= 0 {
		return tools.ExpenseInput{}, fmt.Errorf("invalid --expense %q: want category=amount", value)
	}
	amount, err := parseDecimal("--expense", value[i+1:])
	if err != nil {
		return tools.ExpenseInput{}, err
	}
	return tools.ExpenseInput{Category: strings.TrimSpace(value[:i]), Amount: amount}, nil
}

func parseDebt(value string) (tools.DebtInput, error) {
	f, err := splitFields("debt", value, 4)
	if err != nil {
		return tools.DebtInput{}, err
	}
	d := tools.DebtInput{Name: f[0]}
	for i, dst := range []*decimal.Decimal{&d.Balance, &d.InterestRate, &d.MinimumPayment} {
		if *dst, err = parseDecimal("--debt", f[i+1]); err != nil {
			return tools.DebtInput{}, err
		}
	}
	return d, nil
}

func parseGoal(value string) (tools.GoalInput, error) {
	f, err := splitFields("goal", value, 4)
	if err != nil {
		return tools.GoalInput{}, err
	}
	g := tools.GoalInput{Name: f[0], Priority: f[3]}
	if g.TargetAmount, err = parseDecimal("--goal", f[1]); err != nil {
		return tools.GoalInput{}, err
	}
	if g.Timeframe, err = parseDecimal("--goal", f[2]); err != nil {
		return tools.GoalInput{}, err
	}
	return g, nil
}

func newBudgetCmd(a *app) *cobra.Command {
	var (
		input    string
		income   string
		expenses []string
	)
	cmd := &cobra.Command{
		Use:     "budget",
		Short:   "Analyze a monthly budget",
		Example: "  finadvisor budget --income 5000 --expense food=1000 --expense rent=2000",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := requestBody(cmd, input, func() (interface{}, error) {
				req := tools.BudgetInput{Expenses: []tools.ExpenseInput{}}
				var err error
				if req.Income, err = parseDecimal("--income", income); err != nil {
					return nil, err
				}
				for _, e := range expenses {
					exp, err := parseExpense(e)
					if err != nil {
						return nil, err
					}
					req.Expenses = append(req.Expenses, exp)
				}
				return req, nil
			})
			if err != nil {
				return err
			}
			return a.runTool(cmd, a.executor(), tools.BudgetAnalyzerTool, body, renderAs(cli.RenderBudget))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file in Hjson or JSON (- for stdin)")
	cmd.Flags().StringVar(&income, "income", "0", "Monthly income")
	cmd.Flags().StringArrayVarP(&expenses, "expense", "e", nil, "Expense as category=amount (repeatable)")
	return cmd
}

func newInvestCmd(a *app) *cobra.Command {
	var input, initial, monthly, years, risk string
	cmd := &cobra.Command{
		Use:     "invest",
		Short:   "Project an investment",
		Example: "  finadvisor invest --initial 1000 --monthly 100 --years 10 --risk moderate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := requestBody(cmd, input, func() (interface{}, error) {
				req := tools.InvestmentInput{RiskProfile: risk}
				var err error
				if req.InitialAmount, err = parseDecimal("--initial", initial); err != nil {
					return nil, err
				}
				if req.MonthlyContribution, err = parseDecimal("--monthly", monthly); err != nil {
					return nil, err
				}
				if req.TimeHorizon, err = parseDecimal("--years", years); err != nil {
					return nil, err
				}
				return req, nil
			})
			if err != nil {
				return err
			}
			return a.runTool(cmd, a.executor(), tools.InvestmentSimulatorTool, body, renderAs(cli.RenderInvestment))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file in Hjson or JSON (- for stdin)")
	cmd.Flags().StringVar(&initial, "initial", "0", "Amount invested up front")
	cmd.Flags().StringVar(&monthly, "monthly", "0", "Monthly contribution")
	cmd.Flags().StringVar(&years, "years", "1", "Horizon in years")
	cmd.Flags().StringVar(&risk, "risk", "moderate", "Risk profile: conservative, moderate or aggressive")
	return cmd
}

func newDebtCmd(a *app) *cobra.Command {
	var (
		input     string
		available string
		debts     []string
	)
	cmd := &cobra.Command{
		Use:     "debt",
		Short:   "Compare debt payoff strategies",
		Example: "  finadvisor debt --available 800 --debt card:2000:0.08:100 --debt car:15000:0.015:450",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := requestBody(cmd, input, func() (interface{}, error) {
				req := tools.DebtPlanInput{Debts: []tools.DebtInput{}}
				var err error
				if req.AvailableAmount, err = parseDecimal("--available", available); err != nil {
					return nil, err
				}
				for _, v := range debts {
					d, err := parseDebt(v)
					if err != nil {
						return nil, err
					}
					req.Debts = append(req.Debts, d)
				}
				return req, nil
			})
			if err != nil {
				return err
			}
			return a.runTool(cmd, a.executor(), tools.DebtManagerTool, body, renderAs(cli.RenderDebt))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file in Hjson or JSON (- for stdin)")
	cmd.Flags().StringVar(&available, "available", "0", "Amount available each month for debts")
	cmd.Flags().StringArrayVarP(&debts, "debt", "d", nil, "Debt as name:balance:monthly-rate:minimum-payment (repeatable)")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		input   string
		age     int
		income  string
		savings string
		goals   []string
	)
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Build a retirement and goals plan",
		Example: "  finadvisor plan --age 30 --income 10000 --savings 15000 --goal House:200000:10:high",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := requestBody(cmd, input, func() (interface{}, error) {
				req := tools.PlanInput{Age: age, Goals: []tools.GoalInput{}}
				var err error
				if req.Income, err = parseDecimal("--income", income); err != nil {
					return nil, err
				}
				if req.CurrentSavings, err = parseDecimal("--savings", savings); err != nil {
					return nil, err
				}
				for _, v := range goals {
					g, err := parseGoal(v)
					if err != nil {
						return nil, err
					}
					req.Goals = append(req.Goals, g)
				}
				return req, nil
			})
			if err != nil {
				return err
			}
			return a.runTool(cmd, a.executor(), tools.FinancialPlannerTool, body, renderAs(cli.RenderPlan))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Request file in Hjson or JSON (- for stdin)")
	cmd.Flags().IntVar(&age, "age", 0, "Current age")
	cmd.Flags().StringVar(&income, "income", "0", "Monthly income")
	cmd.Flags().StringVar(&savings, "savings", "0", "Current savings")
	cmd.Flags().StringArrayVarP(&goals, "goal", "g", nil, "Goal as name:target:years:priority (repeatable)")
	return cmd
}
