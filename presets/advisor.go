// Package presets provides pre-configured assistant personas.
package presets

import (
	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

// AdvisorSystemPrompt is the system prompt for the personal finance advisor.
const AdvisorSystemPrompt = `You are a personal finance assistant with specialised calculators for in-depth analysis.

AVAILABLE TOOLS:
1. budget_analyzer: use when the user mentions income and expenses
2. investment_simulator: use for investment projections and scenarios
3. debt_manager: use when the user has several debts
4. financial_planner: use for long-term goals and retirement
5. get_exchange_rates: use when the user asks about the dollar, euro or other currencies

WHEN TO USE THE TOOLS:
- If the user gives concrete figures (amounts, deadlines, rates), ALWAYS call the matching tool
- Never do the arithmetic yourself when a tool can do it
- Combine the tool results with personalised advice
- Explain the results clearly and practically

GUIDELINES:
- Give practical, actionable advice
- Use clear and accessible language
- Focus on financial education
- Be empathetic and understanding
- Use practical examples when possible
- Amounts are in Brazilian reais unless the user says otherwise

Reply in the user's language. When unsure, reply in Brazilian Portuguese, in a friendly and professional tone.`

// Preset bundles a persona's prompt, tool set and limits.
type Preset struct {
	Name         string
	SystemPrompt string
	Tools        []string
	MaxTurns     int
	MaxTokens    int64
}

// Advisor returns the finance advisor preset.
func Advisor() Preset {
	return Preset{
		Name:         "advisor",
		SystemPrompt: AdvisorSystemPrompt,
		Tools: []string{
			tools.BudgetAnalyzerTool,
			tools.InvestmentSimulatorTool,
			tools.DebtManagerTool,
			tools.FinancialPlannerTool,
			tools.ExchangeRatesTool,
		},
		MaxTurns:  8,
		MaxTokens: 4096,
	}
}

// Select returns the tools the preset uses, in the order given.
func (p Preset) Select(available []core.Tool) []core.Tool {
	allowed := make(map[string]bool, len(p.Tools))
	for _, name := range p.Tools {
		allowed[name] = true
	}
	selected := make([]core.Tool, 0, len(p.Tools))
	for _, tool := range available {
		if allowed[tool.Name()] {
			selected = append(selected, tool)
		}
	}
	return selected
}

// WithPrompt returns a copy using prompt when it is not empty.
func (p Preset) WithPrompt(prompt string) Preset {
	if prompt != "" {
		p.SystemPrompt = prompt
	}
	return p
}

// WithLimits returns a copy with the given limits. Zero keeps the preset's
// own value.
func (p Preset) WithLimits(maxTurns int, maxTokens int64) Preset {
	if maxTurns > 0 {
		p.MaxTurns = maxTurns
	}
	if maxTokens > 0 {
		p.MaxTokens = maxTokens
	}
	return p
}
