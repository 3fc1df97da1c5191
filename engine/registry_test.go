package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

func TestToolRegistry(t *testing.T) {
	r := NewToolRegistry()
	r.RegisterAll(tools.FinancialTools()...)

	assert.Equal(t, []string{"budget_analyzer", "debt_manager", "financial_planner", "investment_simulator"}, r.List())

	tool, ok := r.Get("debt_manager")
	assert.True(t, ok)
	assert.Equal(t, "debt_manager", tool.Name())

	_, ok = r.Get("send_money")
	assert.False(t, ok)

	defs := r.Definitions()
	assert.Len(t, defs, 4)
	assert.Equal(t, "budget_analyzer", defs[0].ToolName)
	assert.Equal(t, tool.Schema(), defs[1].InputSchema)

	filtered := r.DefinitionsFiltered(FilterByNames("financial_planner", "unknown"))
	assert.Len(t, filtered, 1)
	assert.Equal(t, "financial_planner", filtered[0].ToolName)
}

func TestTokenUsage(t *testing.T) {
	u := TokenUsage{InputTokens: 3, OutputTokens: 4}.Add(TokenUsage{InputTokens: 1, OutputTokens: 2})
	assert.Equal(t, TokenUsage{InputTokens: 4, OutputTokens: 6}, u)
	assert.Equal(t, int64(10), u.TotalTokens())
}
